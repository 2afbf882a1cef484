package cel

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// stringFunctions returns CEL function declarations for string values read
// from the string table.
func stringFunctions() cel.EnvOption {
	return cel.Lib(&stringLib{})
}

type stringLib struct{}

func (*stringLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		// to_s function
		cel.Function("to_s",
			cel.Overload("to_s_any", []*cel.Type{cel.AnyType}, cel.StringType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					if s, ok := val.(types.String); ok {
						return s
					}
					return types.String(fmt.Sprintf("%v", val.Value()))
				}),
			),
		),
		// split function, e.g. split(x, " | ")
		cel.Function("split",
			cel.Overload("split_string_string", []*cel.Type{cel.StringType, cel.StringType}, cel.ListType(cel.StringType),
				cel.BinaryBinding(func(str, sep ref.Val) ref.Val {
					s, ok1 := str.(types.String)
					d, ok2 := sep.(types.String)
					if !ok1 || !ok2 {
						return types.NewErr("split expects (string, string)")
					}
					return types.DefaultTypeAdapter.NativeToValue(strings.Split(string(s), string(d)))
				}),
			),
		),
		// to_i function for string to integer conversion
		cel.Function("to_i",
			cel.Overload("to_i_string", []*cel.Type{cel.StringType}, cel.IntType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					str, ok := val.(types.String)
					if !ok {
						return types.NewErr("expected string for to_i")
					}
					result, err := strconv.ParseInt(strings.TrimSpace(string(str)), 10, 64)
					if err != nil {
						return types.NewErr("invalid integer format: %v", err)
					}
					return types.Int(result)
				}),
			),
			cel.Overload("to_i_double", []*cel.Type{cel.DoubleType}, cel.IntType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					if doubleVal, ok := val.(types.Double); ok {
						return types.Int(doubleVal)
					}
					return types.NewErr("unexpected type for to_i: %T", val.Value())
				}),
			),
		),
		// to_f function (float conversion)
		cel.Function("to_f",
			cel.Overload("to_f_any", []*cel.Type{cel.AnyType}, cel.DoubleType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					convertedVal := val.ConvertToType(types.DoubleType)
					if types.IsError(convertedVal) {
						return types.NewErr("cannot convert %v to double: %v", val, convertedVal)
					}
					return convertedVal
				}),
			),
		),
	}
}

func (*stringLib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}
