package cel

import (
	"math"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
)

// mathFunctions returns CEL function declarations for numeric operations on
// values whose int/double type depends on the block they were decoded from.
func mathFunctions() cel.EnvOption {
	return cel.Lib(&mathLib{})
}

type mathLib struct{}

func (*mathLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		// scale multiplies any number by a double factor
		cel.Function("scale",
			cel.Overload("scale_int_double", []*cel.Type{cel.IntType, cel.DoubleType}, cel.DoubleType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					x, ok1 := lhs.(types.Int)
					f, ok2 := rhs.(types.Double)
					if !ok1 || !ok2 {
						return types.NewErr("scale expects (int, double)")
					}
					return types.Double(float64(x) * float64(f))
				}),
			),
			cel.Overload("scale_double_double", []*cel.Type{cel.DoubleType, cel.DoubleType}, cel.DoubleType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					x, ok1 := lhs.(types.Double)
					f, ok2 := rhs.(types.Double)
					if !ok1 || !ok2 {
						return types.NewErr("scale expects (double, double)")
					}
					return x * f
				}),
			),
		),

		// round rounds a double to the given number of decimal places
		cel.Function("round",
			cel.Overload("round_double_int", []*cel.Type{cel.DoubleType, cel.IntType}, cel.DoubleType,
				cel.BinaryBinding(func(lhs, rhs ref.Val) ref.Val {
					x, ok1 := lhs.(types.Double)
					places, ok2 := rhs.(types.Int)
					if !ok1 || !ok2 {
						return types.NewErr("round expects (double, int)")
					}
					p := math.Pow(10, float64(places))
					return types.Double(math.Round(float64(x)*p) / p)
				}),
			),
		),

		// abs function
		cel.Function("abs",
			cel.Overload("abs_int", []*cel.Type{cel.IntType}, cel.IntType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					x, ok := val.(types.Int)
					if !ok {
						return types.NewErr("expected int argument to abs, got %T", val)
					}
					if x < 0 {
						return -x
					}
					return x
				}),
			),
			cel.Overload("abs_double", []*cel.Type{cel.DoubleType}, cel.DoubleType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					x, ok := val.(types.Double)
					if !ok {
						return types.NewErr("expected double argument to abs, got %T", val)
					}
					return types.Double(math.Abs(float64(x)))
				}),
			),
		),
	}
}

func (*mathLib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}

// typeCheckFunctions returns predicates on the dynamic type of a value.
func typeCheckFunctions() cel.EnvOption {
	return cel.Lib(&typeCheckLib{})
}

type typeCheckLib struct{}

func (*typeCheckLib) CompileOptions() []cel.EnvOption {
	return []cel.EnvOption{
		cel.Function("isNumber",
			cel.Overload("isnumber_any", []*cel.Type{cel.AnyType}, cel.BoolType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					switch val.(type) {
					case types.Int, types.Uint, types.Double:
						return types.True
					}
					return types.False
				}),
			),
		),
		cel.Function("isNull",
			cel.Overload("isnull_any", []*cel.Type{cel.AnyType}, cel.BoolType,
				cel.UnaryBinding(func(val ref.Val) ref.Val {
					return types.Bool(val == types.NullValue)
				}),
			),
		),
	}
}

func (*typeCheckLib) ProgramOptions() []cel.ProgramOption {
	return []cel.ProgramOption{}
}
