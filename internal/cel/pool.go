// pool.go
package cel

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	"github.com/google/cel-go/common/types/traits"
)

// ExpressionPool caches compiled CEL expressions
type ExpressionPool struct {
	mu          sync.RWMutex
	expressions map[string]cel.Program
	env         *cel.Env
}

// NewExpressionPool creates a new expression pool with the transform environment
func NewExpressionPool() (*ExpressionPool, error) {
	env, err := NewEnvironment()
	if err != nil {
		return nil, fmt.Errorf("failed to create environment: %w", err)
	}

	return NewExpressionPoolWithEnv(env)
}

// NewExpressionPoolWithEnv creates a new expression pool with a custom CEL environment
func NewExpressionPoolWithEnv(env *cel.Env) (*ExpressionPool, error) {
	if env == nil {
		return nil, fmt.Errorf("CEL environment cannot be nil")
	}

	return &ExpressionPool{
		env:         env,
		expressions: make(map[string]cel.Program),
	}, nil
}

// GetExpression retrieves or compiles an expression. Expressions are parsed
// but not type-checked: the value's type is only known at evaluation time,
// and branches such as `cond ? null : 1.5` must stay legal.
func (e *ExpressionPool) GetExpression(exprStr string) (cel.Program, error) {
	e.mu.RLock()
	if program, ok := e.expressions[exprStr]; ok {
		e.mu.RUnlock()
		return program, nil
	}
	e.mu.RUnlock()

	ast, issues := e.env.Parse(exprStr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to parse expression '%s': %w", exprStr, issues.Err())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program: %w", err)
	}

	e.mu.Lock()
	e.expressions[exprStr] = program
	e.mu.Unlock()

	return program, nil
}

// Len returns the number of cached programs
func (e *ExpressionPool) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.expressions)
}

// EvaluateExpression evaluates a compiled expression with value bound to x
func (e *ExpressionPool) EvaluateExpression(program cel.Program, value any) (any, error) {
	activation, err := cel.NewActivation(map[string]any{ValueVar: toCELNative(value)})
	if err != nil {
		return nil, fmt.Errorf("failed to create activation: %w", err)
	}

	val, _, err := program.Eval(activation)
	if err != nil {
		return nil, fmt.Errorf("expression evaluation error: %w", err)
	}

	return ConvertFromRefVal(val)
}

// Func compiles exprStr into a plain function of the decoded value
func (e *ExpressionPool) Func(exprStr string) (func(any) (any, error), error) {
	program, err := e.GetExpression(exprStr)
	if err != nil {
		return nil, err
	}
	return func(v any) (any, error) {
		return e.EvaluateExpression(program, v)
	}, nil
}

// toCELNative widens decoded values to the types CEL adapts natively.
func toCELNative(v any) any {
	switch val := v.(type) {
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case int:
		return int64(val)
	case uint8:
		return uint64(val)
	case uint16:
		return uint64(val)
	case uint32:
		return uint64(val)
	case float32:
		return float64(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = toCELNative(item)
		}
		return out
	case nil:
		return types.NullValue
	default:
		return v
	}
}

// adaptCELResult converts CEL result values to Go native types
func adaptCELResult(val ref.Val) any {
	switch v := val.(type) {
	case types.Null:
		return nil
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.Bool:
		return bool(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case traits.Lister:
		size := v.Size().(types.Int)
		result := make([]any, size)
		for i := types.Int(0); i < size; i++ {
			result[i] = adaptCELResult(v.Get(i))
		}
		return result
	case traits.Mapper:
		result := make(map[string]any)
		iter := v.Iterator()
		for iter.HasNext() == types.True {
			key := iter.Next()
			keyStr, ok := key.Value().(string)
			if !ok {
				keyStr = fmt.Sprintf("%v", key.Value())
			}
			result[keyStr] = adaptCELResult(v.Get(key))
		}
		return result
	default:
		return val.Value()
	}
}

// ConvertFromRefVal converts a CEL ref.Val to a Go value
func ConvertFromRefVal(val ref.Val) (any, error) {
	if val == nil {
		return nil, nil
	}

	if types.IsError(val) {
		return nil, fmt.Errorf("CEL error: %v", val)
	}

	if types.IsUnknown(val) {
		return nil, fmt.Errorf("unknown CEL value")
	}

	return adaptCELResult(val), nil
}
