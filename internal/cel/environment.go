package cel

import (
	"fmt"

	"github.com/google/cel-go/cel"
)

// ValueVar is the variable a transform expression sees the decoded value as.
const ValueVar = "x"

// NewEnvironment creates the CEL environment used by schema transforms.
func NewEnvironment() (*cel.Env, error) {
	opts := []cel.EnvOption{
		cel.Variable(ValueVar, cel.DynType),

		// Numeric helpers for mixed int/double values
		mathFunctions(),
		typeCheckFunctions(),
		stringFunctions(),
	}

	env, err := cel.NewEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return env, nil
}
