// Package interpolate evaluates `${ ... }` jq runtime expressions inside
// task property values. Rendering happens in the run context, before any
// value reaches the connection resolver or a service client.
package interpolate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
	"github.com/sirupsen/logrus"
)

// IsExpr reports whether a value is a runtime expression, e.g. "${ .bucket }".
func IsExpr(value string) bool {
	return strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}")
}

// SanitizeExpr strips the ${ } delimiters from a runtime expression.
func SanitizeExpr(value string) string {
	value = strings.TrimPrefix(value, "${")
	value = strings.TrimSuffix(value, "}")
	return strings.TrimSpace(value)
}

// Traverse walks a decoded task value and evaluates every runtime
// expression it finds against the given input and variables. Maps and
// slices are rewritten in place.
func Traverse(node any, input any, variables map[string]any) (any, error) {
	switch v := node.(type) {
	case map[string]any:
		for key, value := range v {
			evaluatedValue, err := Traverse(value, input, variables)
			if err != nil {
				logrus.WithFields(logrus.Fields{
					"key": key,
				}).WithError(err).Error("Failed to evaluate expression in map")

				return nil, err
			}
			v[key] = evaluatedValue
		}
		return v, nil

	case []any:
		for i, value := range v {
			evaluatedValue, err := Traverse(value, input, variables)
			if err != nil {
				return nil, err
			}
			v[i] = evaluatedValue
		}
		return v, nil

	case string:
		// Remove leading/trailing whitespace and newlines
		v = strings.TrimSpace(v)

		if IsExpr(v) {
			return EvaluateJQ(SanitizeExpr(v), input, variables)
		}
		return v, nil

	default:
		// Return other types as-is
		return v, nil
	}
}

// EvaluateJQ evaluates a jq expression against a given JSON input.
func EvaluateJQ(expression string, input any, variables map[string]any) (any, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, fmt.Errorf("failed to parse jq expression: %s, error: %w", expression, err)
	}

	// Get the variable names & values in a single pass:
	names, values := getVariableNamesAndValues(variables)

	code, err := gojq.Compile(query, gojq.WithVariables(names))
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %s, error: %w", expression, err)
	}

	iter := code.Run(input, values...)
	result, ok := iter.Next()
	if !ok {
		return nil, errors.New("no result from jq evaluation")
	}

	// If there's an error from the jq engine, report it
	if errVal, isErr := result.(error); isErr {
		return nil, fmt.Errorf("jq evaluation error: %w", errVal)
	}

	return result, nil
}

// getVariableNamesAndValues constructs two slices, where 'names[i]' matches 'values[i]'.
func getVariableNamesAndValues(vars map[string]any) ([]string, []any) {
	names := make([]string, 0, len(vars))
	values := make([]any, 0, len(vars))

	for k, v := range vars {
		names = append(names, k)
		values = append(values, v)
	}
	return names, values
}
