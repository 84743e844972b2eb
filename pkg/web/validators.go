package web

import (
	"fmt"
	"net/http"
	"strconv"
)

// ParamValidator is a function type that validates a parameter.
type ParamValidator func(valueToTest int64) bool

func newComparisonValidator(valueInClosure int64, compareFn func(argValue, closedValue int64) bool) ParamValidator {
	return func(argValue int64) bool {
		return compareFn(argValue, valueInClosure)
	}
}

// Gte returns a ParamValidator that checks if the argument is greater than or equal to the value captured in the closure.
func Gte(valToCompareAgainst int64) ParamValidator {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue int64) bool {
		return argValue >= closedValue
	})
}

// Gt returns a ParamValidator that checks if the argument is greater than the value captured in the closure.
func Gt(valToCompareAgainst int64) ParamValidator {
	return newComparisonValidator(valToCompareAgainst, func(argValue, closedValue int64) bool {
		return argValue > closedValue
	})
}

// ParseQueryInt reads an optional integer url parameter, returning def when it is absent.
func ParseQueryInt(r *http.Request, key string, def int64, pValidator ParamValidator) (int64, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return def, nil
	}
	intValue, err := strconv.ParseInt(value, 10, 64)
	if err != nil || !pValidator(intValue) {
		return 0, fmt.Errorf("invalid %s number: %s", key, value)
	}
	return intValue, nil
}

// ParseQueryIDs reads a repeatable id parameter. Both key=1&key=2 and key[]=1&key[]=2 are accepted.
func ParseQueryIDs(r *http.Request, key string) ([]int64, error) {
	query := r.URL.Query()
	raw := append(query[key], query[key+"[]"]...)
	ids := make([]int64, 0, len(raw))
	for _, value := range raw {
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid %s id: %s", key, value)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
