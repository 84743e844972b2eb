// Package mutation turns request bodies into validated store writes. PUT bodies
// become replace structs built from scratch, PATCH bodies become presence maps
// merged over the stored entity.
package mutation

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"strings"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

// newValidator reports fields under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Struct validates s and returns the failures as a ValidationError.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	vErr := &catalogerrors.ValidationError{}
	for _, fieldErr := range validationErrors {
		vErr.Add(fieldErr.Field(), "failed on rule: "+fieldErr.Tag())
	}
	return vErr
}

// decode unmarshals one PATCH value. A JSON null resets the field to its zero value.
func decode[T any](raw json.RawMessage, dst *T) error {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		var zero T
		*dst = zero
		return nil
	}
	var value T
	if err := json.Unmarshal(raw, &value); err != nil {
		return err
	}
	*dst = value
	return nil
}

// setter decodes a raw value and returns the assignment to run against the merged entity.
type setter[T any] func(raw json.RawMessage) (func(*T), error)

func field[T, V any](ref func(*T) *V) setter[T] {
	return func(raw json.RawMessage) (func(*T), error) {
		var value V
		if err := decode(raw, &value); err != nil {
			return nil, err
		}
		return func(target *T) { *ref(target) = value }, nil
	}
}

var readOnlyFields = []string{"id", "withdrawn"}

// presence decodes every key of a PATCH body with its setter. Unknown and read-only keys
// and values of the wrong type are reported together.
func presence[T any](raw map[string]json.RawMessage, setters map[string]setter[T]) ([]string, []func(*T), error) {
	if len(raw) == 0 {
		return nil, nil, catalogerrors.NewValidationError("body", "at least one field is required")
	}
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	vErr := &catalogerrors.ValidationError{}
	assignments := make([]func(*T), 0, len(keys))
	for _, key := range keys {
		set, ok := setters[key]
		if !ok {
			if slices.Contains(readOnlyFields, key) {
				vErr.Add(key, "read-only field")
			} else {
				vErr.Add(key, "unknown field")
			}
			continue
		}
		assign, err := set(raw[key])
		if err != nil {
			vErr.Add(key, "invalid value type")
			continue
		}
		assignments = append(assignments, assign)
	}
	if err := vErr.OrNil(); err != nil {
		return nil, nil, err
	}
	return keys, assignments, nil
}

// normalizeTags trims tags and removes duplicates, keeping first occurrences.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if !slices.Contains(out, tag) {
			out = append(out, tag)
		}
	}
	return out
}
