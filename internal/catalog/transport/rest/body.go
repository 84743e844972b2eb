package rest

import (
	"encoding/json"
	"errors"
	"io"
	"maps"
	"math"
	"mime"
	"net/http"
	"slices"
	"strconv"
	"strings"

	catalogerrors "github.com/abgdnv/observatory/internal/catalog/errors"
)

type fieldKind int

const (
	kindString fieldKind = iota
	kindNumber
	kindList
)

// formKinds gives the JSON type of form fields that are not strings.
var formKinds = map[string]fieldKind{
	"lat":       kindNumber,
	"lng":       kindNumber,
	"price":     kindNumber,
	"productId": kindNumber,
	"shopId":    kindNumber,
	"tags":      kindList,
}

func malformedBody() error {
	return catalogerrors.NewValidationError("body", "malformed request body")
}

// readBody decodes a JSON object or a form encoded body into raw JSON values keyed by field.
// An empty body yields an empty map.
func readBody(r *http.Request) (map[string]json.RawMessage, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/x-www-form-urlencoded" {
		return readForm(r)
	}

	raw := make(map[string]json.RawMessage)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return raw, nil
		}
		return nil, malformedBody()
	}
	// one object only
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, malformedBody()
	}
	return raw, nil
}

func readForm(r *http.Request) (map[string]json.RawMessage, error) {
	if err := r.ParseForm(); err != nil {
		return nil, malformedBody()
	}

	values := make(map[string][]string, len(r.PostForm))
	for _, key := range slices.Sorted(maps.Keys(r.PostForm)) {
		name := strings.TrimSuffix(key, "[]")
		values[name] = append(values[name], r.PostForm[key]...)
	}
	raw := make(map[string]json.RawMessage, len(values))
	for key, v := range values {
		value, err := formValue(formKinds[key], v)
		if err != nil {
			return nil, malformedBody()
		}
		raw[key] = value
	}
	return raw, nil
}

// formValue converts form values to JSON. Numbers that do not parse stay strings so that
// decoding reports them as values of the wrong type. An empty number means null.
func formValue(kind fieldKind, values []string) (json.RawMessage, error) {
	switch kind {
	case kindList:
		list := make([]string, 0, len(values))
		for _, v := range values {
			if v != "" {
				list = append(list, v)
			}
		}
		return json.Marshal(list)
	case kindNumber:
		v := strings.TrimSpace(values[0])
		if v == "" {
			return json.RawMessage("null"), nil
		}
		if f, err := strconv.ParseFloat(v, 64); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) {
			return json.Marshal(f)
		}
		return json.Marshal(v)
	default:
		return json.Marshal(values[0])
	}
}

// decodeInto fills dst from raw. Keys dst does not declare are ignored.
func decodeInto(raw map[string]json.RawMessage, dst any) error {
	payload, err := json.Marshal(raw)
	if err != nil {
		return malformedBody()
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return catalogerrors.NewValidationError(typeErr.Field, "invalid value type")
		}
		return malformedBody()
	}
	return nil
}

// decodeBody reads the body of r into dst.
func decodeBody(r *http.Request, dst any) error {
	raw, err := readBody(r)
	if err != nil {
		return err
	}
	return decodeInto(raw, dst)
}
