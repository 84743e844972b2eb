// Package errors provides the error taxonomy of the catalog: sentinel errors for
// lookups, authentication and storage failures, plus a field level ValidationError.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var ErrProductNotFound = errors.New("product not found")
var ErrShopNotFound = errors.New("shop not found")
var ErrUserNotFound = errors.New("user not found")

var ErrUsernameTaken = errors.New("username already taken")
var ErrInvalidCredentials = errors.New("invalid username or password")
var ErrUnauthorized = errors.New("missing or invalid token")
var ErrForbidden = errors.New("admin privileges required")

// ErrConflict reports a lock timeout, deadlock or serialization failure. The request can be retried.
var ErrConflict = errors.New("concurrent modification, retry the request")

var ErrCreateUser = errors.New("failed to create user")
var ErrFindUser = errors.New("failed to find user")
var ErrUpdateToken = errors.New("failed to update token")

var ErrCreateProduct = errors.New("failed to create product")
var ErrFindProduct = errors.New("failed to find product")
var ErrUpdateProduct = errors.New("failed to update product")

var ErrCreateShop = errors.New("failed to create shop")
var ErrFindShop = errors.New("failed to find shop")
var ErrUpdateShop = errors.New("failed to update shop")

var ErrUpsertPrice = errors.New("failed to upsert price")
var ErrFindPrices = errors.New("failed to find prices")

var ErrTransactionBegin = errors.New("failed to begin transaction")
var ErrTransactionCommit = errors.New("failed to commit transaction")
var ErrTransactionRollback = errors.New("failed to rollback transaction")

// ValidationError carries one message per offending field. It never wraps a storage error.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records message for field, keeping the first message when the field already failed.
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// OrNil returns e when at least one field failed, nil otherwise.
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// AsValidation reports whether err is, or wraps, a ValidationError.
func AsValidation(err error) (*ValidationError, bool) {
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr, true
	}
	return nil, false
}
