package bookmark

import "net/http"

// validationError rejects a bookmark request (mapped to 400).
type validationError struct{ msg string }

func (e validationError) Error() string   { return e.msg }
func (e validationError) StatusCode() int { return http.StatusBadRequest }

// IsValidation reports whether err is a request validation failure.
func IsValidation(err error) bool {
	_, ok := err.(validationError)
	return ok
}

// storeError wraps a persistence failure (mapped to 500).
type storeError struct{ err error }

func (e storeError) Error() string   { return "Internal server error: " + e.err.Error() }
func (e storeError) Unwrap() error   { return e.err }
func (e storeError) StatusCode() int { return http.StatusInternalServerError }

// IsStoreFailure reports whether err came from the bookmark store.
func IsStoreFailure(err error) bool {
	_, ok := err.(storeError)
	return ok
}
