package notify

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// ConfigError means no usable messaging client could be built.
type ConfigError struct {
	Reason   string
	Warnings []Warning
}

func (e *ConfigError) Error() string { return "messaging config: " + e.Reason }

// IsConfigError reports whether err is a fatal messaging config error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Warning is a non-fatal validation problem found at load time.
type Warning struct {
	Client   string `json:"client,omitempty"`
	Category string `json:"category,omitempty"`
	Message  string `json:"message"`
}

func (w Warning) String() string {
	var b strings.Builder
	if w.Client != "" {
		b.WriteString("client " + w.Client + ": ")
	}
	if w.Category != "" {
		b.WriteString("category " + w.Category + ": ")
	}
	b.WriteString(w.Message)
	return b.String()
}

// BackendError is a non-2xx answer from a messaging backend.
type BackendError struct {
	Status int
	Body   string
}

func (e *BackendError) Error() string {
	if e.Status == 0 {
		return "backend error: " + e.Body
	}
	if e.Body == "" {
		return fmt.Sprintf("backend returned %d", e.Status)
	}
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Body)
}

// IsBackendError reports whether err came from a non-2xx backend response.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// invalidEventError rejects an event before routing.
type invalidEventError struct{ msg string }

func (e invalidEventError) Error() string { return e.msg }

// IsInvalidEvent reports whether err rejected the event itself.
func IsInvalidEvent(err error) bool {
	var ie invalidEventError
	return errors.As(err, &ie)
}

// panicError wraps a value recovered from an adapter.
type panicError struct{ v any }

func (e panicError) Error() string { return fmt.Sprintf("adapter panic: %v", e.v) }

// IsTimeout reports deadline, cancellation and network timeouts.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func classify(err error) ErrKind {
	var pe panicError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &pe):
		return ErrKindInternal
	case IsInvalidEvent(err):
		return ErrKindConfiguration
	case IsTimeout(err):
		return ErrKindTimeout
	case IsBackendError(err):
		return ErrKindBackend
	default:
		return ErrKindTransport
	}
}
