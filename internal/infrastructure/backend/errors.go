package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"

	"github.com/comarapa/catalog-desk/internal/domain"
)

// Fixed user-facing messages for transport failures, matching the tone
// the rest of the desk presents to staff.
const (
	msgNetwork = "Error de conexión. Verifica tu conexión a internet."
	msgTimeout = "La solicitud tardó demasiado. Intenta de nuevo."
	msgUnknown = "Error desconocido"
)

// StatusError is a non-200 backend response with its formatted message.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("backend returned status %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error {
	return domain.ErrBackendFailure
}

// newStatusError builds a StatusError from a response body, extracting the
// most specific message the envelope carries.
func newStatusError(status int, body []byte) *StatusError {
	return &StatusError{StatusCode: status, Message: messageFromBody(body)}
}

// validationItem is one entry of a FastAPI 422 detail array.
type validationItem struct {
	Loc []interface{} `json:"loc"`
	Msg string        `json:"msg"`
}

// messageFromBody extracts an error message from a backend error
// envelope. Preference order: a string `error` field, then `detail` as a
// plain string, then the first entry of a FastAPI validation array
// rendered as "field: message". Returns "" when nothing usable is found.
func messageFromBody(body []byte) string {
	var env struct {
		Error  string          `json:"error"`
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}

	if env.Error != "" {
		return env.Error
	}

	if len(env.Detail) == 0 {
		return ""
	}

	var detailStr string
	if err := json.Unmarshal(env.Detail, &detailStr); err == nil {
		return detailStr
	}

	var items []validationItem
	if err := json.Unmarshal(env.Detail, &items); err == nil && len(items) > 0 {
		first := items[0]
		if first.Msg != "" {
			if len(first.Loc) > 0 {
				field := first.Loc[len(first.Loc)-1]
				return fmt.Sprintf("%v: %s", field, first.Msg)
			}
			return first.Msg
		}
	}

	return ""
}

// transportError maps a failed round trip to the timeout or unreachable
// sentinel so ErrorMessage can pick the right fixed message.
func transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrBackendTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrBackendTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrBackendTimeout, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrBackendUnavailable, err)
}

// ErrorMessage converts any error from this package into the message
// shown to staff: server-provided messages verbatim, fixed messages for
// transport failures, a generic fallback otherwise.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.Message != "" {
		return statusErr.Message
	}

	switch {
	case errors.Is(err, domain.ErrBackendTimeout):
		return msgTimeout
	case errors.Is(err, domain.ErrBackendUnavailable):
		return msgNetwork
	}

	if msg := err.Error(); msg != "" {
		return msg
	}
	return msgUnknown
}
