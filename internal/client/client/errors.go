package client

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bytedance/sonic"
)

var (
	// ErrUnavailable matches transport failures where the server could not
	// be reached or did not answer in time.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized matches API errors with status 401.
	ErrUnauthorized = errors.New("unauthorized")
)

// APIError is a completed HTTP exchange whose status code is 400 or above.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	// Detail is the "detail" field of a JSON error body, if any.
	Detail string
	Body   []byte
	Header http.Header
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("request failed with status code %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("request failed with status code %d", e.StatusCode)
}

func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

type TransportKind int

const (
	KindNetwork TransportKind = iota + 1
	KindTimeout
	KindCanceled
)

func (k TransportKind) String() string {
	switch k {
	case KindNetwork:
		return "network error"
	case KindTimeout:
		return "timeout"
	case KindCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// TransportError is a request that never produced a response.
type TransportError struct {
	Kind   TransportKind
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %s: %v", e.Method, e.URL, e.Kind, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrUnavailable && (e.Kind == KindNetwork || e.Kind == KindTimeout)
}

// parseDetail extracts "detail" from a JSON error body. Besides the plain
// string form it understands validation errors shaped as
// {"detail": [{"msg": "..."}, ...]}, whose messages are joined with "; ".
func parseDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}

	var payload struct {
		Detail any `json:"detail"`
	}
	if err := sonic.Unmarshal(body, &payload); err != nil {
		return ""
	}

	switch d := payload.Detail.(type) {
	case string:
		return d
	case []any:
		var msg string
		for _, item := range d {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			s, ok := m["msg"].(string)
			if !ok || s == "" {
				continue
			}
			if msg != "" {
				msg += "; "
			}
			msg += s
		}
		return msg
	default:
		return ""
	}
}
