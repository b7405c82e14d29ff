package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Kind classifies a failed upstream call
type Kind string

const (
	// KindNetwork means no response reached the client (status 0)
	KindNetwork Kind = "network"
	// KindTimeout means an attempt exceeded its budget (status 408)
	KindTimeout Kind = "timeout"
	// KindProtocol means a success status carried a body that is not JSON
	KindProtocol Kind = "protocol"
	// KindHTTP means a non-2xx status after retries were exhausted
	KindHTTP Kind = "http"
)

// Sentinels for errors.Is against *Error
var (
	ErrNetwork  = errors.New("upstream unreachable")
	ErrTimeout  = errors.New("upstream timeout")
	ErrProtocol = errors.New("upstream protocol error")
	ErrHTTP     = errors.New("upstream http error")
)

// Error is the classified failure of one logical upstream call
type Error struct {
	Kind     Kind
	Status   int
	Method   string
	Endpoint string
	Message  string
	// Body is the raw response body, if any
	Body []byte
	// Fields holds per-field messages from a validation error body
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string {
	call := e.Method + " " + e.Endpoint
	switch e.Kind {
	case KindNetwork:
		if e.Err != nil {
			return fmt.Sprintf("network error calling %s: %v", call, e.Err)
		}
		return "network error calling " + call
	case KindTimeout:
		return fmt.Sprintf("%s timed out: %s", call, e.Message)
	case KindProtocol:
		return fmt.Sprintf("unexpected response from %s: %s", call, e.Message)
	default:
		return fmt.Sprintf("%s failed with status %d: %s", call, e.Status, e.Message)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Kind == KindNetwork
	case ErrTimeout:
		return e.Kind == KindTimeout
	case ErrProtocol:
		return e.Kind == KindProtocol
	case ErrHTTP:
		return e.Kind == KindHTTP
	}
	return false
}

// StatusOf returns the upstream status carried by err, or 0
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func networkError(method, endpoint string, err error) *Error {
	return &Error{Kind: KindNetwork, Method: method, Endpoint: endpoint, Message: "upstream unreachable", Err: err}
}

func timeoutError(method, endpoint string, budget time.Duration) *Error {
	return &Error{
		Kind:     KindTimeout,
		Status:   http.StatusRequestTimeout,
		Method:   method,
		Endpoint: endpoint,
		Message:  fmt.Sprintf("no response within %s", budget),
	}
}

func protocolError(method, endpoint string, status int, failure *parseFailure, body []byte) *Error {
	return &Error{
		Kind:     KindProtocol,
		Status:   status,
		Method:   method,
		Endpoint: endpoint,
		Message:  failure.String(),
		Body:     body,
		Err:      failure.err,
	}
}

// httpError builds the error for a non-2xx response, lifting the upstream's
// message and Laravel-style field errors out of a JSON body when present
func httpError(method, endpoint string, status int, body []byte) *Error {
	e := &Error{
		Kind:     KindHTTP,
		Status:   status,
		Method:   method,
		Endpoint: endpoint,
		Message:  http.StatusText(status),
		Body:     body,
	}

	var envelope struct {
		Message string                     `json:"message"`
		Error   string                     `json:"error"`
		Errors  map[string]json.RawMessage `json:"errors"`
	}
	if json.Unmarshal(body, &envelope) != nil {
		return e
	}

	switch {
	case strings.TrimSpace(envelope.Message) != "":
		e.Message = strings.TrimSpace(envelope.Message)
	case strings.TrimSpace(envelope.Error) != "":
		e.Message = strings.TrimSpace(envelope.Error)
	}

	for field, raw := range envelope.Errors {
		if e.Fields == nil {
			e.Fields = make(map[string]string, len(envelope.Errors))
		}
		var many []string
		var one string
		switch {
		case json.Unmarshal(raw, &many) == nil && len(many) > 0:
			e.Fields[field] = many[0]
		case json.Unmarshal(raw, &one) == nil:
			e.Fields[field] = one
		}
	}
	return e
}
