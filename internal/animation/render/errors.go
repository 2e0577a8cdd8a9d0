package render

import (
	"fmt"

	"github.com/romariotrain/animation-platform/internal/animation/models"
)

// Kind classifies how a render-service call failed.
type Kind int

const (
	// KindTransport: the request never produced an HTTP response.
	KindTransport Kind = iota + 1
	// KindStatus: the service answered with a non-2xx status.
	KindStatus
	// KindPayload: a 2xx answer that could not be decoded or lacked the expected field.
	KindPayload
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindStatus:
		return "status"
	case KindPayload:
		return "payload"
	default:
		return "unknown"
	}
}

// Error is the only error type returned by Client calls.
type Error struct {
	Stage      models.Stage
	Kind       Kind
	StatusCode int
	// Detail is the structured message reported by the service, if any.
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Detail != "" {
			return fmt.Sprintf("render %s: status %d: %s", e.Stage, e.StatusCode, e.Detail)
		}
		return fmt.Sprintf("render %s: status %d", e.Stage, e.StatusCode)
	case KindPayload:
		return fmt.Sprintf("render %s: bad payload: %v", e.Stage, e.Err)
	default:
		return fmt.Sprintf("render %s: %v", e.Stage, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
