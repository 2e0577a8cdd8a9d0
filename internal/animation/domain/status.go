package domain

import "fmt"

type Status string

const (
	Pending    Status = "PENDING"
	Processing Status = "PROCESSING"
	Completed  Status = "COMPLETED"
	Failed     Status = "FAILED"
)

var statuses = []Status{Pending, Processing, Completed, Failed}

func CanTransition(from, to Status) bool {
	switch from {
	case Pending:
		return to == Processing || to == Failed
	case Processing:
		return to == Completed || to == Failed
	case Completed:
		return false
	case Failed:
		return false
	default:
		return false
	}
}

// ValidateTransition wraps ErrInvalidTransition for any move CanTransition
// rejects, including a repeated write of the current status.
func ValidateTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}

func (s Status) Terminal() bool {
	return s == Completed || s == Failed
}

func (s Status) Valid() bool {
	for _, known := range statuses {
		if s == known {
			return true
		}
	}
	return false
}

func ParseStatus(v string) (Status, error) {
	s := Status(v)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, v)
	}
	return s, nil
}
