package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid arguments")
	ErrQuotaExceeded   = errors.New("quota exceeded")
	ErrUnavailable     = errors.New("service unavailable")
)

// QuotaExceededError reports the usage snapshot that caused a rejection.
type QuotaExceededError struct {
	Current int
	Limit   int
	Plan    Plan
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %d of %d calls used on plan %s", e.Current, e.Limit, e.Plan)
}

func (e *QuotaExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// Stage names the render-service call a failure came from.
type Stage string

const (
	StageCodegen Stage = "codegen"
	StageRender  Stage = "render"
)

// GenerationError is returned when a workflow ends in FAILED. Animation is
// the persisted terminal record when it could be loaded.
type GenerationError struct {
	Stage     Stage
	Detail    string
	Animation *Animation
	Err       error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed at %s: %s", e.Stage, e.Detail)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func (e *GenerationError) AnimationID() uuid.UUID {
	if e.Animation == nil {
		return uuid.Nil
	}
	return e.Animation.ID
}

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, fe := range v {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
