package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/romariotrain/animation-platform/internal/animation/domain"
)

type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
	OccurredAt() time.Time
}

// AnimationStatusChanged is written to the outbox in the same transaction
// as the status update it describes.
type AnimationStatusChanged struct {
	eventID     uuid.UUID
	animationID uuid.UUID
	userID      uuid.UUID
	from        domain.Status
	to          domain.Status
	occurredAt  time.Time
}

func NewAnimationStatusChanged(animationID, userID uuid.UUID, from, to domain.Status) *AnimationStatusChanged {
	return &AnimationStatusChanged{
		eventID:     uuid.New(),
		animationID: animationID,
		userID:      userID,
		from:        from,
		to:          to,
		occurredAt:  time.Now().UTC(),
	}
}

func (e *AnimationStatusChanged) EventID() uuid.UUID     { return e.eventID }
func (e *AnimationStatusChanged) EventType() string      { return "AnimationStatusChanged" }
func (e *AnimationStatusChanged) AggregateID() uuid.UUID { return e.animationID }
func (e *AnimationStatusChanged) OccurredAt() time.Time  { return e.occurredAt }

func (e *AnimationStatusChanged) UserID() uuid.UUID   { return e.userID }
func (e *AnimationStatusChanged) From() domain.Status { return e.from }
func (e *AnimationStatusChanged) To() domain.Status   { return e.to }

func (e *AnimationStatusChanged) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		EventID     uuid.UUID     `json:"event_id"`
		AnimationID uuid.UUID     `json:"animation_id"`
		UserID      uuid.UUID     `json:"user_id"`
		From        domain.Status `json:"from"`
		To          domain.Status `json:"to"`
		OccurredAt  time.Time     `json:"occurred_at"`
	}{
		EventID:     e.eventID,
		AnimationID: e.animationID,
		UserID:      e.userID,
		From:        e.from,
		To:          e.to,
		OccurredAt:  e.occurredAt,
	})
}
