package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/romariotrain/animation-platform/internal/animation/models"
)

// AnimationRepository stores animations. Reads and deletes are always scoped
// to an owner; a missing row and a foreign row both yield models.ErrNotFound.
// Each Mark* call is one atomic status transition and returns
// domain.ErrInvalidTransition when the current status does not allow it.
type AnimationRepository interface {
	Create(ctx context.Context, a *models.Animation) error
	GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Animation, error)
	ListForOwner(ctx context.Context, ownerID uuid.UUID, f models.ListFilter) ([]models.Animation, int, error)
	DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) error
	CountForOwner(ctx context.Context, ownerID uuid.UUID) (int, error)

	MarkProcessing(ctx context.Context, id uuid.UUID, generatedCode string) (*models.Animation, error)
	MarkCompleted(ctx context.Context, id uuid.UUID, videoPath string) (*models.Animation, error)
	MarkFailed(ctx context.Context, id uuid.UUID, detail string) (*models.Animation, error)
}

// UserRepository stores accounts. ReserveCall and ReleaseCall are single
// conditional updates on the usage counter.
type UserRepository interface {
	Create(ctx context.Context, c *models.Credentials) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetCredentialsByEmail(ctx context.Context, email string) (*models.Credentials, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName *string) (*models.User, error)

	ReserveCall(ctx context.Context, id uuid.UUID) (*models.User, error)
	ReleaseCall(ctx context.Context, id uuid.UUID) error
}
