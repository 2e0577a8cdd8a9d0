package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/romariotrain/animation-platform/internal/animation/models"
	"github.com/romariotrain/animation-platform/internal/animation/repository"
)

// Query serves the owner-scoped read and delete operations.
type Query struct {
	repo repository.AnimationRepository
}

func NewQuery(repo repository.AnimationRepository) *Query {
	return &Query{repo: repo}
}

func (q *Query) List(ctx context.Context, ownerID uuid.UUID, f models.ListFilter) (*models.AnimationPage, error) {
	f = f.Normalize()
	items, total, err := q.repo.ListForOwner(ctx, ownerID, f)
	if err != nil {
		return nil, err
	}
	return &models.AnimationPage{Items: items, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

// Get returns models.ErrNotFound both for missing ids and for animations
// owned by someone else.
func (q *Query) Get(ctx context.Context, id, ownerID uuid.UUID) (*models.Animation, error) {
	if id == uuid.Nil {
		return nil, models.ErrNotFound
	}
	return q.repo.GetForOwner(ctx, id, ownerID)
}

func (q *Query) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	if id == uuid.Nil {
		return models.ErrNotFound
	}
	return q.repo.DeleteForOwner(ctx, id, ownerID)
}
