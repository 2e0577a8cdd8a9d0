package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/romariotrain/animation-platform/internal/animation/domain"
	"github.com/romariotrain/animation-platform/internal/animation/models"
	"github.com/romariotrain/animation-platform/internal/animation/repository"
)

func seedAnimation(t *testing.T, repo *repository.MemoryRepository, owner uuid.UUID, created time.Time) models.Animation {
	t.Helper()
	a := models.Animation{
		ID:              uuid.New(),
		UserID:          owner,
		Title:           "t",
		Prompt:          "draw a square rotating slowly",
		Duration:        5,
		Resolution:      models.Resolution720p,
		FrameRate:       30,
		BackgroundColor: "#000000",
		Status:          domain.Pending,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	require.NoError(t, repo.Create(context.Background(), &a))
	return a
}

func TestQuery_ListNormalizesPaging(t *testing.T) {
	repo := new(AnimationStoreMock)
	q := NewQuery(repo)
	owner := uuid.New()

	want := models.ListFilter{Page: 1, Limit: models.MaxLimit}
	repo.On("ListForOwner", mock.Anything, owner, want).Return([]models.Animation{}, 0, nil).Once()

	page, err := q.List(context.Background(), owner, models.ListFilter{Page: -3, Limit: 500})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, models.MaxLimit, page.Limit)
	assert.Equal(t, 0, page.Pages())
	repo.AssertExpectations(t)
}

func TestQuery_ListPropagatesStoreError(t *testing.T) {
	repo := new(AnimationStoreMock)
	q := NewQuery(repo)
	boom := errors.New("connection reset")

	repo.On("ListForOwner", mock.Anything, mock.Anything, mock.Anything).Return(nil, 0, boom).Once()

	_, err := q.List(context.Background(), uuid.New(), models.ListFilter{})
	require.ErrorIs(t, err, boom)
}

func TestQuery_ListNewestFirst(t *testing.T) {
	repo := repository.NewMemoryRepository()
	q := NewQuery(repo)
	owner := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	oldest := seedAnimation(t, repo, owner, base)
	middle := seedAnimation(t, repo, owner, base.Add(time.Minute))
	newest := seedAnimation(t, repo, owner, base.Add(2*time.Minute))
	seedAnimation(t, repo, uuid.New(), base.Add(time.Hour))

	page, err := q.List(context.Background(), owner, models.ListFilter{Page: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, newest.ID, page.Items[0].ID)
	assert.Equal(t, middle.ID, page.Items[1].ID)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.Pages())

	page, err = q.List(context.Background(), owner, models.ListFilter{Page: 2, Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, oldest.ID, page.Items[0].ID)
}

func TestQuery_GetAndDeleteAreOwnerScoped(t *testing.T) {
	repo := repository.NewMemoryRepository()
	q := NewQuery(repo)
	owner, stranger := uuid.New(), uuid.New()
	a := seedAnimation(t, repo, owner, time.Now())

	got, err := q.Get(context.Background(), a.ID, owner)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	_, err = q.Get(context.Background(), a.ID, stranger)
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = q.Get(context.Background(), uuid.New(), owner)
	require.ErrorIs(t, err, models.ErrNotFound)
	_, err = q.Get(context.Background(), uuid.Nil, owner)
	require.ErrorIs(t, err, models.ErrNotFound)

	require.ErrorIs(t, q.Delete(context.Background(), a.ID, stranger), models.ErrNotFound)
	require.NoError(t, q.Delete(context.Background(), a.ID, owner))
	require.ErrorIs(t, q.Delete(context.Background(), a.ID, owner), models.ErrNotFound)

	_, err = q.Get(context.Background(), a.ID, owner)
	require.ErrorIs(t, err, models.ErrNotFound)
}
