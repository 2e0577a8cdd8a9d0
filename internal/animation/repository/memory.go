package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/romariotrain/animation-platform/internal/animation/domain"
	"github.com/romariotrain/animation-platform/internal/animation/models"
)

// MemoryRepository keeps animations in process memory. Stored values are
// copied on the way in and out.
type MemoryRepository struct {
	mu    sync.RWMutex
	data  map[uuid.UUID]*models.Animation
	clock func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		data:  make(map[uuid.UUID]*models.Animation),
		clock: time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, a *models.Animation) error {
	if a == nil || a.ID == uuid.Nil {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.data[a.ID]; exists {
		return models.ErrConflict
	}

	cp := *a
	r.data[a.ID] = &cp
	return nil
}

func (r *MemoryRepository) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Animation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	a, ok := r.data[id]
	if !ok || a.UserID != ownerID {
		return nil, models.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *MemoryRepository) ListForOwner(ctx context.Context, ownerID uuid.UUID, f models.ListFilter) ([]models.Animation, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	f = f.Normalize()

	r.mu.RLock()
	var matched []models.Animation
	for _, a := range r.data {
		if a.UserID != ownerID {
			continue
		}
		if f.Status != nil && a.Status != *f.Status {
			continue
		}
		matched = append(matched, *a)
	}
	r.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].ID.String() > matched[j].ID.String()
		}
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	start := f.Offset()
	if start < 0 || start >= total {
		return []models.Animation{}, total, nil
	}
	end := start + f.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func (r *MemoryRepository) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, a := range r.data {
		if a.UserID == ownerID {
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepository) DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.data[id]
	if !ok || a.UserID != ownerID {
		return models.ErrNotFound
	}
	delete(r.data, id)
	return nil
}

func (r *MemoryRepository) MarkProcessing(ctx context.Context, id uuid.UUID, generatedCode string) (*models.Animation, error) {
	return r.transition(ctx, id, domain.Processing, func(a *models.Animation) {
		a.GeneratedCode = &generatedCode
	})
}

func (r *MemoryRepository) MarkCompleted(ctx context.Context, id uuid.UUID, videoPath string) (*models.Animation, error) {
	return r.transition(ctx, id, domain.Completed, func(a *models.Animation) {
		a.VideoPath = &videoPath
	})
}

func (r *MemoryRepository) MarkFailed(ctx context.Context, id uuid.UUID, detail string) (*models.Animation, error) {
	return r.transition(ctx, id, domain.Failed, func(a *models.Animation) {
		a.ErrorLog = &detail
	})
}

func (r *MemoryRepository) transition(ctx context.Context, id uuid.UUID, to domain.Status, apply func(*models.Animation)) (*models.Animation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.data[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if err := domain.ValidateTransition(a.Status, to); err != nil {
		return nil, err
	}

	cp := *a
	apply(&cp)
	cp.Status = to
	cp.UpdatedAt = r.clock()
	r.data[id] = &cp

	out := cp
	return &out, nil
}

// MemoryUserRepository keeps accounts in process memory.
type MemoryUserRepository struct {
	mu   sync.RWMutex
	data map[uuid.UUID]*models.Credentials
}

func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{data: make(map[uuid.UUID]*models.Credentials)}
}

func (r *MemoryUserRepository) Create(ctx context.Context, c *models.Credentials) error {
	if c == nil || c.ID == uuid.Nil {
		return models.ErrInvalidArgument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.data {
		if existing.ID == c.ID ||
			strings.EqualFold(existing.Email, c.Email) ||
			strings.EqualFold(existing.Username, c.Username) {
			return models.ErrConflict
		}
	}

	cp := *c
	r.data[c.ID] = &cp
	return nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.data[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	u := c.User
	return &u, nil
}

func (r *MemoryUserRepository) GetCredentialsByEmail(ctx context.Context, email string) (*models.Credentials, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.data {
		if strings.EqualFold(c.Email, email) {
			cp := *c
			return &cp, nil
		}
	}
	return nil, models.ErrNotFound
}

func (r *MemoryUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName *string) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.data[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if firstName != nil {
		v := *firstName
		c.FirstName = &v
	}
	if lastName != nil {
		v := *lastName
		c.LastName = &v
	}
	c.UpdatedAt = time.Now()
	u := c.User
	return &u, nil
}

func (r *MemoryUserRepository) ReserveCall(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.data[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	if c.APICalls >= c.MaxCalls {
		return nil, &models.QuotaExceededError{Current: c.APICalls, Limit: c.MaxCalls, Plan: c.Plan}
	}
	c.APICalls++
	u := c.User
	return &u, nil
}

func (r *MemoryUserRepository) ReleaseCall(ctx context.Context, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.data[id]
	if !ok {
		return models.ErrNotFound
	}
	if c.APICalls > 0 {
		c.APICalls--
	}
	return nil
}
