package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/romariotrain/animation-platform/internal/animation/models"
)

type AnimationStoreMock struct {
	mock.Mock
}

func (m *AnimationStoreMock) Create(ctx context.Context, a *models.Animation) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

func (m *AnimationStoreMock) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*models.Animation, error) {
	args := m.Called(ctx, id, ownerID)
	return animationOrNil(args.Get(0)), args.Error(1)
}

func (m *AnimationStoreMock) ListForOwner(ctx context.Context, ownerID uuid.UUID, f models.ListFilter) ([]models.Animation, int, error) {
	args := m.Called(ctx, ownerID, f)
	var items []models.Animation
	if v := args.Get(0); v != nil {
		items = v.([]models.Animation)
	}
	return items, args.Int(1), args.Error(2)
}

func (m *AnimationStoreMock) DeleteForOwner(ctx context.Context, id, ownerID uuid.UUID) error {
	args := m.Called(ctx, id, ownerID)
	return args.Error(0)
}

func (m *AnimationStoreMock) CountForOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	args := m.Called(ctx, ownerID)
	return args.Int(0), args.Error(1)
}

func (m *AnimationStoreMock) MarkProcessing(ctx context.Context, id uuid.UUID, code string) (*models.Animation, error) {
	args := m.Called(ctx, id, code)
	return animationOrNil(args.Get(0)), args.Error(1)
}

func (m *AnimationStoreMock) MarkCompleted(ctx context.Context, id uuid.UUID, videoPath string) (*models.Animation, error) {
	args := m.Called(ctx, id, videoPath)
	return animationOrNil(args.Get(0)), args.Error(1)
}

func (m *AnimationStoreMock) MarkFailed(ctx context.Context, id uuid.UUID, detail string) (*models.Animation, error) {
	args := m.Called(ctx, id, detail)
	return animationOrNil(args.Get(0)), args.Error(1)
}

func animationOrNil(v any) *models.Animation {
	if v == nil {
		return nil
	}
	return v.(*models.Animation)
}

type UserStoreMock struct {
	mock.Mock
}

func (m *UserStoreMock) Create(ctx context.Context, c *models.Credentials) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *UserStoreMock) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserStoreMock) GetCredentialsByEmail(ctx context.Context, email string) (*models.Credentials, error) {
	args := m.Called(ctx, email)
	if v := args.Get(0); v != nil {
		return v.(*models.Credentials), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserStoreMock) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName *string) (*models.User, error) {
	args := m.Called(ctx, id, firstName, lastName)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserStoreMock) ReserveCall(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *UserStoreMock) ReleaseCall(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func userOrNil(v any) *models.User {
	if v == nil {
		return nil
	}
	return v.(*models.User)
}

type RendererMock struct {
	mock.Mock
}

func (m *RendererMock) GenerateCode(ctx context.Context, prompt string, s models.Settings) (string, error) {
	args := m.Called(ctx, prompt, s)
	return args.String(0), args.Error(1)
}

func (m *RendererMock) Render(ctx context.Context, code string, animationID uuid.UUID, s models.Settings) (string, error) {
	args := m.Called(ctx, code, animationID, s)
	return args.String(0), args.Error(1)
}
