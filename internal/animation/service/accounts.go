package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/romariotrain/animation-platform/internal/animation/models"
	"github.com/romariotrain/animation-platform/internal/animation/repository"
	"github.com/romariotrain/animation-platform/internal/auth"
)

type RegisterInput struct {
	Email     string
	Username  string
	Password  string
	FirstName *string
	LastName  *string
}

// Session is a user together with a freshly issued bearer token.
type Session struct {
	User  *models.User
	Token string
}

// Accounts implements registration, login and profile operations.
type Accounts struct {
	users       repository.UserRepository
	animations  repository.AnimationRepository
	issuer      *auth.Issuer
	defaultPlan models.Plan
	defaultMax  int
	clock       func() time.Time
	idGen       func() uuid.UUID
}

func NewAccounts(users repository.UserRepository, animations repository.AnimationRepository, issuer *auth.Issuer, defaultMaxCalls int) *Accounts {
	return &Accounts{
		users:       users,
		animations:  animations,
		issuer:      issuer,
		defaultPlan: models.PlanFree,
		defaultMax:  defaultMaxCalls,
		clock:       time.Now,
		idGen:       uuid.New,
	}
}

// Register returns models.ErrConflict when the email or username is taken.
func (s *Accounts) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	c := &models.Credentials{
		User: models.User{
			ID:        s.idGen(),
			Email:     strings.ToLower(strings.TrimSpace(in.Email)),
			Username:  in.Username,
			FirstName: in.FirstName,
			LastName:  in.LastName,
			Plan:      s.defaultPlan,
			MaxCalls:  s.defaultMax,
			CreatedAt: now,
			UpdatedAt: now,
		},
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.session(&c.User)
}

// Login fails with auth.ErrInvalidCredentials for an unknown email and for
// a wrong password alike.
func (s *Accounts) Login(ctx context.Context, email, password string) (*Session, error) {
	c, err := s.users.GetCredentialsByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, err
	}
	if err := auth.CheckPassword(c.PasswordHash, password); err != nil {
		return nil, err
	}
	return s.session(&c.User)
}

func (s *Accounts) UpdateProfile(ctx context.Context, id uuid.UUID, firstName, lastName *string) (*models.User, error) {
	return s.users.UpdateProfile(ctx, id, firstName, lastName)
}

// Usage reads a fresh user row rather than the authentication snapshot.
func (s *Accounts) Usage(ctx context.Context, id uuid.UUID) (*models.Usage, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	total, err := s.animations.CountForOwner(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count animations: %w", err)
	}
	return &models.Usage{
		Plan:            u.Plan,
		APICalls:        u.APICalls,
		MaxCalls:        u.MaxCalls,
		TotalAnimations: total,
	}, nil
}

func (s *Accounts) session(u *models.User) (*Session, error) {
	token, err := s.issuer.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: token}, nil
}
