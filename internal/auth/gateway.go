package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/romariotrain/animation-platform/internal/animation/models"
)

type UserLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Gateway resolves an Authorization header to the current user projection.
type Gateway struct {
	issuer *Issuer
	users  UserLookup
}

func NewGateway(issuer *Issuer, users UserLookup) *Gateway {
	return &Gateway{issuer: issuer, users: users}
}

// Authenticate returns an *Error for every rejection. Other errors come from
// the user store.
func (g *Gateway) Authenticate(ctx context.Context, header string) (*models.User, error) {
	token, err := BearerToken(header)
	if err != nil {
		return nil, err
	}
	id, err := g.issuer.Parse(token)
	if err != nil {
		return nil, err
	}
	u, err := g.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return u, nil
}

func BearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingToken
	}
	return token, nil
}
