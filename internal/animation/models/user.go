package models

import (
	"time"

	"github.com/google/uuid"
)

type Plan string

const (
	PlanFree       Plan = "FREE"
	PlanPro        Plan = "PRO"
	PlanEnterprise Plan = "ENTERPRISE"
)

// User is the projection handed to request handlers. It never carries the
// password hash; see Credentials.
type User struct {
	ID        uuid.UUID `db:"id"`
	Email     string    `db:"email"`
	Username  string    `db:"username"`
	FirstName *string   `db:"first_name"`
	LastName  *string   `db:"last_name"`
	Plan      Plan      `db:"plan"`
	APICalls  int       `db:"api_calls"`
	MaxCalls  int       `db:"max_calls"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Credentials struct {
	User
	PasswordHash string `db:"password_hash"`
}

type Usage struct {
	Plan            Plan
	APICalls        int
	MaxCalls        int
	TotalAnimations int
}

func (u Usage) RemainingCalls() int {
	return u.MaxCalls - u.APICalls
}
