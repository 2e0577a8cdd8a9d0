package service

import "github.com/romariotrain/animation-platform/internal/animation/models"

// Admit reports whether u may start another generation according to the
// snapshot loaded at authentication time. It reserves nothing; the
// orchestrator's ReserveCall is the authoritative check.
func Admit(u *models.User) bool {
	return u != nil && u.APICalls < u.MaxCalls
}

func QuotaError(u *models.User) *models.QuotaExceededError {
	return &models.QuotaExceededError{Current: u.APICalls, Limit: u.MaxCalls, Plan: u.Plan}
}
