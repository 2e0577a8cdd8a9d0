package httpapi

import (
	"errors"
	"net/http"

	"github.com/romariotrain/animation-platform/internal/animation/models"
	"github.com/romariotrain/animation-platform/internal/animation/service"
	"github.com/romariotrain/animation-platform/internal/auth"
)

const userNotFound = "User not found"

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, userNotFound)
		return
	}

	sess, err := h.svc.Accounts.Register(r.Context(), service.RegisterInput{
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		h.writeError(w, r, err, userNotFound)
		return
	}
	writeOK(w, http.StatusCreated, "User registered successfully", sessionData{User: toUserResponse(sess.User), Token: sess.Token})
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, userNotFound)
		return
	}

	sess, err := h.svc.Accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.writeError(w, r, err, userNotFound)
		return
	}
	writeOK(w, http.StatusOK, "Login successful", sessionData{User: toUserResponse(sess.User), Token: sess.Token})
}

// Me serves both /auth/me and /users/profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, "", userData{User: toUserResponse(currentUser(r.Context()))})
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req UpdateProfileRequest
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, userNotFound)
		return
	}

	u, err := h.svc.Accounts.UpdateProfile(r.Context(), currentUser(r.Context()).ID, req.FirstName, req.LastName)
	if err != nil {
		h.writeError(w, r, accountError(err), userNotFound)
		return
	}
	writeOK(w, http.StatusOK, "Profile updated successfully", userData{User: toUserResponse(u)})
}

func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.svc.Accounts.Usage(r.Context(), currentUser(r.Context()).ID)
	if err != nil {
		h.writeError(w, r, accountError(err), userNotFound)
		return
	}
	writeOK(w, http.StatusOK, "", usageData{Usage: UsageResponse{
		Plan:            usage.Plan,
		APICalls:        usage.APICalls,
		MaxCalls:        usage.MaxCalls,
		RemainingCalls:  usage.RemainingCalls(),
		TotalAnimations: usage.TotalAnimations,
	}})
}

// accountError turns a user deleted after authentication into the same 401
// the gateway would have produced.
func accountError(err error) error {
	if errors.Is(err, models.ErrNotFound) {
		return auth.ErrUserNotFound
	}
	return err
}
