package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/romariotrain/animation-platform/internal/animation/domain"
	"github.com/romariotrain/animation-platform/internal/animation/models"
)

const animationNotFound = "Animation not found"

func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	req := newGenerateAnimationRequest()
	if err := h.decode(w, r, &req); err != nil {
		h.writeError(w, r, err, animationNotFound)
		return
	}

	a, err := h.svc.Orchestrator.Generate(r.Context(), req.toModel(), currentUser(r.Context()))
	if err != nil {
		h.writeError(w, r, err, animationNotFound)
		return
	}
	writeOK(w, http.StatusOK, "Animation generated successfully", animationData{Animation: toAnimationResponse(a)})
}

func (h *Handler) ListAnimations(w http.ResponseWriter, r *http.Request) {
	f, err := parseListFilter(r)
	if err != nil {
		h.writeError(w, r, err, animationNotFound)
		return
	}

	page, err := h.svc.Query.List(r.Context(), currentUser(r.Context()).ID, f)
	if err != nil {
		h.writeError(w, r, err, animationNotFound)
		return
	}

	items := make([]AnimationSummary, 0, len(page.Items))
	for _, a := range page.Items {
		items = append(items, toAnimationSummary(a))
	}
	writeOK(w, http.StatusOK, "", animationListData{
		Animations: items,
		Pagination: Pagination{Page: page.Page, Limit: page.Limit, Total: page.Total, Pages: page.Pages()},
	})
}

func (h *Handler) GetAnimation(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Query.Get(r.Context(), animationID(r), currentUser(r.Context()).ID)
	if err != nil {
		h.writeError(w, r, err, animationNotFound)
		return
	}
	writeOK(w, http.StatusOK, "", animationData{Animation: toAnimationResponse(a)})
}

func (h *Handler) DeleteAnimation(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Query.Delete(r.Context(), animationID(r), currentUser(r.Context()).ID); err != nil {
		h.writeError(w, r, err, animationNotFound)
		return
	}
	writeOK(w, http.StatusOK, "Animation deleted successfully", nil)
}

// animationID returns uuid.Nil for a malformed id, which the query layer
// reports as not found.
func animationID(r *http.Request) uuid.UUID {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil
	}
	return id
}

// parseListFilter rejects values that are not integers and unknown statuses.
// Out-of-range page and limit values are clamped by ListFilter.Normalize.
func parseListFilter(r *http.Request) (models.ListFilter, error) {
	q := r.URL.Query()
	f := models.ListFilter{Page: models.DefaultPage, Limit: models.DefaultLimit}
	var verrs models.ValidationErrors

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			verrs = append(verrs, models.FieldError{Field: "page", Message: "page must be an integer"})
		}
		f.Page = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			verrs = append(verrs, models.FieldError{Field: "limit", Message: "limit must be an integer"})
		}
		f.Limit = n
	}
	if v := q.Get("status"); v != "" {
		st, err := domain.ParseStatus(strings.ToUpper(v))
		if err != nil {
			verrs = append(verrs, models.FieldError{
				Field:   "status",
				Message: "status must be one of [PENDING, PROCESSING, COMPLETED, FAILED]",
			})
		} else {
			f.Status = &st
		}
	}

	if len(verrs) > 0 {
		return models.ListFilter{}, verrs
	}
	return f.Normalize(), nil
}
