package review

import (
	"net/http"

	"minilibrary/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Submit handles POST /v1/reviews
// @Summary Create or replace your review of a book
// @Description Rate a book (1-5) with an optional comment. Resubmitting overwrites the earlier review.
// @Tags reviews
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body Input true "Review"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/reviews [post]
func (h *HTTPHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req Input
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	rv, err := h.service.Submit(r.Context(), httpx.ActorFrom(r), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, rv, nil)
}

// ListByBook handles GET /v1/books/{id}/reviews
// @Summary List a book's reviews with its rating summary
// @Tags reviews
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id}/reviews [get]
func (h *HTTPHandler) ListByBook(w http.ResponseWriter, r *http.Request) {
	actor := httpx.ActorFrom(r)
	bookID := r.PathValue("id")

	reviews, err := h.service.ListByBook(r.Context(), actor, bookID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	sum, err := h.service.Summary(r.Context(), actor, bookID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, map[string]any{
		"reviews":        reviews,
		"average_rating": sum.Average,
		"review_count":   sum.Count,
	}, nil)
}
