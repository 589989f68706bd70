package circulation

import (
	"net/http"
	"time"

	"minilibrary/internal/apperr"
	"minilibrary/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

type CheckoutReq struct {
	BookID  string    `json:"book_id" validate:"required"`
	UserID  string    `json:"user_id"`
	DueDate time.Time `json:"due_date" validate:"required"`
}

type TransactionActionReq struct {
	Action string `json:"action" validate:"required"`
}

type ReserveReq struct {
	BookID string `json:"book_id" validate:"required"`
}

var errUnknownAction = apperr.InvalidField("action", `action must be "return"`)

// ListTransactions handles GET /v1/transactions
// @Summary List a user's transactions
// @Tags circulation
// @Produce json
// @Security Bearer
// @Param user_id query string false "Target user (staff only, defaults to the caller)"
// @Param status query string false "ACTIVE or RETURNED"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /v1/transactions [get]
func (h *HTTPHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	txs, err := h.service.ListTransactions(r.Context(), httpx.ActorFrom(r), query.Get("user_id"), query.Get("status"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, txs, nil)
}

// Checkout handles POST /v1/transactions
// @Summary Check out a copy of a book
// @Tags circulation
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CheckoutReq true "Checkout"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Router /v1/transactions [post]
func (h *HTTPHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	t, err := h.service.Checkout(r.Context(), httpx.ActorFrom(r), CheckoutCmd{
		BookID:  req.BookID,
		UserID:  req.UserID,
		DueDate: req.DueDate,
	})
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, t)
}

// UpdateTransaction handles PUT /v1/transactions/{id}
// @Summary Return a checked out copy
// @Tags circulation
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Transaction ID"
// @Param request body TransactionActionReq true "Action"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/transactions/{id} [put]
func (h *HTTPHandler) UpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req TransactionActionReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	if req.Action != "return" {
		httpx.WriteError(w, r, errUnknownAction)
		return
	}

	t, err := h.service.Return(r.Context(), httpx.ActorFrom(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, t, nil)
}

// ListReservations handles GET /v1/reservations
// @Summary List a user's pending reservations
// @Tags circulation
// @Produce json
// @Security Bearer
// @Param user_id query string false "Target user (staff only, defaults to the caller)"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/reservations [get]
func (h *HTTPHandler) ListReservations(w http.ResponseWriter, r *http.Request) {
	rs, err := h.service.ListReservations(r.Context(), httpx.ActorFrom(r), r.URL.Query().Get("user_id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, rs, nil)
}

// Reserve handles POST /v1/reservations
// @Summary Join the waiting list of an unavailable book
// @Tags circulation
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body ReserveReq true "Reservation"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Failure 422 {object} httpx.ErrorResponse
// @Router /v1/reservations [post]
func (h *HTTPHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	var req ReserveReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	res, err := h.service.Reserve(r.Context(), httpx.ActorFrom(r), req.BookID)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, res)
}

// CancelReservation handles DELETE /v1/reservations/{id}
// @Summary Cancel a pending reservation
// @Tags circulation
// @Produce json
// @Security Bearer
// @Param id path string true "Reservation ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/reservations/{id} [delete]
func (h *HTTPHandler) CancelReservation(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.CancelReservation(r.Context(), httpx.ActorFrom(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

// ExpireReservations handles POST /v1/reservations/expire
// @Summary Expire every lapsed reservation
// @Tags circulation
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /v1/reservations/expire [post]
func (h *HTTPHandler) ExpireReservations(w http.ResponseWriter, r *http.Request) {
	n, err := h.service.ExpireReservations(r.Context(), httpx.ActorFrom(r))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]int{"expired": n}, nil)
}
