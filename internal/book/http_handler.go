package book

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"minilibrary/internal/httpx"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// List handles GET /v1/books
// @Summary List books
// @Tags books
// @Produce json
// @Security Bearer
// @Param q query string false "Free-text search over title, author, ISBN and genre"
// @Param genre query string false "Genre (case-insensitive)"
// @Param available query bool false "Only books with copies on the shelf"
// @Param sort query string false "created_at, title, author, published_year or rating"
// @Param order query string false "asc or desc (default desc)"
// @Param page query int false "Page number"
// @Param limit query int false "Page size (default 12, max 100)"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	params := Query{
		Q:             query.Get("q"),
		Genre:         query.Get("genre"),
		AvailableOnly: query.Get("available") == "true",
		Sort:          query.Get("sort"),
		Desc:          !strings.EqualFold(query.Get("order"), "asc"),
	}
	params.Page, _ = strconv.Atoi(query.Get("page"))
	params.Limit, _ = strconv.Atoi(query.Get("limit"))

	books, total, used, err := h.service.List(r.Context(), httpx.ActorFrom(r), params)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, books, httpx.NewPageMeta(used.Page, used.Limit, total))
}

// Get handles GET /v1/books/{id}
// @Summary Get a book with its reviews
// @Tags books
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.service.Get(r.Context(), httpx.ActorFrom(r), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, d, nil)
}

// Create handles POST /v1/books
// @Summary Add a book to the catalog
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body Input true "Book"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/books [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req Input
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	b, err := h.service.Create(r.Context(), httpx.ActorFrom(r), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, b)
}

// Update handles PUT /v1/books/{id}
// @Summary Edit a book, including its copy count
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Param request body Input true "Book"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req Input
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	b, err := h.service.Update(r.Context(), httpx.ActorFrom(r), r.PathValue("id"), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, b, nil)
}

// Delete handles DELETE /v1/books/{id}
// @Summary Remove a book
// @Tags books
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 204 "No Content"
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/books/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), httpx.ActorFrom(r), r.PathValue("id")); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccessNoContent(w)
}

type ImportReq struct {
	ISBN        string `json:"isbn" validate:"required,isbn"`
	TotalCopies *int   `json:"total_copies" validate:"omitempty,gte=1"`
}

// Import handles POST /v1/books/import
// @Summary Catalog a book from its ISBN via Open Library
// @Tags books
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body ImportReq true "ISBN"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /v1/books/import [post]
func (h *HTTPHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	total := 1
	if req.TotalCopies != nil {
		total = *req.TotalCopies
	}

	b, err := h.service.Import(r.Context(), httpx.ActorFrom(r), req.ISBN, total)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, b)
}

// Export handles GET /v1/books/export.csv
// @Summary Download the inventory as CSV
// @Tags books
// @Produce text/csv
// @Security Bearer
// @Success 200 {string} string
// @Failure 403 {object} httpx.ErrorResponse
// @Router /v1/books/export.csv [get]
func (h *HTTPHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := h.service.ExportCSV(r.Context(), httpx.ActorFrom(r), &buf); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	filename := "library-inventory-" + time.Now().UTC().Format("2006-01-02") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
