package assistant

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

type SearchReq struct {
	Query string `json:"query" validate:"required,max=500"`
}

type ChatReq struct {
	Messages []ChatMessage `json:"messages" validate:"required,min=1,dive"`
}

// Search handles POST /v1/ai/search
// @Summary Natural-language catalog search
// @Tags ai
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body SearchReq true "Query"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/ai/search [post]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	res, err := h.service.Search(r.Context(), httpx.ActorFrom(r), req.Query)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

// Recommend handles POST /v1/ai/recommend
// @Summary Personal book recommendations
// @Tags ai
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/ai/recommend [post]
func (h *HTTPHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	recs, err := h.service.Recommend(r.Context(), httpx.ActorFrom(r))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, recs, nil)
}

// Summarize handles POST /v1/ai/summarize
// @Summary Draft a catalog description
// @Tags ai
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body SummarizeInput true "Book"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 403 {object} httpx.ErrorResponse
// @Router /v1/ai/summarize [post]
func (h *HTTPHandler) Summarize(w http.ResponseWriter, r *http.Request) {
	var req SummarizeInput
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	summary, err := h.service.Summarize(r.Context(), httpx.ActorFrom(r), req)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]string{"summary": summary}, nil)
}

// Chat handles POST /v1/ai/chat
// @Summary Chat with the library assistant
// @Tags ai
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body ChatReq true "Conversation"
// @Success 200 {object} httpx.SuccessResponse
// @Router /v1/ai/chat [post]
func (h *HTTPHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	reply, err := h.service.Chat(r.Context(), httpx.ActorFrom(r), req.Messages)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]string{"reply": reply}, nil)
}
