package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"minilibrary/internal/apperr"
	"minilibrary/internal/validate"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindPreconditionFailed:
		return http.StatusUnprocessableEntity
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders err in the error envelope. Unclassified and internal
// errors are logged and reported without their message.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok || e.Kind == apperr.KindInternal {
		LoggerFrom(r.Context()).Error("request failed",
			"error", err,
			"request_id", RequestIDFrom(r),
			"path", r.URL.Path,
		)
		JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
		return
	}

	var details []ErrorDetail
	for _, f := range e.Fields {
		details = append(details, ErrorDetail{Field: f.Field, Message: f.Message})
	}
	JSONError(w, r, StatusFor(e.Kind), e.Code, e.Message, details)
}

var (
	ErrBadBody      = apperr.New(apperr.KindValidation, "BAD_REQUEST", "Invalid request body")
	ErrBodyTooLarge = apperr.New(apperr.KindValidation, "PAYLOAD_TOO_LARGE", "Request body too large")
)

// DecodeJSON decodes the request body into dst and validates it.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return ErrBodyTooLarge
		}
		return ErrBadBody
	}
	return validate.Struct(dst)
}
