package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/errors"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/logger"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/validator"
)

// Response is the JSON envelope shared by every JSON endpoint. It has the
// shape of WordPress' wp_send_json_success / wp_send_json_error so existing
// front-end scripts keep working.
type Response struct {
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// ErrorData is the payload of a failed Response.
type ErrorData struct {
	Message   string            `json:"message"`
	Code      string            `json:"code,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteSuccess writes a 200 {"success":true,"data":...} envelope.
func WriteSuccess(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

// WriteMessage writes a failed envelope carrying only a user-facing message.
func WriteMessage(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, Response{Data: ErrorData{Message: message}})
}

// WriteError maps err onto a failed envelope. AppErrors keep their status and
// message; anything unrecognised becomes a logged 500 with a generic message.
// The request-scoped logger from RequestLogger is preferred over fallback.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	requestID := logger.CorrelationIDFromContext(r.Context())
	status := apperrors.HTTPStatus(err)

	code := "INTERNAL_ERROR"
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
	}

	WriteJSON(w, status, Response{Data: ErrorData{
		Message:   apperrors.UserMessage(err),
		Code:      code,
		RequestID: requestID,
	}})
}

// WriteValidationError writes a 400 envelope. Field-level details from the
// validator package are attached, but the message stays the one supplied.
func WriteValidationError(w http.ResponseWriter, err error, message string) {
	data := ErrorData{Message: message, Code: "VALIDATION_ERROR"}

	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		data.Fields = valErr.Fields()
	}

	WriteJSON(w, http.StatusBadRequest, Response{Data: data})
}

// WriteHTML writes an HTML fragment.
func WriteHTML(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// WriteText writes a plain-text body.
func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}
