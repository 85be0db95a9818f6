package resp

import (
	"encoding/json"
	"net/http"

	"github.com/skillconnect/jobcore/internal/ecode"
)

// Exception represents the response structure.
type Exception struct {
	Status  int    `json:"-"`                 // HTTP status
	Code    int    `json:"code"`              // Business code
	Kind    string `json:"kind,omitempty"`    // Error kind
	Message string `json:"message,omitempty"` // Message
	Errors  any    `json:"errors,omitempty"`  // Validation errors
}

// Success writes data with 200.
func Success(w http.ResponseWriter, data ...any) {
	WithStatusCode(w, http.StatusOK, data...)
}

// WithStatusCode writes data with a custom success status.
func WithStatusCode(w http.ResponseWriter, statusCode int, data ...any) {
	var body any = map[string]any{"message": "ok"}
	if len(data) > 0 && data[0] != nil {
		if msg, ok := data[0].(string); ok {
			body = map[string]any{"message": msg}
		} else {
			body = data[0]
		}
	}
	writeJSON(w, statusCode, body)
}

// Fail writes a failure response.
func Fail(w http.ResponseWriter, r *Exception) {
	if r == nil {
		r = InternalServer(ecode.Text(ecode.ServerErr))
	}
	status := r.Status
	if status == 0 {
		status = ecode.ToHTTPStatus(r.Code)
	}
	if r.Message == "" {
		r.Message = ecode.Text(r.Code)
	}
	writeJSON(w, status, r)
}

// FromError converts any error into an Exception. Internal causes are never
// exposed in the message.
func FromError(err error) *Exception {
	e := ecode.As(err)
	if e == nil {
		return nil
	}
	msg := e.Message
	if e.Kind == ecode.KindInternal || msg == "" {
		msg = ecode.Text(e.Code)
	}
	ex := newException(e.Kind, msg)
	if len(e.Fields) > 0 {
		ex.Errors = e.Fields
	}
	return ex
}

func newException(kind ecode.Kind, message string, errs ...any) *Exception {
	ex := &Exception{
		Status:  ecode.ToHTTPStatus(kind.Code()),
		Code:    kind.Code(),
		Kind:    string(kind),
		Message: message,
	}
	if len(errs) > 0 {
		ex.Errors = errs[0]
	}
	return ex
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		http.Error(w, "Failed to encode JSON response", http.StatusInternalServerError)
	}
}
