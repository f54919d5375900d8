package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ariefcatur/go-pos-backend/internal/apperr"
	"github.com/ariefcatur/go-pos-backend/internal/query"
)

type envelope struct {
	StatusCode     int         `json:"statusCode"`
	Message        string      `json:"message"`
	Data           any         `json:"data"`
	PaginationMeta *query.Meta `json:"paginationMeta,omitempty"`
}

type errorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Error      string `json:"error"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func respond(w http.ResponseWriter, code int, msg string, data any) {
	writeJSON(w, code, envelope{StatusCode: code, Message: msg, Data: data})
}

func page(w http.ResponseWriter, msg string, data any, meta query.Meta) {
	writeJSON(w, http.StatusOK, envelope{StatusCode: http.StatusOK, Message: msg, Data: data, PaginationMeta: &meta})
}

// writeError renders any error as the error envelope. Internal details are
// logged, never returned.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperr.From(err)
	code := apperr.HTTPStatus(e.Kind)
	msg := e.Message
	if e.Kind == apperr.KindInternal {
		slog.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
		if msg == "" {
			msg = "internal server error"
		}
	}
	writeJSON(w, code, errorBody{StatusCode: code, Message: msg, Error: string(e.Kind)})
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.BadRequest("request body is required")
		}
		return apperr.BadRequest("invalid json: %v", err)
	}
	return nil
}

func idParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.BadRequest("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}
