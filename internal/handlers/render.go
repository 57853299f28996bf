package handlers

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/go-playground/validator/v10"

	resp "prizewheel/internal/api/response"
	"prizewheel/internal/logger/sl"
	"prizewheel/internal/visitor"
)

func render(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}

func renderToString(r *http.Request, component templ.Component) string {
	var buf bytes.Buffer
	_ = component.Render(r.Context(), &buf)
	return buf.String()
}

func writeSSE(w http.ResponseWriter, event string, data string) {
	_, _ = w.Write([]byte("event: " + event + "\n"))
	for _, line := range strings.Split(data, "\n") {
		_, _ = w.Write([]byte("data: " + line + "\n"))
	}
	_, _ = w.Write([]byte("\n"))
}

// visitorID returns the id set by the visitor middleware, answering 401
// when it is missing.
func visitorID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id, ok := visitor.FromContext(r.Context())
	if !ok {
		resp.Fail(w, r, "visitor required", http.StatusUnauthorized)
		return "", false
	}
	return id, true
}

// decode reads a JSON body into dst and validates it, answering 400 on
// failure.
func decode(w http.ResponseWriter, r *http.Request, validate *validator.Validate, log *slog.Logger, dst any) bool {
	if err := resp.Decode(r, dst); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		resp.Fail(w, r, "failed to decode request body", http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			log.Info("invalid request", sl.Err(err))
			res := resp.ValidationError(verrs)
			resp.JSON(w, r, res.Status, res)
			return false
		}
		resp.Fail(w, r, "invalid request", http.StatusBadRequest)
		return false
	}
	return true
}
