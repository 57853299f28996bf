package response

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Response struct {
	Status int    `json:"status"`
	Error  string `json:"error,omitempty"`
}

func OK() Response {
	return Response{
		Status: http.StatusOK,
	}
}

func Error(msg string, status int) Response {
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return Response{
		Status: status,
		Error:  msg,
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsgs []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is required", err.Field()))
		case "min", "gt", "gte":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is too small", err.Field()))
		case "max", "lt", "lte":
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is too large", err.Field()))
		default:
			errMsgs = append(errMsgs, fmt.Sprintf("field %s is invalid", err.Field()))
		}
	}

	return Response{
		Status: http.StatusBadRequest,
		Error:  strings.Join(errMsgs, ", "),
	}
}

// JSON writes v with the given HTTP status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// Fail writes an error body whose status matches the HTTP status.
func Fail(w http.ResponseWriter, r *http.Request, msg string, status int) {
	res := Error(msg, status)
	JSON(w, r, res.Status, res)
}

// Decode reads a JSON request body into v.
func Decode(r *http.Request, v any) error {
	return render.DecodeJSON(r.Body, v)
}
