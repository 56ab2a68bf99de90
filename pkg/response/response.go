package response

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Response struct {
	ResponseError `json:"error,omitzero"`
}

type ResponseError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error Codes
type ErrCode string

var (
	FAILED_REQUEST ErrCode = "REQUEST_FAILED"
	BAD_REQUEST    ErrCode = "FAILED_TO_DECODE"
	INVALID_INPUT  ErrCode = "INVALID_INPUT"
	INVALID_RANGE  ErrCode = "INVALID_RANGE"
	NOT_FOUND      ErrCode = "NOT_FOUND"
	LOCKED         ErrCode = "LOCKED"
	CONFLICT       ErrCode = "CONFLICT"
)

var (
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidId    = errors.New("invalid id")
	ErrInvalidRange = errors.New("invalid range")
	ErrNotFound     = errors.New("resource not found")
	ErrLocked       = errors.New("resource is locked")
	ErrConflict     = errors.New("conflict")
)

func Error(code, msg string) Response {
	return Response{
		ResponseError: ResponseError{
			Code:    code,
			Message: msg,
		},
	}
}

func ValidationError(errs validator.ValidationErrors) Response {
	var errMsg []string

	for _, err := range errs {
		switch err.ActualTag() {
		case "required":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' is required", err.Field()))
		case "min":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be at least %s", err.Field(), err.Param()))
		case "max":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be at most %s", err.Field(), err.Param()))
		case "oneof":
			errMsg = append(errMsg, fmt.Sprintf("field '%s' must be one of [%s]", err.Field(), err.Param()))
		default:
			errMsg = append(errMsg, fmt.Sprintf("field '%s' is invalid", err.Field()))
		}
	}

	return Error(string(INVALID_INPUT), strings.Join(errMsg, ", "))
}

// Status maps an error returned by the service layer to an HTTP status and error code.
func Status(err error) (int, ErrCode) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, NOT_FOUND
	case errors.Is(err, ErrInvalidRange):
		return http.StatusBadRequest, INVALID_RANGE
	case errors.Is(err, ErrBadRequest), errors.Is(err, ErrInvalidId):
		return http.StatusBadRequest, INVALID_INPUT
	case errors.Is(err, ErrConflict):
		return http.StatusConflict, CONFLICT
	case errors.Is(err, ErrLocked):
		return http.StatusLocked, LOCKED
	default:
		return http.StatusInternalServerError, FAILED_REQUEST
	}
}

// RenderError writes err as a JSON error body. Client errors carry the
// underlying message; server errors only carry msg.
func RenderError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	status, code := Status(err)

	if status < http.StatusInternalServerError {
		msg = clientMessage(err, msg)
	}

	render.Status(r, status)
	render.JSON(w, r, Error(string(code), msg))
}

func clientMessage(err error, fallback string) string {
	for _, sentinel := range []error{ErrNotFound, ErrInvalidRange, ErrBadRequest, ErrInvalidId, ErrConflict, ErrLocked} {
		if errors.Is(err, sentinel) {
			if s := err.Error(); s != "" {
				return trimOp(s)
			}
		}
	}
	return fallback
}

// trimOp drops the "pkg.Func: " prefixes added while wrapping.
func trimOp(s string) string {
	parts := strings.Split(s, ": ")
	for i, p := range parts {
		if !strings.Contains(p, ".") || strings.Contains(p, " ") {
			return strings.Join(parts[i:], ": ")
		}
	}
	return parts[len(parts)-1]
}
