// Package params parses path, query and body input shared by the handlers.
package params

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"lso-service/internal/calendar"
	"lso-service/internal/roster"
	"lso-service/pkg/response"
)

var ErrDecode = errors.New("failed to decode request")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// DecodeJSON decodes the request body into dst and validates its struct tags.
func DecodeJSON(r *http.Request, dst any) error {
	if err := render.DecodeJSON(r.Body, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return validate.Struct(dst)
}

// RenderInvalid writes the 400 response for an error returned by DecodeJSON
// or one of the parsers below.
func RenderInvalid(w http.ResponseWriter, r *http.Request, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(verrs))
	case errors.Is(err, ErrDecode):
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(string(response.BAD_REQUEST), "failed to decode request"))
	default:
		response.RenderError(w, r, err, "invalid request")
	}
}

// ID parses a positive integer path parameter.
func ID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s=%q", response.ErrInvalidId, name, raw)
	}
	return id, nil
}

// Month parses the required "month" query parameter (YYYY-MM).
func Month(r *http.Request) (calendar.Month, error) {
	raw := r.URL.Query().Get("month")
	if raw == "" {
		return calendar.Month{}, fmt.Errorf("%w: month is required", response.ErrBadRequest)
	}
	m, err := calendar.ParseMonth(raw)
	if err != nil {
		return calendar.Month{}, fmt.Errorf("%w: %w", response.ErrBadRequest, err)
	}
	return m, nil
}

// OptionalMonth returns nil when "month" is absent.
func OptionalMonth(r *http.Request) (*calendar.Month, error) {
	if r.URL.Query().Get("month") == "" {
		return nil, nil
	}
	m, err := Month(r)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Range reads "from" and "to" (YYYY-MM-DD). A "month" parameter may be
// given instead and expands to that whole month.
func Range(r *http.Request) (calendar.Range, error) {
	q := r.URL.Query()

	if q.Get("month") != "" && q.Get("from") == "" && q.Get("to") == "" {
		m, err := Month(r)
		if err != nil {
			return calendar.Range{}, err
		}
		return m.Range(), nil
	}

	rng, err := OptionalRange(r)
	if err != nil {
		return calendar.Range{}, err
	}
	if rng == nil {
		return calendar.Range{}, fmt.Errorf("%w: from and to are required", response.ErrInvalidRange)
	}
	return *rng, nil
}

// OptionalRange returns nil when neither bound is given.
func OptionalRange(r *http.Request) (*calendar.Range, error) {
	q := r.URL.Query()
	rawFrom, rawTo := q.Get("from"), q.Get("to")
	if rawFrom == "" && rawTo == "" {
		return nil, nil
	}

	var rng calendar.Range
	var err error
	if rawFrom != "" {
		if rng.From, err = calendar.ParseDate(rawFrom); err != nil {
			return nil, fmt.Errorf("%w: %w", response.ErrBadRequest, err)
		}
	}
	if rawTo != "" {
		if rng.To, err = calendar.ParseDate(rawTo); err != nil {
			return nil, fmt.Errorf("%w: %w", response.ErrBadRequest, err)
		}
	}
	if err := rng.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", response.ErrInvalidRange, err)
	}
	return &rng, nil
}

// Weekday parses the required "weekday" query parameter (1 = Monday).
func Weekday(r *http.Request) (calendar.Weekday, error) {
	wd, err := calendar.ParseWeekday(r.URL.Query().Get("weekday"))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", response.ErrBadRequest, err)
	}
	return wd, nil
}

// Slot parses the required "slot" query parameter.
func Slot(r *http.Request) (roster.Slot, error) {
	slot, err := roster.ParseSlot(r.URL.Query().Get("slot"))
	if err != nil {
		return "", fmt.Errorf("%w: %w", response.ErrBadRequest, err)
	}
	return slot, nil
}

// Int reads an optional integer query parameter, returning def when absent.
func Int(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", response.ErrBadRequest, name, raw)
	}
	return n, nil
}

// Date reads an optional YYYY-MM-DD query parameter; the zero Date means absent.
func Date(r *http.Request, name string) (calendar.Date, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return calendar.Date{}, nil
	}
	d, err := calendar.ParseDate(raw)
	if err != nil {
		return calendar.Date{}, fmt.Errorf("%w: %w", response.ErrBadRequest, err)
	}
	return d, nil
}
