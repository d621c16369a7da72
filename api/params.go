package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"gamblelog/service"

	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: %w", chi.URLParam(r, "id"), service.ErrInvalidInput)
	}
	return id, nil
}

// queryTime reads an RFC 3339 timestamp or a YYYY-MM-DD date in loc. A missing parameter yields nil.
func queryTime(r *http.Request, key string, loc *time.Location) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q, use YYYY-MM-DD or RFC 3339: %w", key, raw, service.ErrInvalidInput)
	}
	return &t, nil
}

// queryRange reads the from/to parameters. A date-only "to" includes that whole day.
func queryRange(r *http.Request) (*time.Time, *time.Time, error) {
	from, err := queryTime(r, "from", time.Local)
	if err != nil {
		return nil, nil, err
	}
	to, err := queryTime(r, "to", time.Local)
	if err != nil {
		return nil, nil, err
	}
	if to != nil {
		if _, dateErr := time.Parse(dateLayout, r.URL.Query().Get("to")); dateErr == nil {
			end := to.AddDate(0, 0, 1)
			to = &end
		}
	}
	return from, to, nil
}

func queryInt(r *http.Request, key string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, service.ErrInvalidInput)
	}
	return value, nil
}
