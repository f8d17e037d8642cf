package handler

import (
	"net/http"
	"time"
)

const dateLayout = "2006-01-02"

func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	value := r.URL.Query().Get(key)
	if value == "" {
		return nil, nil
	}
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

// periodFromQuery resolves startDate/endDate query params into a half-open
// range, defaulting to the current day when absent.
func periodFromQuery(r *http.Request, loc *time.Location) (time.Time, time.Time, error) {
	start, err := parseDateQuery(r, "startDate")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDateQuery(r, "endDate")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	now := time.Now().In(loc)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	from := today
	if start != nil {
		from = time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, loc)
	}
	to := from.AddDate(0, 0, 1)
	if end != nil {
		to = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
	}
	return from, to, nil
}
