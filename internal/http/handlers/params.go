package handlers

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/preston-bernstein/prospect-scout/internal/query"
)

var errBadParam = errors.New("invalid query parameter")

// parseView reads list controls from query parameters. Absent parameters
// keep their defaults; malformed ones are errors.
func parseView(values url.Values) (query.View, error) {
	v := query.View{
		Query: values.Get("q"),
		Criteria: query.Criteria{
			School:   values.Get("school"),
			Position: values.Get("position"),
		},
		Page: 1,
	}
	var err error
	if v.Criteria.MinPPG, err = optionalFloat(values, "minPpg"); err != nil {
		return v, err
	}
	if v.Criteria.MinRPG, err = optionalFloat(values, "minRpg"); err != nil {
		return v, err
	}
	if v.Criteria.MinAPG, err = optionalFloat(values, "minApg"); err != nil {
		return v, err
	}
	if v.Page, err = optionalInt(values, "page", 1); err != nil {
		return v, err
	}
	if v.PageSize, err = optionalInt(values, "pageSize", query.DefaultPageSize); err != nil {
		return v, err
	}
	if raw := strings.TrimSpace(values.Get("saved")); raw != "" {
		saved, parseErr := strconv.ParseBool(raw)
		if parseErr != nil {
			return v, fmt.Errorf("%w: saved=%q", errBadParam, raw)
		}
		v.SavedOnly = saved
	}
	return v, nil
}

func optionalFloat(values url.Values, key string) (*float64, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("%w: %s=%q", errBadParam, key, raw)
	}
	return &f, nil
}

func optionalInt(values url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q", errBadParam, key, raw)
	}
	return n, nil
}
