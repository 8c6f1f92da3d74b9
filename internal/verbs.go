package internal

import (
	"net/http"
	"slices"
	"strings"

	"github.com/dmitrymomot/cmsroute/pkg/pattern"
)

// Verbs accepted in route declarations.
var knownVerbs = []string{
	http.MethodGet,
	http.MethodHead,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
	http.MethodOptions,
}

// AllVerbs returns every verb a route may declare, in canonical order.
func AllVerbs() []string {
	return slices.Clone(knownVerbs)
}

// normalizeVerbs upper-cases, de-duplicates and sorts verbs. An unknown
// verb or an empty set is an InvalidValueError.
func normalizeVerbs(verbs []string) ([]string, error) {
	out := make([]string, 0, len(verbs))
	for _, v := range verbs {
		v = strings.ToUpper(strings.TrimSpace(v))
		if !slices.Contains(knownVerbs, v) {
			return nil, invalidValue("verb", v, "unknown HTTP method", nil)
		}
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, invalidValue("verbs", "", "at least one HTTP method is required", nil)
	}
	pattern.SortVerbs(out)
	return out, nil
}
