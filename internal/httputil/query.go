package httputil

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jbaikge/boneless/internal/config"
	"github.com/jbaikge/boneless/internal/domain/models/content"
)

// defaultPerPage applies when only _page is given
const defaultPerPage = 10

// ListFilter is the decoded "filter" query parameter of a list request.
// getMany requests arrive as filter={"id":[...]}.
type ListFilter struct {
	Query    string   `json:"q"`
	ParentID string   `json:"parent_id"`
	IDs      []string `json:"id"`
}

// ParseRange reads a listing range from the query string. Accepted forms, in
// order of precedence: range=[start,end], _start and _end, _page and
// _per_page. No parameters yields the zero range.
func ParseRange(q url.Values) (content.Range, error) {
	var rng content.Range

	hasStart, hasEnd := q.Has("_start"), q.Has("_end")
	if hasStart != hasEnd {
		return rng, fmt.Errorf("_start and _end must be given together")
	}

	start, end := 0, 0
	if hasStart {
		var err error
		if start, err = strconv.Atoi(q.Get("_start")); err != nil {
			return rng, fmt.Errorf("parsing _start: %w", err)
		}
		if end, err = strconv.Atoi(q.Get("_end")); err != nil {
			return rng, fmt.Errorf("parsing _end: %w", err)
		}
	}

	if q.Has("range") {
		bounds := make([]int, 0, 2)
		if err := json.Unmarshal([]byte(q.Get("range")), &bounds); err != nil {
			return rng, fmt.Errorf("invalid range: %w", err)
		}
		if len(bounds) != 2 {
			return rng, fmt.Errorf("expected 2 range elements, got %d", len(bounds))
		}
		hasStart = true
		start, end = bounds[0], bounds[1]
	}

	if hasStart {
		switch {
		case start < 0 || end < 0:
			return rng, fmt.Errorf("range bounds must not be negative")
		case start > end:
			return rng, fmt.Errorf("range end before start (%d < %d)", end, start)
		case end-start+1 > config.MaxListPageSize:
			return rng, fmt.Errorf("range larger than %d items", config.MaxListPageSize)
		}
		rng.Start, rng.End = start, end
		return rng, nil
	}

	if !q.Has("_page") && !q.Has("_per_page") {
		return rng, nil
	}

	page, perPage := 1, defaultPerPage
	if q.Has("_page") {
		var err error
		if page, err = strconv.Atoi(q.Get("_page")); err != nil {
			return rng, fmt.Errorf("parsing _page: %w", err)
		}
		if page < 1 {
			return rng, fmt.Errorf("_page is less than one")
		}
	}
	if q.Has("_per_page") {
		var err error
		if perPage, err = strconv.Atoi(q.Get("_per_page")); err != nil {
			return rng, fmt.Errorf("parsing _per_page: %w", err)
		}
		if perPage < 1 || perPage > config.MaxListPageSize {
			return rng, fmt.Errorf("_per_page must be between 1 and %d", config.MaxListPageSize)
		}
	}

	rng.Start = (page - 1) * perPage
	rng.End = page*perPage - 1
	return rng, nil
}

// ParseSort reads sort=["field","ASC"] or _sort and _order. A "values."
// prefix on the field is dropped.
func ParseSort(q url.Values) (content.DocumentSort, error) {
	var sort content.DocumentSort

	switch {
	case q.Has("sort"):
		pair := make([]string, 0, 2)
		if err := json.Unmarshal([]byte(q.Get("sort")), &pair); err != nil {
			return sort, fmt.Errorf("invalid sort: %w", err)
		}
		if len(pair) != 2 {
			return sort, fmt.Errorf("expected 2 sort elements, got %d", len(pair))
		}
		sort.Field, sort.Direction = pair[0], pair[1]
	case q.Has("_sort"):
		sort.Field, sort.Direction = q.Get("_sort"), q.Get("_order")
	default:
		return sort, nil
	}

	sort.Field = strings.TrimPrefix(sort.Field, "values.")
	sort.Direction = strings.ToUpper(sort.Direction)
	if sort.Direction != "" && sort.Direction != "ASC" && sort.Direction != "DESC" {
		return sort, fmt.Errorf("sort direction must be ASC or DESC, got %q", sort.Direction)
	}
	return sort, nil
}

// ParseFilter reads filter={...} and the flat q, parent_id and id parameters.
// Flat parameters win over the JSON filter.
func ParseFilter(q url.Values) (ListFilter, error) {
	var filter ListFilter
	if q.Has("filter") {
		if err := json.Unmarshal([]byte(q.Get("filter")), &filter); err != nil {
			return filter, fmt.Errorf("invalid filter: %w", err)
		}
	}
	if q.Has("q") {
		filter.Query = q.Get("q")
	}
	if q.Has("parent_id") {
		filter.ParentID = q.Get("parent_id")
	}
	if ids := q["id"]; len(ids) > 0 {
		filter.IDs = ids
	}
	return filter, nil
}
