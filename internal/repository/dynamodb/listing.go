package dynamodb

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/jbaikge/boneless/internal/domain/models/content"
)

// paginate slices a fully sorted listing down to the requested range
func paginate[T any](items []T, requested content.Range) ([]T, content.Range) {
	rng := requested.OrDefault()
	size := len(items)
	start := min(rng.Start, size)
	end := min(rng.Start+rng.Len(), size)
	page := items[start:end]
	return page, rng.Resolved(len(page), size)
}

// sortDocuments orders by a builtin column or a value key, id breaking ties.
// Documents without the value sort first.
func sortDocuments(docs []content.Document, sort content.DocumentSort) {
	key := func(d content.Document) any {
		switch sort.Field {
		case "", "created":
			return d.Created.UnixNano()
		case "updated":
			return d.Updated.UnixNano()
		case "id":
			return d.ID
		case "path":
			return d.Path
		default:
			return d.Values[sort.Field]
		}
	}

	ascending := sort.Ascending()
	slices.SortStableFunc(docs, func(a, b content.Document) int {
		c := compareValues(key(a), key(b))
		if !ascending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	switch av := a.(type) {
	case int64:
		if bv, ok := b.(int64); ok {
			return cmp.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
