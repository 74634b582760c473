package content

import "fmt"

// DefaultRangeEnd is the last index returned when a listing carries no range
const DefaultRangeEnd = 9

// Range is an inclusive, zero-based slice of a listing plus the listing size.
// Shaped after the HTTP Content-Range header.
type Range struct {
	Start int
	End   int
	Size  int
}

// Len returns the number of items the range asks for
func (r Range) Len() int {
	if r.End < r.Start {
		return 0
	}
	return r.End - r.Start + 1
}

// OrDefault returns the first page when r is the zero range
func (r Range) OrDefault() Range {
	if r == (Range{}) {
		return Range{End: DefaultRangeEnd}
	}
	return r
}

// ContentRange formats the header value: <unit> <start>-<end>/<size>
func (r Range) ContentRange(unit string) string {
	return fmt.Sprintf("%s %d-%d/%d", unit, r.Start, r.End, r.Size)
}

// Resolved returns the range actually covered by count items starting at Start
func (r Range) Resolved(count, size int) Range {
	out := Range{Start: r.Start, End: r.Start, Size: size}
	if count > 0 {
		out.End = r.Start + count - 1
	}
	return out
}
