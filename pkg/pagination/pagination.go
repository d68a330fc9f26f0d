package pagination

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the page size used when a request omits or zeroes limit.
	DefaultLimit = 5
	// MaxLimit bounds any single window read from storage.
	MaxLimit = 100
)

// Window is an offset/limit pair read from a request.
type Window struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// DefaultWindow returns the first page at the default size.
func DefaultWindow() Window {
	return Window{Offset: 0, Limit: DefaultLimit}
}

// FromRequest reads offset and limit from the request form (query string or
// urlencoded body) and normalizes them against maxLimit.
// Values are coerced rather than rejected.
func FromRequest(r *http.Request, maxLimit int) Window {
	w := Window{
		Offset: Intval(r.FormValue("offset")),
		Limit:  Intval(r.FormValue("limit")),
	}
	if r.FormValue("limit") == "" {
		w.Limit = DefaultLimit
	}
	return w.Normalize(maxLimit)
}

// Normalize clamps a window: a non-positive limit becomes DefaultLimit, a
// limit above maxLimit is capped and a negative offset becomes 0.
func (w Window) Normalize(maxLimit int) Window {
	if maxLimit <= 0 {
		maxLimit = MaxLimit
	}
	if w.Limit <= 0 {
		w.Limit = DefaultLimit
	}
	if w.Limit > maxLimit {
		w.Limit = maxLimit
	}
	if w.Offset < 0 {
		w.Offset = 0
	}
	return w
}

// Next returns the window that follows w.
func (w Window) Next() Window {
	return Window{Offset: w.Offset + w.Limit, Limit: w.Limit}
}

// Intval leniently converts request input to an int: surrounding whitespace
// is ignored, an optional sign is honoured, parsing stops at the first
// non-digit and input with no leading digits yields 0. Values beyond the
// int range saturate at math.MaxInt or math.MinInt.
func Intval(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0
	}
	v, err := strconv.Atoi(s[:end])
	if errors.Is(err, strconv.ErrRange) {
		if s[0] == '-' {
			return math.MinInt
		}
		return math.MaxInt
	}
	if err != nil {
		return 0
	}
	return v
}

// Absint returns the absolute value of Intval(s), saturating at math.MaxInt.
func Absint(s string) int {
	v := Intval(s)
	if v == math.MinInt {
		return math.MaxInt
	}
	if v < 0 {
		return -v
	}
	return v
}
