package pagination

import (
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultWindow(t *testing.T) {
	w := DefaultWindow()
	assert.Equal(t, 0, w.Offset)
	assert.Equal(t, 5, w.Limit)
}

func TestFromRequest_Defaults(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ajax", nil)
	w := FromRequest(req, MaxLimit)

	assert.Equal(t, Window{Offset: 0, Limit: 5}, w)
}

func TestFromRequest_QueryValues(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ajax?offset=10&limit=5", nil)
	w := FromRequest(req, MaxLimit)

	assert.Equal(t, Window{Offset: 10, Limit: 5}, w)
}

func TestFromRequest_FormBody(t *testing.T) {
	form := url.Values{"offset": {"5"}, "limit": {"3"}}
	req := httptest.NewRequest(http.MethodPost, "/ajax", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := FromRequest(req, MaxLimit)
	assert.Equal(t, Window{Offset: 5, Limit: 3}, w)
}

func TestFromRequest_CoercesGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ajax?offset=abc&limit=zero", nil)
	w := FromRequest(req, MaxLimit)

	// Unparsable offset is 0; unparsable limit is 0 which falls back to the default.
	assert.Equal(t, Window{Offset: 0, Limit: 5}, w)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Window
		max  int
		want Window
	}{
		{"negative offset", Window{Offset: -4, Limit: 5}, 100, Window{Offset: 0, Limit: 5}},
		{"zero limit", Window{Offset: 5, Limit: 0}, 100, Window{Offset: 5, Limit: 5}},
		{"negative limit", Window{Offset: 0, Limit: -1}, 100, Window{Offset: 0, Limit: 5}},
		{"capped limit", Window{Offset: 0, Limit: 5000}, 50, Window{Offset: 0, Limit: 50}},
		{"no max uses MaxLimit", Window{Offset: 0, Limit: 500}, 0, Window{Offset: 0, Limit: MaxLimit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize(tt.max))
		})
	}
}

func TestNext(t *testing.T) {
	assert.Equal(t, Window{Offset: 10, Limit: 5}, Window{Offset: 5, Limit: 5}.Next())
}

func TestIntval(t *testing.T) {
	cases := map[string]int{
		"":      0,
		"42":    42,
		" 7 ":   7,
		"-3":    -3,
		"+8":    8,
		"12abc": 12,
		"abc":   0,
		"-":     0,
		"3.9":   3,
	}
	for in, want := range cases {
		assert.Equal(t, want, Intval(in), "Intval(%q)", in)
	}
}

func TestAbsint(t *testing.T) {
	assert.Equal(t, 12, Absint("-12"))
	assert.Equal(t, 0, Absint("x"))
}

func TestIntval_Saturates(t *testing.T) {
	assert.Equal(t, math.MaxInt, Intval("99999999999999999999999"))
	assert.Equal(t, math.MaxInt, Intval("+99999999999999999999999 reviews"))
	assert.Equal(t, math.MinInt, Intval("-99999999999999999999999"))
	assert.Equal(t, math.MaxInt, Absint("99999999999999999999999"))
	assert.Equal(t, math.MaxInt, Absint(strconv.Itoa(math.MinInt)))
	assert.Equal(t, math.MaxInt, Absint("-99999999999999999999999"))
}
