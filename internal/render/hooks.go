package render

import (
	"sync"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
)

// HookPoint names a place in the review markup where filters may rewrite
// the HTML produced so far.
type HookPoint string

// Hook points in the order the renderer applies them to an item.
const (
	HookAuthorName     HookPoint = "sip_rswc_review_author_name"
	HookDate           HookPoint = "sip_rswc_review_date"
	HookText           HookPoint = "sip_rswc_review_text"
	HookRatingHTML     HookPoint = "sip_rswc_review_rating_html"
	HookItemHTML       HookPoint = "sip_rswc_review_item_html"
	HookLoadMoreButton HookPoint = "sip_rswc_load_more_button_text"
)

// HookContext is what a filter knows about the fragment it receives.
// Review is nil for the load-more label.
type HookContext struct {
	Review    *domain.Review
	ProductID int64
	Rating    int
	Remaining int
}

// Filter rewrites a fragment. Its output is sanitized before use.
type Filter func(fragment string, hc HookContext) string

// Hooks is an ordered registry of filters per hook point. It is safe for
// concurrent use.
type Hooks struct {
	mu      sync.RWMutex
	filters map[HookPoint][]Filter
}

// NewHooks returns an empty registry.
func NewHooks() *Hooks {
	return &Hooks{filters: make(map[HookPoint][]Filter)}
}

// Add appends f to the filters of point. Filters run in the order added.
func (h *Hooks) Add(point HookPoint, f Filter) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.filters[point] = append(h.filters[point], f)
}

// Len returns the number of filters registered for point.
func (h *Hooks) Len(point HookPoint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.filters[point])
}

// Apply runs every filter of point over fragment.
func (h *Hooks) Apply(point HookPoint, fragment string, hc HookContext) string {
	h.mu.RLock()
	filters := h.filters[point]
	h.mu.RUnlock()

	for _, f := range filters {
		fragment = f(fragment, hc)
	}
	return fragment
}
