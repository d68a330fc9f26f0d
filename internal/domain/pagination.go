package domain

// PaginationState is where a product's review list stands for a visitor.
type PaginationState string

const (
	StateInitial    PaginationState = "initial"
	StatePaginating PaginationState = "paginating"
	StateExhausted  PaginationState = "exhausted"
	StateFiltered   PaginationState = "filtered"
)

// InitialView is the first render of a product's reviews.
type InitialView struct {
	HTML  string          `json:"html"`
	Total int             `json:"total"`
	Limit int             `json:"limit"`
	State PaginationState `json:"state"`
}

// LoadMoreResult is the answer to one load-more request.
type LoadMoreResult struct {
	HTML           string          `json:"html"`
	IsLastPage     bool            `json:"isLastPage"`
	ButtonText     string          `json:"buttonText"`
	RemainingCount int             `json:"remainingCount"`
	Exhausted      bool            `json:"exhausted"`
	NextOffset     int             `json:"nextOffset"`
	State          PaginationState `json:"-"`
}

// FilterResult is the answer to a filter-by-rating request.
type FilterResult struct {
	HTML       string          `json:"html"`
	MatchCount int             `json:"matchCount"`
	State      PaginationState `json:"-"`
}
