package domain

// RatingRow is one line of the star histogram shown above the reviews.
type RatingRow struct {
	Star       int     `json:"star"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}
