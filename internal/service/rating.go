package service

import (
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
)

// RatingBreakdown returns one row per star from 5 down to 1 with its count
// and its share of reviewCount in percent. All shares are 0 when
// reviewCount is 0.
func RatingBreakdown(reviewCount int, histogram domain.RatingHistogram) []domain.RatingRow {
	rows := make([]domain.RatingRow, 0, domain.MaxStars)
	for star := domain.MaxStars; star >= 1; star-- {
		count := histogram.Count(star)
		var pct float64
		if reviewCount > 0 {
			pct = float64(count) / float64(reviewCount) * 100
		}
		rows = append(rows, domain.RatingRow{Star: star, Count: count, Percentage: pct})
	}
	return rows
}
