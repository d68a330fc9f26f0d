package render

import (
	"fmt"
	"html/template"
	"math"
	"strconv"
	"strings"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
)

var summaryTemplate = template.Must(template.New("summary").Parse(
	`<div class="sip-rswc-wrap sip-reviews"><div class="sip-rswc-container">` +
		`<div class="sip-rswc-summary">` +
		`<div class="sip-rswc-summary-left">` +
		`<div class="sip-rswc-summary-rating">{{.Average}} out of 5 stars</div>` +
		`<div class="sip-rswc-summary-count">{{.ReviewCount}} <span class="sip-rswc-summary-label">reviews</span></div>` +
		`</div>` +
		`<div class="sip-rswc-summary-right"><div class="sip-rswc-rating-details">` +
		`<table class="sip-rswc-rating-table" data-product-id="{{.ProductID}}"><tbody>` +
		`{{range .Rows}}<tr class="sip-rswc-rating-row">` +
		`<td class="sip-rswc-star-label"><a href="javascript:void(0);" class="sip-rswc-rating-data-count" data-count="{{.Star}}" aria-label="{{.Star}} star rating">{{.Star}} <span class="sip-rswc-star"></span></a></td>` +
		`<td class="sip-rswc-bar-cell"><div class="sip-rswc-bar-wrapper"><span class="sip-rswc-bar" style="{{.Style}}"></span></div></td>` +
		`<td class="sip-rswc-rating-count"><a href="javascript:void(0);" class="sip-rswc-rating-data-count" data-count="{{.Star}}" aria-label="{{.Count}} reviews with {{.Star}} stars">{{.Count}}</a></td>` +
		`</tr>{{end}}` +
		`</tbody></table></div></div>` +
		`</div>` +
		`<div class="sip-rswc-tabs-wrap"><div class="sip-rswc-tabs-content">{{.Reviews}}</div></div>` +
		`</div></div>`,
))

// EmbedView is the data behind the embed markup.
type EmbedView struct {
	ProductID     int64
	AverageRating float64
	ReviewCount   int
	Rows          []domain.RatingRow
	// ReviewsHTML is the output of Render for the first page.
	ReviewsHTML string
}

type summaryRow struct {
	Star  int
	Count int
	Style template.CSS
}

type summaryView struct {
	ProductID   int64
	Average     string
	ReviewCount int
	Rows        []summaryRow
	Reviews     template.HTML
}

// Embed renders the summary block with its histogram table followed by the
// reviews section.
func (r *Renderer) Embed(v EmbedView) string {
	view := summaryView{
		ProductID:   v.ProductID,
		Average:     FormatNumber(v.AverageRating),
		ReviewCount: v.ReviewCount,
		Reviews:     template.HTML(v.ReviewsHTML),
		Rows:        make([]summaryRow, 0, len(v.Rows)),
	}
	for _, row := range v.Rows {
		p := FormatNumber(math.Round(row.Percentage*100) / 100)
		view.Rows = append(view.Rows, summaryRow{
			Star:  row.Star,
			Count: max(row.Count, 0),
			Style: template.CSS(fmt.Sprintf("--target-width: %s%%; width: %s%%;", p, p)),
		})
	}

	var b strings.Builder
	if err := summaryTemplate.Execute(&b, view); err != nil {
		panic(fmt.Sprintf("render: execute summary: %v", err))
	}
	return b.String()
}

// FormatNumber prints f with no trailing zeros: 4.5, 4, 33.33.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
