// Package render turns reviews and product aggregates into the storefront
// markup: review lists, the rating summary, the themed stylesheet and the
// JSON-LD product schema.
package render

import (
	"fmt"
	"html"
	"html/template"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
)

// DefaultDateLayout is the review date format used when none is configured.
const DefaultDateLayout = "January 2, 2006"

// NoReviewsMessage is shown in place of an empty list.
const NoReviewsMessage = "No reviews found for this rating."

const emptyItem = `<li><p>` + NoReviewsMessage + `</p></li>`

var templates = template.Must(template.New("render").Parse(`
{{- define "stars" -}}
{{range .}}<span class="{{.}}"></span>{{end}}
{{- end -}}

{{- define "item" -}}
<li class="sip-rswc-review-item" id="review-{{.ID}}"><div class="comment-borderbox"><div class="sip-rswc-rating-widget">{{.Stars}}</div><p class="author"><strong>{{.Author}}</strong> – <time>{{.Date}}</time></p><div><p>{{.Body}}</p></div></div></li>
{{- end -}}

{{- define "list" -}}
<ul class="commentbox commentlist commentlist-{{.ProductID}}">{{.Items}}</ul>
{{- if .ShowButton -}}
<div class="sip-rswc-load-more-wrap"><button class="sip-rswc-load-more-btn" data-product-id="{{.ProductID}}" data-offset="{{.Limit}}" data-limit="{{.Limit}}">{{.ButtonText}}</button></div>
{{- end -}}
{{- end -}}
`))

type itemView struct {
	ID     int64
	Stars  template.HTML
	Author template.HTML
	Date   template.HTML
	Body   template.HTML
}

type listView struct {
	ProductID  int64
	Items      template.HTML
	Limit      int
	ShowButton bool
	ButtonText template.HTML
}

// Options tune the renderer output.
type Options struct {
	// DateLayout is a time layout for review dates. Defaults to DefaultDateLayout.
	DateLayout string
	// Location dates are shown in. Defaults to UTC.
	Location *time.Location
}

// Renderer produces review list markup. Every hooked fragment is passed
// through the post policy, so filters cannot inject unsafe markup.
type Renderer struct {
	hooks      *Hooks
	policy     *bluemonday.Policy
	dateLayout string
	location   *time.Location
}

// NewRenderer creates a renderer. A nil hooks registry is replaced by an empty one.
func NewRenderer(hooks *Hooks, opts Options) *Renderer {
	if hooks == nil {
		hooks = NewHooks()
	}
	if opts.DateLayout == "" {
		opts.DateLayout = DefaultDateLayout
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Renderer{
		hooks:      hooks,
		policy:     NewPostPolicy(),
		dateLayout: opts.DateLayout,
		location:   opts.Location,
	}
}

// Hooks returns the filter registry used by the renderer.
func (r *Renderer) Hooks() *Hooks {
	return r.hooks
}

// Render returns the markup for reviews. With itemsOnly only the <li>
// elements are returned, for appending to an existing list. Otherwise the
// items are wrapped in a list followed by a load-more control when total
// exceeds limit.
func (r *Renderer) Render(reviews []domain.Review, productID int64, itemsOnly bool, limit, total int) string {
	if len(reviews) == 0 {
		if itemsOnly {
			return emptyItem
		}
		return `<ul class="commentlist">` + emptyItem + `</ul>`
	}

	var items strings.Builder
	for i := range reviews {
		items.WriteString(r.renderItem(&reviews[i]))
	}
	if itemsOnly {
		return items.String()
	}

	view := listView{
		ProductID: productID,
		Items:     template.HTML(items.String()),
		Limit:     limit,
	}
	if total > limit {
		view.ShowButton = true
		// LoadMoreLabel output has been through the post policy.
		view.ButtonText = template.HTML(r.LoadMoreLabel(total-limit, productID))
	}
	return execute("list", view)
}

// LoadMoreLabel returns the hooked "Load N more review(s)" label for
// remaining reviews.
func (r *Renderer) LoadMoreLabel(remaining int, productID int64) string {
	format := "Load %d more reviews"
	if remaining == 1 {
		format = "Load %d more review"
	}
	n := remaining
	if n < 0 {
		n = -n
	}
	label := html.EscapeString(fmt.Sprintf(format, n))
	return r.filter(HookLoadMoreButton, label, HookContext{ProductID: productID, Remaining: remaining})
}

func (r *Renderer) renderItem(rv *domain.Review) string {
	hc := HookContext{Review: rv, ProductID: rv.ProductID, Rating: rv.Rating}

	author := r.filter(HookAuthorName, html.EscapeString(rv.AuthorName), hc)
	date := r.filter(HookDate, html.EscapeString(r.formatDate(rv.PublishedAt)), hc)
	body := r.filter(HookText, nl2br(html.EscapeString(rv.Body)), hc)
	stars := r.filter(HookRatingHTML, execute("stars", starClasses(rv.StarCount())), hc)

	item := execute("item", itemView{
		ID:     rv.ID,
		Stars:  template.HTML(stars),
		Author: template.HTML(author),
		Date:   template.HTML(date),
		Body:   template.HTML(body),
	})
	return r.filter(HookItemHTML, item, hc)
}

func (r *Renderer) filter(point HookPoint, fragment string, hc HookContext) string {
	return r.policy.Sanitize(r.hooks.Apply(point, fragment, hc))
}

func (r *Renderer) formatDate(t time.Time) string {
	return t.In(r.location).Format(r.dateLayout)
}

func starClasses(selected int) []string {
	classes := make([]string, domain.MaxStars)
	for i := range classes {
		classes[i] = "sip-rswc-star"
		if i < selected {
			classes[i] += " sip-rswc-star-selected"
		}
	}
	return classes
}

var lineBreaks = strings.NewReplacer(
	"\r\n", "<br />\r\n",
	"\n\r", "<br />\n\r",
	"\n", "<br />\n",
	"\r", "<br />\r",
)

// nl2br inserts <br /> before every line break, keeping the break itself.
func nl2br(s string) string {
	return lineBreaks.Replace(s)
}

// execute runs one of the package templates. The templates are static, so a
// failure is a programming error.
func execute(name string, data any) string {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, name, data); err != nil {
		panic(fmt.Sprintf("render: execute %s: %v", name, err))
	}
	return b.String()
}
