package render

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
)

// NewPostPolicy returns the policy applied to review markup: user generated
// content plus the classes, ids, data attributes and elements the review
// widgets use.
func NewPostPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Globally()
	p.AllowAttrs("aria-label").Globally()
	p.AllowDataAttributes()
	p.AllowElements("time", "button")
	p.AllowAttrs("datetime").OnElements("time")
	p.AllowAttrs("type").Matching(bluemonday.SpaceSeparatedTokens).OnElements("button")
	return p
}

// StripTags returns the text content of an HTML fragment with script and
// style bodies dropped and surrounding whitespace trimmed.
func StripTags(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.TrimSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	doc.Find("script, style").Remove()
	return strings.TrimSpace(doc.Text())
}
