package render

import (
	"regexp"
	"strings"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/pkg/validator"
)

const themeCSS = `
	/* Theme variables */
	.sip-reviews {
		--sip-star-color: 	{{star}};
		--sip-bar-color: 	{{bar}};
		--sip-review-bg: 	{{bg}};
		--sip-body-text: 	{{body}};
		--sip-title-text: 	{{title}};
		--sip-load-more-bg: {{button}};
		--sip-load-more-text: {{label}};
	}
	.sip-reviews .sip-rswc-star-label .sip-rswc-star,
	.sip-reviews .sip-rswc-star-selected:after {
		color: var(--sip-star-color);
	}
	.sip-reviews .sip-rswc-bar {
		background: var(--sip-bar-color);
	}
	.sip-reviews .comment-borderbox {
		background: var(--sip-review-bg);
		color: var(--sip-body-text);
	}
	.sip-reviews .sip-rswc-summary-left,
	.sip-reviews .sip-rswc-star-label a,
	.sip-reviews .sip-rswc-rating-count a {
		color: var(--sip-title-text);
	}
	.sip-reviews .sip-rswc-load-more-btn {
		background: var(--sip-load-more-bg);
		color: var(--sip-load-more-text);
	}
`

// Stylesheet returns the minified theme rules for t. Invalid colors fall
// back to their defaults.
func Stylesheet(t domain.ColorTheme) string {
	t = t.Sanitize(validator.IsHexColor)
	css := strings.NewReplacer(
		"{{star}}", t.StarColor,
		"{{bar}}", t.BarColor,
		"{{bg}}", t.ReviewBackground,
		"{{body}}", t.ReviewBodyText,
		"{{title}}", t.ReviewTitle,
		"{{button}}", t.LoadMoreButton,
		"{{label}}", t.LoadMoreButtonLabel,
	).Replace(themeCSS)
	return MinifyCSS(css)
}

var (
	cssComments   = regexp.MustCompile(`(?s)/\*.*?\*/`)
	cssWhitespace = regexp.MustCompile(`\s+`)
	cssPunct      = regexp.MustCompile(`\s*([{};:,])\s*`)
)

// MinifyCSS strips comments, collapses whitespace and removes the spaces
// around { } ; : and , in css.
func MinifyCSS(css string) string {
	if css == "" {
		return css
	}
	css = cssComments.ReplaceAllString(css, "")
	css = cssWhitespace.ReplaceAllString(css, " ")
	css = cssPunct.ReplaceAllString(css, "$1")
	return strings.TrimSpace(css)
}
