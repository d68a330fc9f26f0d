package domain

// Option keys of the color settings, as stored in plugin_options.
const (
	ColorsOptionKey = "sip_rswc_color_options"

	ColorStar           = "star_color"
	ColorBar            = "bar_color"
	ColorReviewBg       = "review_background_color"
	ColorReviewBody     = "review_body_text_color"
	ColorReviewTitle    = "review_title_color"
	ColorLoadMoreButton = "load_more_button"
	ColorLoadMoreText   = "load_more_text"
)

// ColorTheme holds the seven configurable colors. Every value is a #rgb or
// #rrggbb color once sanitized.
type ColorTheme struct {
	StarColor           string `json:"star_color" yaml:"star_color" validate:"omitempty,wp_hexcolor"`
	BarColor            string `json:"bar_color" yaml:"bar_color" validate:"omitempty,wp_hexcolor"`
	ReviewBackground    string `json:"review_background_color" yaml:"review_background_color" validate:"omitempty,wp_hexcolor"`
	ReviewBodyText      string `json:"review_body_text_color" yaml:"review_body_text_color" validate:"omitempty,wp_hexcolor"`
	ReviewTitle         string `json:"review_title_color" yaml:"review_title_color" validate:"omitempty,wp_hexcolor"`
	LoadMoreButton      string `json:"load_more_button" yaml:"load_more_button" validate:"omitempty,wp_hexcolor"`
	LoadMoreButtonLabel string `json:"load_more_text" yaml:"load_more_text" validate:"omitempty,wp_hexcolor"`
}

// DefaultColorTheme returns the shipped colors.
func DefaultColorTheme() ColorTheme {
	return ColorTheme{
		StarColor:           "#c62437",
		BarColor:            "#3f51b5",
		ReviewBackground:    "#ffffff",
		ReviewBodyText:      "#333333",
		ReviewTitle:         "#111111",
		LoadMoreButton:      "#3f51b5",
		LoadMoreButtonLabel: "#ffffff",
	}
}

// Sanitize returns a copy where every value failing valid is replaced by
// its default.
func (t ColorTheme) Sanitize(valid func(string) bool) ColorTheme {
	def := DefaultColorTheme()
	pick := func(v, fallback string) string {
		if valid(v) {
			return v
		}
		return fallback
	}
	return ColorTheme{
		StarColor:           pick(t.StarColor, def.StarColor),
		BarColor:            pick(t.BarColor, def.BarColor),
		ReviewBackground:    pick(t.ReviewBackground, def.ReviewBackground),
		ReviewBodyText:      pick(t.ReviewBodyText, def.ReviewBodyText),
		ReviewTitle:         pick(t.ReviewTitle, def.ReviewTitle),
		LoadMoreButton:      pick(t.LoadMoreButton, def.LoadMoreButton),
		LoadMoreButtonLabel: pick(t.LoadMoreButtonLabel, def.LoadMoreButtonLabel),
	}
}

// Merge overlays the non-empty values of patch onto t.
func (t ColorTheme) Merge(patch ColorTheme) ColorTheme {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&t.StarColor, patch.StarColor)
	set(&t.BarColor, patch.BarColor)
	set(&t.ReviewBackground, patch.ReviewBackground)
	set(&t.ReviewBodyText, patch.ReviewBodyText)
	set(&t.ReviewTitle, patch.ReviewTitle)
	set(&t.LoadMoreButton, patch.LoadMoreButton)
	set(&t.LoadMoreButtonLabel, patch.LoadMoreButtonLabel)
	return t
}
