package render

import (
	"encoding/json"
	"fmt"
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/shopitpress-com/sip-reviews-shortcode-woocommerce/internal/domain"
)

// MaxSchemaReviews bounds the reviews embedded in the product schema.
const MaxSchemaReviews = 20

const (
	schemaOpen  = "<!-- This site is using the SIP Reviews Shortcode for WooCommerce plugin - https://wordpress.org/plugins/sip-reviews-shortcode-woocommerce/ -->\n"
	schemaClose = "\n<!-- / SIP Reviews Shortcode for WooCommerce plugin. -->\n"

	// ISO 8601 with a numeric offset, e.g. 2025-03-01T10:00:00+00:00.
	isoDate = "2006-01-02T15:04:05-07:00"
	ymd     = "2006-01-02"
)

// ProductSchema is a schema.org Product.
type ProductSchema struct {
	Context         string           `json:"@context"`
	Type            string           `json:"@type"`
	Name            string           `json:"name"`
	Image           string           `json:"image"`
	Description     string           `json:"description"`
	SKU             string           `json:"sku"`
	URL             string           `json:"url"`
	Offers          Offer            `json:"offers"`
	AggregateRating *AggregateRating `json:"aggregateRating,omitempty"`
	Review          []ReviewSchema   `json:"review,omitempty"`
}

type Offer struct {
	Type                    string               `json:"@type"`
	PriceCurrency           string               `json:"priceCurrency"`
	Price                   string               `json:"price"`
	Availability            string               `json:"availability"`
	URL                     string               `json:"url"`
	PriceValidUntil         string               `json:"priceValidUntil"`
	ShippingDetails         ShippingDetails      `json:"shippingDetails"`
	HasMerchantReturnPolicy MerchantReturnPolicy `json:"hasMerchantReturnPolicy"`
}

type ShippingDetails struct {
	Type                string        `json:"@type"`
	ShippingRate        MonetaryValue `json:"shippingRate"`
	ShippingDestination DefinedRegion `json:"shippingDestination"`
	DeliveryTime        DeliveryTime  `json:"deliveryTime"`
}

type MonetaryValue struct {
	Type     string `json:"@type"`
	Value    int    `json:"value"`
	Currency string `json:"currency"`
}

type DefinedRegion struct {
	Type           string `json:"@type"`
	AddressCountry string `json:"addressCountry"`
}

type DeliveryTime struct {
	Type         string            `json:"@type"`
	HandlingTime QuantitativeValue `json:"handlingTime"`
	TransitTime  QuantitativeValue `json:"transitTime"`
}

type QuantitativeValue struct {
	Type     string `json:"@type"`
	MinValue int    `json:"minValue"`
	MaxValue int    `json:"maxValue"`
	UnitCode string `json:"unitCode"`
}

type MerchantReturnPolicy struct {
	Type                 string `json:"@type"`
	ApplicableCountry    string `json:"applicableCountry"`
	ReturnPolicyCategory string `json:"returnPolicyCategory"`
	MerchantReturnDays   int    `json:"merchantReturnDays"`
	ReturnMethod         string `json:"returnMethod"`
	ReturnFees           string `json:"returnFees"`
}

type AggregateRating struct {
	Type        string  `json:"@type"`
	RatingValue float64 `json:"ratingValue"`
	ReviewCount int     `json:"reviewCount"`
}

type ReviewSchema struct {
	Type          string       `json:"@type"`
	Author        Person       `json:"author"`
	DatePublished string       `json:"datePublished"`
	ReviewBody    string       `json:"reviewBody"`
	ReviewRating  RatingSchema `json:"reviewRating"`
}

type Person struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type RatingSchema struct {
	Type        string `json:"@type"`
	RatingValue int    `json:"ratingValue"`
	BestRating  string `json:"bestRating"`
	WorstRating string `json:"worstRating"`
}

// SchemaOptions carries the store settings the schema needs.
type SchemaOptions struct {
	// BaseURL is the storefront origin product permalinks are built on.
	BaseURL  string
	Currency string
	// Country is the ISO code used for shipping and returns.
	Country string
	// Now anchors priceValidUntil when the product has no sale end.
	Now time.Time
}

// ProductURL returns the permalink of p under baseURL.
func ProductURL(baseURL string, p *domain.Product) string {
	base := strings.TrimRight(baseURL, "/")
	if p.Slug == "" {
		return base + "/?p=" + strconv.FormatInt(p.ID, 10)
	}
	return base + "/product/" + p.Slug + "/"
}

// BuildProductSchema assembles the schema for p. Unrated reviews are
// skipped and at most MaxSchemaReviews are kept.
func BuildProductSchema(p *domain.Product, reviews []domain.Review, opts SchemaOptions) ProductSchema {
	url := ProductURL(opts.BaseURL, p)

	validUntil := opts.Now.AddDate(1, 0, 0).UTC().Format(ymd)
	if p.SaleEndsAt != nil {
		validUntil = p.SaleEndsAt.Format(ymd)
	}

	s := ProductSchema{
		Context:     "https://schema.org/",
		Type:        "Product",
		Name:        p.Name,
		Image:       p.ImageURL,
		Description: StripTags(p.Description),
		SKU:         p.SKU,
		URL:         url,
		Offers: Offer{
			Type:            "Offer",
			PriceCurrency:   opts.Currency,
			Price:           p.Price,
			Availability:    "https://schema.org/InStock",
			URL:             url,
			PriceValidUntil: validUntil,
			ShippingDetails: ShippingDetails{
				Type:                "OfferShippingDetails",
				ShippingRate:        MonetaryValue{Type: "MonetaryAmount", Value: 0, Currency: opts.Currency},
				ShippingDestination: DefinedRegion{Type: "DefinedRegion", AddressCountry: opts.Country},
				DeliveryTime: DeliveryTime{
					Type:         "ShippingDeliveryTime",
					HandlingTime: QuantitativeValue{Type: "QuantitativeValue", MinValue: 1, MaxValue: 2, UnitCode: "DAY"},
					TransitTime:  QuantitativeValue{Type: "QuantitativeValue", MinValue: 3, MaxValue: 7, UnitCode: "DAY"},
				},
			},
			HasMerchantReturnPolicy: MerchantReturnPolicy{
				Type:                 "MerchantReturnPolicy",
				ApplicableCountry:    opts.Country,
				ReturnPolicyCategory: "https://schema.org/MerchantReturnFiniteReturnWindow",
				MerchantReturnDays:   30,
				ReturnMethod:         "https://schema.org/ReturnByMail",
				ReturnFees:           "https://schema.org/FreeReturn",
			},
		},
	}

	if p.ReviewCount > 0 {
		s.AggregateRating = &AggregateRating{
			Type:        "AggregateRating",
			RatingValue: p.AverageRating,
			ReviewCount: p.ReviewCount,
		}
	}

	for _, rv := range reviews {
		if len(s.Review) == MaxSchemaReviews {
			break
		}
		if !rv.IsRated() {
			continue
		}
		s.Review = append(s.Review, ReviewSchema{
			Type:          "Review",
			Author:        Person{Type: "Person", Name: html.EscapeString(rv.AuthorName)},
			DatePublished: rv.PublishedAt.Format(isoDate),
			ReviewBody:    StripTags(rv.Body),
			ReviewRating: RatingSchema{
				Type:        "Rating",
				RatingValue: rv.Rating,
				BestRating:  "5",
				WorstRating: "1",
			},
		})
	}

	return s
}

// Script returns s as a JSON-LD script element between the plugin markers.
func (s ProductSchema) Script() (string, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode product schema: %w", err)
	}
	return schemaOpen + `<script type="application/ld+json">` + string(data) + `</script>` + schemaClose, nil
}
