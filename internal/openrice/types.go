// Package openrice defines the domain model for restaurant listings resolved
// against OpenRice Hong Kong, plus the site's URL scheme.
package openrice

import (
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	// BaseURL is the site root all relative listing links resolve against.
	BaseURL = "https://www.openrice.com"

	searchPath   = "/en/hongkong/restaurants"
	photosSuffix = "/photos/all"

	// SchemaVersion is bumped whenever the serialized Restaurant shape
	// changes incompatibly; cached entries with a different version are
	// treated as misses.
	SchemaVersion = 1
)

// Image is a single restaurant photo. Exactly one image in a non-empty set
// carries IsMain.
type Image struct {
	URL    string `json:"url"`
	Alt    string `json:"alt,omitempty"`
	IsMain bool   `json:"is_main"`
}

// Review aggregates the listing's review metrics. Fields absent from the
// source page stay nil rather than defaulting to zero.
type Review struct {
	Rating      *float64 `json:"rating,omitempty"`
	ReviewCount *int     `json:"review_count,omitempty"`
	SmileCount  *int     `json:"smile_count,omitempty"`
	CryCount    *int     `json:"cry_count,omitempty"`
}

// Candidate is one search-result entry possibly matching a query. It is
// produced transiently by the listing parser and never persisted on its own.
type Candidate struct {
	Name       string
	ID         string
	URL        string
	District   string
	Cuisines   []string
	PriceRange string
	SmileCount *int
	Thumbnail  string
}

// Restaurant is the unit of resolution and of caching. When Matched is
// false every listing-specific field is unset and Confidence reflects the
// best score seen (possibly zero).
type Restaurant struct {
	Query      string  `json:"query"`
	Matched    bool    `json:"matched"`
	Confidence float64 `json:"confidence"`

	Name       string   `json:"name,omitempty"`
	ID         string   `json:"openrice_id,omitempty"`
	URL        string   `json:"openrice_url,omitempty"`
	District   string   `json:"district,omitempty"`
	Cuisines   []string `json:"cuisine_types,omitempty"`
	PriceRange string   `json:"price_range,omitempty"`

	Reviews     *Review  `json:"reviews,omitempty"`
	ReviewTexts []string `json:"review_texts,omitempty"`

	Images    []Image `json:"images,omitempty"`
	MainImage string  `json:"main_image,omitempty"`

	ScrapedAt time.Time `json:"scraped_at"`
}

// SearchURL builds the search-results URL for a free-text query.
func SearchURL(query string) string {
	return BaseURL + searchPath + "?whatwhere=" + url.QueryEscape(query)
}

// PhotosURL derives the photo-gallery URL from a listing's canonical URL.
func PhotosURL(listingURL string) string {
	return strings.TrimRight(listingURL, "/") + photosSuffix
}

var listingIDRe = regexp.MustCompile(`/r-([^/]+)`)

// IDFromPath extracts the listing identifier from an href containing an
// "r-" path segment. Returns "" if the path carries no identifier.
func IDFromPath(href string) string {
	m := listingIDRe.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return m[1]
}

// CanonicalURL strips the alternate-view suffixes (/photos, /reviews) from a
// listing href and resolves it against the site base. Both suffixes are views
// of the same listing, not the listing root.
func CanonicalURL(href string) string {
	if i := strings.Index(href, "/photos"); i >= 0 {
		href = href[:i]
	}
	if i := strings.Index(href, "/reviews"); i >= 0 {
		href = href[:i]
	}
	if strings.HasPrefix(href, "/") {
		return BaseURL + href
	}
	return href
}
