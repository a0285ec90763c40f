// Package listing extracts candidate restaurant summaries from a
// search-results document. A primary selector strategy targets the site's
// known result cells; a looser fallback handles markup variants and partial
// renders.
package listing

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/Khootz/FYP2026/internal/openrice"
)

var nonDigits = regexp.MustCompile(`\D`)

// Parse returns the candidates found in a search-results document. When the
// primary strategy yields nothing, the fallback strategy runs exactly once;
// fallback candidates may carry only a name and URL.
func Parse(doc *goquery.Document) []openrice.Candidate {
	candidates := parsePrimary(doc)
	if len(candidates) == 0 {
		candidates = parseFallback(doc)
	}
	return candidates
}

func parsePrimary(doc *goquery.Document) []openrice.Candidate {
	var candidates []openrice.Candidate

	doc.Find("div.poi-list-cell").Each(func(_ int, cell *goquery.Selection) {
		if c, ok := parseCell(cell); ok {
			candidates = append(candidates, c)
		}
	})
	return candidates
}

// parseCell extracts one candidate from a result cell. Cells without an
// extractable name or link are discarded rather than emitted degenerate.
func parseCell(cell *goquery.Selection) (openrice.Candidate, bool) {
	name := strings.TrimSpace(cell.Find("div.poi-name").First().Text())
	if name == "" {
		return openrice.Candidate{}, false
	}

	href, ok := listingHref(cell)
	if !ok {
		return openrice.Candidate{}, false
	}

	c := openrice.Candidate{
		Name:     name,
		URL:      openrice.CanonicalURL(href),
		ID:       openrice.IDFromPath(href),
		District: strings.TrimSpace(cell.Find("div.poi-addr").First().Text()),
	}

	if cuisine := cell.Find("div.poi-cuisine-short").First().Text(); cuisine != "" {
		for _, part := range strings.Split(cuisine, "|") {
			if p := strings.TrimSpace(part); p != "" {
				c.Cuisines = append(c.Cuisines, p)
			}
		}
	}

	c.PriceRange = strings.TrimSpace(cell.Find("div.poi-price").First().Text())

	if smile := cell.Find("span.smile-face").First().Text(); smile != "" {
		if n, err := strconv.Atoi(nonDigits.ReplaceAllString(smile, "")); err == nil {
			c.SmileCount = &n
		}
	}

	if img := cell.Find("img.poi-list-cell-img").First(); img.Length() > 0 {
		src, ok := img.Attr("src")
		if !ok || src == "" {
			src, _ = img.Attr("data-src")
		}
		c.Thumbnail = src
	}

	return c, true
}

// listingHref picks the candidate's canonical link: prefer a listing link
// that is not a photos/reviews sub-view, fall back to the first listing link
// (its suffix is stripped later).
func listingHref(cell *goquery.Selection) (string, bool) {
	var preferred, first string

	cell.Find("a[href*='/r-']").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok || href == "" {
			return true
		}
		if first == "" {
			first = href
		}
		if !strings.Contains(href, "/photos") && !strings.Contains(href, "/reviews") {
			preferred = href
			return false
		}
		return true
	})

	if preferred != "" {
		return preferred, true
	}
	if first != "" {
		return first, true
	}
	return "", false
}

// parseFallback handles layout variants where the usual cell class is
// missing: any desktop main section carrying a listing link and a name is
// accepted as a partial record.
func parseFallback(doc *goquery.Document) []openrice.Candidate {
	var candidates []openrice.Candidate

	doc.Find("div.poi-list-cell-desktop-main-section").Each(func(_ int, section *goquery.Selection) {
		link := section.Find("a[href*='/r-']").First()
		href, ok := link.Attr("href")
		if !ok || href == "" {
			return
		}
		name := strings.TrimSpace(section.Find("div.poi-name").First().Text())
		if name == "" {
			return
		}

		candidates = append(candidates, openrice.Candidate{
			Name: name,
			URL:  openrice.CanonicalURL(href),
			ID:   openrice.IDFromPath(href),
		})
	})
	return candidates
}
