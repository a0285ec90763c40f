// Package detail enriches a matched listing with review excerpts, review
// metrics and a small image set from the photo gallery.
package detail

import (
	"context"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/Khootz/FYP2026/internal/fetch"
	"github.com/Khootz/FYP2026/internal/openrice"
)

// DefaultMaxPhotos bounds the images taken from the gallery page when the
// caller passes no limit. A resource/latency bound, not a quality filter.
const DefaultMaxPhotos = 3

var nonDigits = regexp.MustCompile(`\D`)

// ExtractReviews returns the review excerpts rendered on a listing page.
// Blocks without extractable text are skipped, not counted as empty reviews.
func ExtractReviews(doc *goquery.Document) []string {
	var texts []string

	doc.Find("div.review-post-trim-desktop.poi-detail-review-trim").Each(func(_ int, box *goquery.Selection) {
		text := strings.TrimSpace(box.Find("div.review-post-extract").First().Text())
		if text != "" {
			texts = append(texts, text)
		}
	})
	return texts
}

// ExtractSummary reads the listing page's aggregate review metrics. Fields
// missing from the page stay nil.
func ExtractSummary(doc *goquery.Document) openrice.Review {
	var summary openrice.Review

	if score := strings.TrimSpace(doc.Find("div.header-score").First().Text()); score != "" {
		if rating, err := strconv.ParseFloat(score, 64); err == nil {
			summary.Rating = &rating
		}
	}

	if countText := doc.Find("span.review-count, a.review-count").First().Text(); countText != "" {
		if n, err := strconv.Atoi(nonDigits.ReplaceAllString(countText, "")); err == nil {
			summary.ReviewCount = &n
		}
	}
	return summary
}

// ExtractPhotos performs the second navigation to the listing's photo
// gallery and returns up to max images (DefaultMaxPhotos when max <= 0).
// Only absolute-scheme URLs are accepted; the first accepted image is marked
// primary. A failed gallery load degrades to an empty list and never fails
// the resolution.
func ExtractPhotos(ctx context.Context, engine *fetch.Engine, listingURL string, max int, logger *slog.Logger) []openrice.Image {
	if max <= 0 {
		max = DefaultMaxPhotos
	}
	photosURL := openrice.PhotosURL(listingURL)

	if err := engine.Delay(ctx); err != nil {
		return nil
	}

	doc, err := engine.Load(ctx, "photos", photosURL)
	if err != nil {
		logger.Warn("photo gallery load failed, continuing without images",
			"url", photosURL, "err", err)
		return nil
	}
	return photosFromGallery(doc, max)
}

func photosFromGallery(doc *goquery.Document, max int) []openrice.Image {
	var images []openrice.Image

	doc.Find("div.media-item-thumbnail-media").EachWithBreak(func(_ int, item *goquery.Selection) bool {
		img := item.Find("img.media-item-thumbnail-image").First()
		src, ok := img.Attr("src")
		if !ok || !strings.HasPrefix(src, "http") {
			return true
		}

		alt, _ := img.Attr("alt")
		images = append(images, openrice.Image{
			URL:    src,
			Alt:    alt,
			IsMain: len(images) == 0,
		})
		return len(images) < max
	})
	return images
}
