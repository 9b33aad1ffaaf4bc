package extractor

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/go-shiori/go-readability"
	"github.com/pemistahl/lingua-go"

	"github.com/dtnitsch/kurvalgom/internal/common"
	"github.com/dtnitsch/kurvalgom/models"
	"github.com/dtnitsch/kurvalgom/pkg/browser"
)

var errNotFound = errors.New("element not found")

var knownLanguages = map[string]lingua.Language{
	"en": lingua.English,
	"lt": lingua.Lithuanian,
	"lv": lingua.Latvian,
	"et": lingua.Estonian,
	"ru": lingua.Russian,
	"pl": lingua.Polish,
	"de": lingua.German,
	"fr": lingua.French,
	"it": lingua.Italian,
	"es": lingua.Spanish,
	"uk": lingua.Ukrainian,
}

// Extractor pulls enriched content out of a confirmed detail page.
type Extractor struct {
	logger      *slog.Logger
	placeholder string
	detector    lingua.LanguageDetector
}

// New builds an Extractor. languages are ISO 639-1 codes the description
// language is chosen from; fewer than two known codes disables detection.
func New(logger *slog.Logger, placeholder string, languages []string) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if placeholder == "" {
		placeholder = models.PlaceholderImageURL
	}
	e := &Extractor{logger: logger, placeholder: placeholder}

	var langs []lingua.Language
	seen := make(map[lingua.Language]bool)
	for _, code := range languages {
		lang, ok := knownLanguages[strings.ToLower(strings.TrimSpace(code))]
		if ok && !seen[lang] {
			seen[lang] = true
			langs = append(langs, lang)
		}
	}
	if len(langs) >= 2 {
		e.detector = lingua.NewLanguageDetectorBuilder().FromLanguages(langs...).Build()
	}
	return e
}

// Verify reports whether page carries the content marker.
func (e *Extractor) Verify(page *browser.Page) bool {
	if page == nil || page.Doc == nil {
		return false
	}
	return page.Doc.Find(QuickInfoSelector).Length() > 0
}

// Extract pulls every field independently. A field that cannot be read is
// logged and replaced by its sentinel; the others are unaffected.
func (e *Extractor) Extract(page *browser.Page, restaurant string) models.EnrichedContent {
	log := e.logger.With("restaurant", restaurant, "url", page.URL)

	content := models.EnrichedContent{
		Description:   extractField(log, "description", models.NoDescription, func() (string, error) { return description(page) }),
		ImageURLs:     extractField(log, "image_urls", []string{e.placeholder}, func() ([]string, error) { return images(page) }),
		MenuDocuments: extractField(log, "menu_pdfs", []string{}, func() ([]string, error) { return menus(page) }),
		Rating:        extractField(log, "rating", models.NoRating, func() (string, error) { return rating(page) }),
		Title:         extractField(log, "title", "", func() (string, error) { return title(page) }),
	}
	if content.Resolved() && e.detector != nil {
		content.Language = extractField(log, "language", "", func() (string, error) { return e.language(content.Description) })
	}

	log.Info("extracted restaurant content",
		"description", common.Truncate(content.Description, 80),
		"images", len(content.ImageURLs),
		"menus", len(content.MenuDocuments),
		"rating", content.Rating,
	)
	return content
}

// extractField runs fn in isolation. Errors and panics both yield fallback.
func extractField[T any](log *slog.Logger, field string, fallback T, fn func() (T, error)) (out T) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("failed to extract field", "field", field, "error", fmt.Sprint(r))
			out = fallback
		}
	}()

	v, err := fn()
	if err != nil {
		log.Error("failed to extract field", "field", field, "error", err)
		return fallback
	}
	return v
}

func description(page *browser.Page) (string, error) {
	sel := page.Doc.Find(QuickInfoSelector).First()
	if sel.Length() == 0 {
		return "", fmt.Errorf("%s: %w", QuickInfoSelector, errNotFound)
	}
	return visibleText(sel), nil
}

func images(page *browser.Page) ([]string, error) {
	var urls []string
	page.Doc.Find(SlideSelector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		if v := common.AbsoluteURL(page.URL, s.AttrOr(SlideImageAttr, "")); v != "" {
			urls = append(urls, v)
		}
		return len(urls) < models.MaxImages
	})
	if len(urls) == 0 {
		return nil, fmt.Errorf("%s: %w", SlideSelector, errNotFound)
	}
	return urls, nil
}

func menus(page *browser.Page) ([]string, error) {
	urls := []string{}
	page.Doc.Find(MenuLinkSelector).Each(func(i int, s *goquery.Selection) {
		if href, ok := s.Attr("href"); ok {
			if v := common.AbsoluteURL(page.URL, href); v != "" {
				urls = append(urls, v)
			}
		}
	})
	return urls, nil
}

func rating(page *browser.Page) (string, error) {
	if len(page.Doc.Nodes) == 0 {
		return "", errNotFound
	}
	span, err := htmlquery.Query(page.Doc.Nodes[0], RatingXPath)
	if err != nil {
		return "", fmt.Errorf("rating: %w", err)
	}
	if span == nil {
		return "", fmt.Errorf("rating: %w", errNotFound)
	}
	return strings.TrimSpace(htmlquery.InnerText(span)), nil
}

func title(page *browser.Page) (string, error) {
	html, err := page.Doc.Html()
	if err != nil {
		return "", err
	}
	pageURL, err := url.Parse(page.URL)
	if err != nil {
		return "", err
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(html), pageURL)
	if err != nil {
		return "", err
	}
	return normalizeText(article.Title), nil
}

func (e *Extractor) language(text string) (string, error) {
	lang, ok := e.detector.DetectLanguageOf(text)
	if !ok {
		return "", errors.New("language not detected")
	}
	return strings.ToLower(lang.IsoCode639_1().String()), nil
}

// visibleText approximates rendered text: lines trimmed, blank lines dropped.
func visibleText(s *goquery.Selection) string {
	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(s.Text()))
	for scanner.Scan() {
		if line := normalizeText(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// normalizeText collapses runs of whitespace into single spaces.
func normalizeText(input string) string {
	return strings.Join(strings.Fields(input), " ")
}
