package extractor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/doyensec/safeurl"

	"github.com/kjaylee/contentforge/internal/domain/models"
)

const (
	minContentLength = 100
	maxContentLength = 8000
	titleLimit       = 200
	descriptionLimit = 500

	userAgent = "Mozilla/5.0 (compatible; ContentForge/1.0; +https://contentforge.app)"
)

// Regions that carry navigation, ads, or page chrome rather than article text.
// Removing them before text extraction materially changes output quality.
const boilerplateSelector = "script, style, nav, footer, header, aside, iframe, noscript, " +
	".ad, .advertisement, .sidebar, " +
	`[role="navigation"], [role="banner"], [role="contentinfo"]`

// Content containers commonly used by blog and news templates, tried in order
// after the semantic article/main containers.
var contentSelectors = []string{
	".post-content", ".entry-content", ".article-content",
	".post-body", ".article-body", ".content-body",
	`[itemprop="articleBody"]`, ".markdown-body",
}

var (
	multiNewline = regexp.MustCompile(`\n{3,}`)
	multiSpace   = regexp.MustCompile(`[ \t]+`)
)

// Result is a successful extraction: the cleaned source document plus the
// page's description metadata.
type Result struct {
	Document    models.SourceDocument
	Description string
}

type Extractor struct {
	client      *http.Client
	logger      *slog.Logger
	maxBodySize int64
}

func NewExtractor(client *http.Client, logger *slog.Logger, maxBodySize int64) *Extractor {
	return &Extractor{
		client:      client,
		logger:      logger,
		maxBodySize: maxBodySize,
	}
}

// NewSafeClient builds the HTTP client used in production: SSRF-guarded
// (private, loopback, link-local, and metadata addresses are rejected at dial
// time) with a hard request timeout.
func NewSafeClient(timeout time.Duration) *http.Client {
	cfg := safeurl.GetConfigBuilder().
		SetTimeout(timeout).
		SetAllowedSchemes("http", "https").
		SetAllowedPorts(80, 443).
		Build()

	return safeurl.Client(cfg).Client
}

// Extract fetches rawURL and distills it into a SourceDocument. Every failure
// is a typed, recoverable error; the caller decides how to report it.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (*Result, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, models.ErrInvalidURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, models.ErrInvalidURL
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "ko-KR,ko;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch URL: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &models.FetchError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, e.maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to parse page: %w", err)
	}

	doc.Find(boilerplateSelector).Remove()

	title := firstNonEmpty(
		func() string { return doc.Find(`meta[property="og:title"]`).AttrOr("content", "") },
		func() string { return doc.Find(`meta[name="twitter:title"]`).AttrOr("content", "") },
		func() string { return strings.TrimSpace(doc.Find("title").First().Text()) },
	)

	description := firstNonEmpty(
		func() string { return doc.Find(`meta[property="og:description"]`).AttrOr("content", "") },
		func() string { return doc.Find(`meta[name="twitter:description"]`).AttrOr("content", "") },
		func() string { return doc.Find(`meta[name="description"]`).AttrOr("content", "") },
	)

	content := e.extractBody(doc)
	content = cleanText(content)

	if len([]rune(content)) < minContentLength {
		return nil, models.ErrContentTooShort
	}

	if runes := []rune(content); len(runes) > maxContentLength {
		content = string(runes[:maxContentLength]) + "..."
	}

	e.logger.Info("extracted article",
		slog.String("url", rawURL),
		slog.Int("content_chars", len([]rune(content))),
		slog.Bool("has_title", title != ""),
	)

	return &Result{
		Document: models.SourceDocument{
			Text:      content,
			Title:     truncateRunes(title, titleLimit),
			OriginURL: rawURL,
		},
		Description: truncateRunes(description, descriptionLimit),
	}, nil
}

// extractBody walks a priority chain of content containers and returns the
// text of the first one that yields anything.
func (e *Extractor) extractBody(doc *goquery.Document) string {
	if text := selectionText(doc.Find("article").First()); text != "" {
		return text
	}
	if text := selectionText(doc.Find("main").First()); text != "" {
		return text
	}
	for _, selector := range contentSelectors {
		if text := selectionText(doc.Find(selector).First()); text != "" {
			return text
		}
	}
	return selectionText(doc.Find("body"))
}

// selectionText extracts text with block-level elements treated as line
// breaks, so the result keeps paragraph structure instead of flattening into
// one run-on line.
func selectionText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	sel.Find("p, br, div, h1, h2, h3, h4, h5, h6, li").AppendHtml("\n")
	return sel.Text()
}

func cleanText(text string) string {
	text = multiNewline.ReplaceAllString(text, "\n\n")
	text = multiSpace.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	return strings.Join(cleaned, "\n")
}

func firstNonEmpty(candidates ...func() string) string {
	for _, candidate := range candidates {
		if value := strings.TrimSpace(candidate()); value != "" {
			return value
		}
	}
	return ""
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
