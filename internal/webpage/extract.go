package webpage

import (
	"bytes"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// DefaultMaxChars is the number of characters kept from a page.
const DefaultMaxChars = 5000

const (
	ModeRegex       = "regex"
	ModeReadability = "readability"
)

var (
	scriptRe     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleRe      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	tagRe        = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Extractor turns raw HTML into plain text.
type Extractor interface {
	Extract(pageURL string, html []byte) (string, error)
}

// NewExtractor picks the extractor for mode; unknown modes fall back to regex.
func NewExtractor(mode string, maxChars int) Extractor {
	if mode == ModeReadability {
		return ReadabilityExtractor{MaxChars: maxChars}
	}
	return RegexExtractor{MaxChars: maxChars}
}

// RegexExtractor strips scripts, styles and tags with regular expressions.
// It is a heuristic: malformed or nested markup can leak stray characters.
type RegexExtractor struct {
	MaxChars int
}

func (e RegexExtractor) Extract(_ string, html []byte) (string, error) {
	return CleanText(string(html), e.MaxChars), nil
}

// CleanText removes script/style blocks, replaces every tag with a space,
// collapses whitespace and keeps at most maxChars characters.
func CleanText(html string, maxChars int) string {
	s := scriptRe.ReplaceAllString(html, "")
	s = styleRe.ReplaceAllString(s, "")
	s = tagRe.ReplaceAllString(s, " ")
	return truncate(whitespaceRe.ReplaceAllString(s, " "), maxChars)
}

// ReadabilityExtractor keeps only the main article text of the page.
type ReadabilityExtractor struct {
	MaxChars int
}

func (e ReadabilityExtractor) Extract(pageURL string, html []byte) (string, error) {
	parsedURL, err := url.Parse(pageURL)
	if err != nil {
		return "", fmt.Errorf("invalid page URL: %w", err)
	}
	article, err := readability.FromReader(bytes.NewReader(html), parsedURL)
	if err != nil {
		return "", fmt.Errorf("readability failed: %w", err)
	}
	return truncate(whitespaceRe.ReplaceAllString(article.TextContent, " "), e.MaxChars), nil
}

// Metadata reads the <title> and meta description of a page.
func Metadata(html []byte) (title, description string) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return "", ""
	}
	title = strings.TrimSpace(doc.Find("title").First().Text())
	if d, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok {
		description = strings.TrimSpace(d)
	} else if d, ok := doc.Find(`meta[property="og:description"]`).First().Attr("content"); ok {
		description = strings.TrimSpace(d)
	}
	return whitespaceRe.ReplaceAllString(title, " "), whitespaceRe.ReplaceAllString(description, " ")
}

func truncate(s string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	if len(s) <= maxChars {
		return s
	}
	r := []rune(s)
	if len(r) <= maxChars {
		return s
	}
	return string(r[:maxChars])
}
