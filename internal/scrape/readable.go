package scrape

import (
	"bytes"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// ReadableText extracts the main article text from a page when the
// site-specific selectors come up empty. Returns "" when nothing usable can
// be recovered; callers already treat empty content as a soft miss.
func ReadableText(html []byte, pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	art, err := readability.FromReader(bytes.NewReader(html), u)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(art.TextContent)
}
