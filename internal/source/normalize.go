package source

import (
	"net/url"
	"strings"

	"github.com/araddon/dateparse"
)

// normalizePostedTime converts a source-native timestamp to
// "YYYY-MM-DD HH:MM:SS". Sources disagree wildly on formats; anything
// dateparse cannot handle is passed through unchanged so the original value
// survives downstream instead of being silently dropped.
func normalizePostedTime(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	t, err := dateparse.ParseAny(s)
	if err != nil {
		return s
	}
	return t.Format("2006-01-02 15:04:05")
}

// stripTimeLabel drops a leading "Published:"/"Updated:"-style label, keeping
// colons that belong to the time itself.
func stripTimeLabel(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, ":"); i >= 0 {
		if prefix := s[:i]; prefix != "" && !strings.ContainsAny(prefix, "0123456789") {
			return strings.TrimSpace(s[i+1:])
		}
	}
	return s
}

// absURL resolves href against the page it was found on. Relative hrefs are
// common in listing markup; unparseable ones are returned as-is.
func absURL(pageURL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
