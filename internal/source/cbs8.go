package source

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"crashwire/internal/model"
	"crashwire/internal/scrape"

	"github.com/PuerkitoBio/goquery"
)

// CBS8 scrapes the CBS 8 San Diego news front page. The listing carries one
// main story plus story-list and headline-list entries.
type CBS8 struct {
	fetch   Fetcher
	baseURL string
}

func NewCBS8(f Fetcher) *CBS8 {
	return &CBS8{fetch: f, baseURL: "https://www.cbs8.com/news"}
}

func (s *CBS8) Name() string { return "cbs8" }

func (s *CBS8) Discover(ctx context.Context) ([]model.Candidate, error) {
	b, err := s.fetch.Fetch(ctx, s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("cbs8: fetch listing: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("cbs8: parse listing: %w", err)
	}

	var out []model.Candidate
	seen := map[string]struct{}{}
	add := func(title, href string) {
		u := absURL(s.baseURL, href)
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, model.Candidate{Title: strings.TrimSpace(title), NewsURL: u})
	}

	doc.Find("div.story__meta a.story__link").Each(func(_ int, a *goquery.Selection) {
		add(a.Text(), a.AttrOr("href", ""))
	})
	doc.Find("li.story-list__item h4.story-list__title a").Each(func(_ int, a *goquery.Selection) {
		add(a.Text(), a.AttrOr("href", ""))
	})
	doc.Find("li.headline-list__item a.headline-list__title").Each(func(_ int, a *goquery.Selection) {
		add(a.Text(), a.AttrOr("href", ""))
	})
	return out, nil
}

func (s *CBS8) FetchDetail(ctx context.Context, newsURL string) (model.Detail, error) {
	b, err := s.fetch.Fetch(ctx, newsURL)
	if err != nil {
		return model.Detail{}, fmt.Errorf("cbs8: fetch detail: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return model.Detail{}, fmt.Errorf("cbs8: parse detail: %w", err)
	}

	var d model.Detail
	author := strings.TrimSpace(doc.Find("div.article__author").First().Text())
	d.Author = strings.TrimSpace(strings.TrimPrefix(author, "Author:"))

	posted := doc.Find("div.article__published").First().Text()
	if strings.TrimSpace(posted) == "" {
		posted = doc.Find("div.article__updated").First().Text()
	}
	d.PostedTime = normalizePostedTime(stripTimeLabel(posted))

	var sections []string
	doc.Find("div.article__body div.article__section").Each(func(_ int, sec *goquery.Selection) {
		if t := strings.TrimSpace(sec.Text()); t != "" {
			sections = append(sections, t)
		}
	})
	d.Content = strings.Join(sections, "\n")
	if d.Content == "" {
		d.Content = scrape.ReadableText(b, newsURL)
	}
	return d, nil
}
