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

// MercuryNews scrapes the Mercury News traffic-fatalities tag page. Detail
// pages are Bay Area News Group markup: og/article meta tags carry title and
// publish time, the byline block carries the author.
type MercuryNews struct {
	fetch   Fetcher
	listURL string
}

func NewMercuryNews(f Fetcher) *MercuryNews {
	return &MercuryNews{fetch: f, listURL: "https://www.mercurynews.com/tag/traffic-fatalities/"}
}

func (s *MercuryNews) Name() string { return "mercurynews" }

func (s *MercuryNews) Discover(ctx context.Context) ([]model.Candidate, error) {
	b, err := s.fetch.Fetch(ctx, s.listURL)
	if err != nil {
		return nil, fmt.Errorf("mercurynews: fetch listing: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("mercurynews: parse listing: %w", err)
	}

	var out []model.Candidate
	seen := map[string]struct{}{}
	doc.Find("article.tag-search-view a.article-title").Each(func(_ int, a *goquery.Selection) {
		u := absURL(s.listURL, a.AttrOr("href", ""))
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, model.Candidate{
			Title:   strings.TrimSpace(a.Find("span.dfm-title").First().Text()),
			NewsURL: u,
		})
	})
	return out, nil
}

func (s *MercuryNews) FetchDetail(ctx context.Context, newsURL string) (model.Detail, error) {
	b, err := s.fetch.Fetch(ctx, newsURL)
	if err != nil {
		return model.Detail{}, fmt.Errorf("mercurynews: fetch detail: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return model.Detail{}, fmt.Errorf("mercurynews: parse detail: %w", err)
	}

	var d model.Detail
	d.Author = strings.TrimSpace(doc.Find("div.byline a.author-name").First().Text())
	d.PostedTime = normalizePostedTime(doc.Find("meta[property='article:published_time']").AttrOr("content", ""))

	var paras []string
	doc.Find("div.body-copy p").Each(func(_ int, p *goquery.Selection) {
		if t := strings.TrimSpace(p.Text()); t != "" {
			paras = append(paras, t)
		}
	})
	d.Content = strings.Join(paras, "\n")
	if d.Content == "" {
		d.Content = scrape.ReadableText(b, newsURL)
	}
	return d, nil
}
