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

// ABC30 scrapes the ABC30 Fresno car-crash tag page. The site has no
// byline markup worth trusting, so author stays empty.
type ABC30 struct {
	fetch   Fetcher
	listURL string
}

func NewABC30(f Fetcher) *ABC30 {
	return &ABC30{fetch: f, listURL: "https://abc30.com/tag/car-crash/"}
}

func (s *ABC30) Name() string { return "abc30" }

func (s *ABC30) Discover(ctx context.Context) ([]model.Candidate, error) {
	b, err := s.fetch.Fetch(ctx, s.listURL)
	if err != nil {
		return nil, fmt.Errorf("abc30: fetch listing: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("abc30: parse listing: %w", err)
	}

	var out []model.Candidate
	seen := map[string]struct{}{}
	doc.Find("div.headline-list-item a.AnchorLink").Each(func(_ int, a *goquery.Selection) {
		u := absURL(s.listURL, a.AttrOr("href", ""))
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		out = append(out, model.Candidate{
			Title:   strings.TrimSpace(a.Find("div.headline").First().Text()),
			NewsURL: u,
		})
	})
	return out, nil
}

func (s *ABC30) FetchDetail(ctx context.Context, newsURL string) (model.Detail, error) {
	b, err := s.fetch.Fetch(ctx, newsURL)
	if err != nil {
		return model.Detail{}, fmt.Errorf("abc30: fetch detail: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return model.Detail{}, fmt.Errorf("abc30: parse detail: %w", err)
	}

	var d model.Detail
	d.PostedTime = normalizePostedTime(doc.Find("div.jTKbV.zIIsP.ZdbeE.xAPpq.QtiLO.JQYD").First().Text())

	var paras []string
	doc.Find("div[data-testid='prism-article-body'] p").Each(func(_ int, p *goquery.Selection) {
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
