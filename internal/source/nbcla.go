package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"crashwire/internal/model"
	"crashwire/internal/scrape"

	"github.com/PuerkitoBio/goquery"
)

// NBCLA pulls the NBC Los Angeles California-news term feed through the site's
// WP JSON API, paginated up to pageLimit. Author and posted time ride along in
// the listing records, so Discover caches them for FetchDetail; only the
// article body needs a second request.
type NBCLA struct {
	fetch     Fetcher
	baseURL   string
	pageLimit int
	meta      map[string]model.Detail
}

func NewNBCLA(f Fetcher, pageLimit int) *NBCLA {
	if pageLimit <= 0 {
		pageLimit = 3
	}
	return &NBCLA{
		fetch:     f,
		baseURL:   "https://www.nbclosangeles.com/wp-json/nbc/v1/template/term/1:9:564?page=",
		pageLimit: pageLimit,
		meta:      map[string]model.Detail{},
	}
}

func (s *NBCLA) Name() string { return "nbcla" }

type nbcListing struct {
	TemplateItems struct {
		Pagination struct {
			TotalPages int `json:"total_pages"`
		} `json:"pagination"`
		Items []struct {
			CanonicalURL string `json:"canonical_url"`
			Title        string `json:"title"`
			Modified     string `json:"modified"`
			Bylines      []struct {
				DisplayName string `json:"display_name"`
			} `json:"bylines"`
		} `json:"items"`
	} `json:"template_items"`
}

func (s *NBCLA) Discover(ctx context.Context) ([]model.Candidate, error) {
	var out []model.Candidate
	totalPages := 1
	for page := 1; page <= totalPages && page <= s.pageLimit; page++ {
		b, err := s.fetch.Fetch(ctx, fmt.Sprintf("%s%d", s.baseURL, page))
		if err != nil {
			if page == 1 {
				return nil, fmt.Errorf("nbcla: fetch page %d: %w", page, err)
			}
			break // keep what earlier pages yielded
		}
		var listing nbcListing
		if err := json.Unmarshal(b, &listing); err != nil {
			return out, fmt.Errorf("nbcla: decode page %d: %w", page, err)
		}
		if tp := listing.TemplateItems.Pagination.TotalPages; tp > 0 {
			totalPages = tp
		}
		for _, it := range listing.TemplateItems.Items {
			u := strings.TrimSpace(it.CanonicalURL)
			if u == "" {
				continue
			}
			authors := make([]string, 0, len(it.Bylines))
			for _, by := range it.Bylines {
				if n := strings.TrimSpace(by.DisplayName); n != "" {
					authors = append(authors, n)
				}
			}
			s.meta[u] = model.Detail{
				Author:     strings.Join(authors, ", "),
				PostedTime: normalizePostedTime(it.Modified),
			}
			out = append(out, model.Candidate{Title: strings.TrimSpace(it.Title), NewsURL: u})
		}
	}
	return out, nil
}

func (s *NBCLA) FetchDetail(ctx context.Context, newsURL string) (model.Detail, error) {
	d := s.meta[newsURL]
	b, err := s.fetch.Fetch(ctx, newsURL)
	if err != nil {
		return model.Detail{}, fmt.Errorf("nbcla: fetch detail: %w", err)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(b))
	if err != nil {
		return model.Detail{}, fmt.Errorf("nbcla: parse detail: %w", err)
	}
	var paras []string
	doc.Find("div.article-content.rich-text p").Each(func(_ int, p *goquery.Selection) {
		if t := strings.TrimSpace(p.Text()); t != "" {
			paras = append(paras, t)
		}
	})
	d.Content = strings.Join(paras, " ")
	if d.Content == "" {
		d.Content = scrape.ReadableText(b, newsURL)
	}
	return d, nil
}
