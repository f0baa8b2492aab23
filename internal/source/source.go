package source

import (
	"context"
	"fmt"
	"strings"

	"crashwire/internal/model"
)

// Extractor is implemented once per news site. Discover walks the site's
// listing pages and returns candidate references; FetchDetail pulls a single
// article page. Implementations differ only in selectors and pagination.
type Extractor interface {
	Name() string
	Discover(ctx context.Context) ([]model.Candidate, error)
	FetchDetail(ctx context.Context, newsURL string) (model.Detail, error)
}

// Fetcher downloads a page. Satisfied by *scrape.Client.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) ([]byte, error)
}

// All returns every known extractor.
func All(f Fetcher, pageLimit int) []Extractor {
	return []Extractor{
		NewCBS8(f),
		NewABC30(f),
		NewNBCLA(f, pageLimit),
		NewMercuryNews(f),
	}
}

// ByName resolves the named extractors; an empty list selects all of them.
func ByName(f Fetcher, pageLimit int, names []string) ([]Extractor, error) {
	all := All(f, pageLimit)
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]Extractor, len(all))
	for _, e := range all {
		byName[e.Name()] = e
	}
	out := make([]Extractor, 0, len(names))
	for _, n := range names {
		e, ok := byName[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("unknown source %q", n)
		}
		out = append(out, e)
	}
	return out, nil
}
