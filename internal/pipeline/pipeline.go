package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"crashwire/internal/model"
	"crashwire/internal/rewrite"
	"crashwire/internal/source"
)

// Store is the slice of the article store the pipeline uses.
type Store interface {
	Exists(ctx context.Context, url string) (bool, error)
	Insert(ctx context.Context, a model.Article) (bool, error)
}

// Classifier decides relevance and novelty for one candidate.
type Classifier interface {
	Classify(ctx context.Context, title, content, postedTime string) (bool, error)
}

// Rewriter produces the branded form of an accepted article.
type Rewriter interface {
	Rewrite(ctx context.Context, title, content string) (rewrite.Result, error)
	Retitle(ctx context.Context, title, content string) (string, error)
}

// Indexer mirrors an accepted article into the vector store.
type Indexer interface {
	Upsert(ctx context.Context, newsURL, title, content, postedTime string) error
}

// Notifier delivers the accepted batch downstream.
type Notifier interface {
	Notify(ctx context.Context, items []model.Article) error
}

// Outcome is the terminal state of one candidate.
type Outcome int

const (
	OutcomeDuplicateURL Outcome = iota
	OutcomeNotRelated
	OutcomeAccepted
)

// Summary aggregates one full invocation.
type Summary struct {
	Discovered          int
	SkippedDuplicateURL int
	SkippedNotRelated   int
	Accepted            int
	Failed              int
	Notified            bool
}

// Pipeline runs every configured source through gate, classify, rewrite,
// persist and index, then notifies the webhook once with all accepted
// articles. Sources and candidates are processed sequentially.
type Pipeline struct {
	Sources    []source.Extractor
	Store      Store
	Classifier Classifier
	Rewriter   Rewriter
	Indexer    Indexer  // nil disables vector indexing
	Notifier   Notifier // nil disables the webhook
}

// Run processes all sources. A failing source contributes zero articles and
// never aborts its siblings; the returned error covers only total
// miswiring, not per-source trouble.
func (p *Pipeline) Run(ctx context.Context) (Summary, error) {
	if p.Store == nil || p.Classifier == nil || p.Rewriter == nil {
		return Summary{}, errors.New("pipeline: store, classifier and rewriter are required")
	}
	var sum Summary
	var accepted []model.Article
	for _, src := range p.Sources {
		arts, err := p.runSource(ctx, src, &sum)
		if err != nil {
			slog.Error("pipeline: source failed", "source", src.Name(), "err", err)
			continue
		}
		accepted = append(accepted, arts...)
	}
	if len(accepted) > 0 && p.Notifier != nil {
		if err := p.Notifier.Notify(ctx, accepted); err != nil {
			slog.Error("pipeline: webhook notify failed", "err", err)
		} else {
			sum.Notified = true
		}
	}
	slog.Info("pipeline: run complete",
		"discovered", sum.Discovered,
		"accepted", sum.Accepted,
		"skipped_duplicate_url", sum.SkippedDuplicateURL,
		"skipped_not_related", sum.SkippedNotRelated,
		"failed", sum.Failed,
		"notified", sum.Notified)
	return sum, nil
}

func (p *Pipeline) runSource(ctx context.Context, src source.Extractor, sum *Summary) ([]model.Article, error) {
	cands, err := src.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover: %w", err)
	}
	slog.Info("pipeline: discovered candidates", "source", src.Name(), "count", len(cands))
	var accepted []model.Article
	for _, cand := range cands {
		sum.Discovered++
		a, outcome, err := p.processCandidate(ctx, src, cand)
		if err != nil {
			// one bad article never drops the rest of the source's batch
			sum.Failed++
			slog.Error("pipeline: candidate failed", "source", src.Name(), "url", cand.NewsURL, "err", err)
			continue
		}
		switch outcome {
		case OutcomeDuplicateURL:
			sum.SkippedDuplicateURL++
		case OutcomeNotRelated:
			sum.SkippedNotRelated++
		case OutcomeAccepted:
			sum.Accepted++
			accepted = append(accepted, a)
		}
	}
	return accepted, nil
}

// processCandidate walks one candidate through the per-article state machine:
// gate, detail fetch, classify, rewrite when accepted, persist, index.
func (p *Pipeline) processCandidate(ctx context.Context, src source.Extractor, cand model.Candidate) (model.Article, Outcome, error) {
	if cand.NewsURL == "" {
		return model.Article{}, 0, errors.New("candidate has no url")
	}

	// The gate runs before any fetch or LLM work for the URL. Fail open on
	// lookup errors: a store hiccup must not block ingestion, and the
	// conditional insert below is the real uniqueness enforcement.
	seen, err := p.Store.Exists(ctx, cand.NewsURL)
	if err != nil {
		slog.Error("pipeline: dedup check failed, treating as unseen", "url", cand.NewsURL, "err", err)
		seen = false
	}
	if seen {
		return model.Article{}, OutcomeDuplicateURL, nil
	}

	det, err := src.FetchDetail(ctx, cand.NewsURL)
	if err != nil {
		return model.Article{}, 0, err
	}

	related, err := p.Classifier.Classify(ctx, cand.Title, det.Content, det.PostedTime)
	if err != nil {
		return model.Article{}, 0, err
	}

	a := model.Article{
		NewsURL:    cand.NewsURL,
		Title:      cand.Title,
		Author:     det.Author,
		PostedTime: det.PostedTime,
		Content:    det.Content,
		IsRelated:  related,
	}
	if related {
		res, err := p.Rewriter.Rewrite(ctx, cand.Title, det.Content)
		if err != nil {
			return model.Article{}, 0, err
		}
		a.Content = res.Body
		a.CallToAction = res.CallToAction
		a.TitleSEOOptimized = res.SEOTitle
		a.OneSentenceDescription = res.Description
		if t, err := p.Rewriter.Retitle(ctx, cand.Title, det.Content); err != nil {
			slog.Warn("pipeline: retitle failed, keeping title", "url", cand.NewsURL, "err", err)
		} else {
			a.Title = t
		}
	}

	ok, err := p.Store.Insert(ctx, a)
	if err != nil {
		return model.Article{}, 0, err
	}
	if !ok {
		// Lost the check-then-act race: the URL was inserted since the gate
		// check. Already processed, not an error.
		return model.Article{}, OutcomeDuplicateURL, nil
	}

	if related && p.Indexer != nil {
		if err := p.Indexer.Upsert(ctx, a.NewsURL, a.Title, a.Content, a.PostedTime); err != nil {
			// The record is persisted; the index is eventually consistent.
			slog.Error("pipeline: vector upsert failed", "url", a.NewsURL, "err", err)
		}
	}

	if !related {
		return a, OutcomeNotRelated, nil
	}
	return a, OutcomeAccepted, nil
}
