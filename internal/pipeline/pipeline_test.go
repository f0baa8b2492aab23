package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"crashwire/internal/model"
	"crashwire/internal/rewrite"
	"crashwire/internal/source"
)

type fakeStore struct {
	records     map[string]model.Article
	existsErr   error
	lieOnExists bool // report unseen even when a record exists, to force the insert race
	existsCalls int
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: map[string]model.Article{}}
}

func (s *fakeStore) Exists(_ context.Context, url string) (bool, error) {
	s.existsCalls++
	if s.existsErr != nil {
		return false, s.existsErr
	}
	if s.lieOnExists {
		return false, nil
	}
	_, ok := s.records[url]
	return ok, nil
}

func (s *fakeStore) Insert(_ context.Context, a model.Article) (bool, error) {
	if _, ok := s.records[a.NewsURL]; ok {
		return false, nil
	}
	a.Wordcount = len(strings.Fields(a.Content))
	s.records[a.NewsURL] = a
	return true, nil
}

type fakeExtractor struct {
	name        string
	cands       []model.Candidate
	details     map[string]model.Detail
	discoverErr error
	detailCalls int
}

func (e *fakeExtractor) Name() string { return e.name }

func (e *fakeExtractor) Discover(_ context.Context) ([]model.Candidate, error) {
	if e.discoverErr != nil {
		return nil, e.discoverErr
	}
	return e.cands, nil
}

func (e *fakeExtractor) FetchDetail(_ context.Context, url string) (model.Detail, error) {
	e.detailCalls++
	return e.details[url], nil
}

type fakeClassifier struct {
	related map[string]bool // by title
	err     error
	calls   int
}

func (c *fakeClassifier) Classify(_ context.Context, title, _, _ string) (bool, error) {
	c.calls++
	if c.err != nil {
		return false, c.err
	}
	return c.related[title], nil
}

type fakeRewriter struct {
	calls      int
	failTitles map[string]bool
	retitle    string
	retitleErr error
}

func (r *fakeRewriter) Rewrite(_ context.Context, title, _ string) (rewrite.Result, error) {
	r.calls++
	if r.failTitles[title] {
		return rewrite.Result{}, errors.New("rewrite blew up")
	}
	return rewrite.Result{
		Body:         "<p>rewritten</p>",
		CallToAction: "<h2>Call us</h2>",
		SEOTitle:     "seo: " + title,
		Description:  "one sentence about " + title,
	}, nil
}

func (r *fakeRewriter) Retitle(_ context.Context, title, _ string) (string, error) {
	if r.retitleErr != nil {
		return "", r.retitleErr
	}
	if r.retitle != "" {
		return r.retitle, nil
	}
	return title, nil
}

type fakeIndexer struct {
	upserts []string
	err     error
}

func (ix *fakeIndexer) Upsert(_ context.Context, newsURL, _, _, _ string) error {
	if ix.err != nil {
		return ix.err
	}
	ix.upserts = append(ix.upserts, newsURL)
	return nil
}

type fakeNotifier struct {
	batches [][]model.Article
	err     error
}

func (n *fakeNotifier) Notify(_ context.Context, items []model.Article) error {
	if n.err != nil {
		return n.err
	}
	n.batches = append(n.batches, items)
	return nil
}

func srcs(es ...*fakeExtractor) []source.Extractor {
	out := make([]source.Extractor, len(es))
	for i, e := range es {
		out[i] = e
	}
	return out
}

func TestRunAcceptedEndToEnd(t *testing.T) {
	src := &fakeExtractor{
		name:  "fake",
		cands: []model.Candidate{{Title: "Crash on I-5", NewsURL: "https://x.test/a"}},
		details: map[string]model.Detail{
			"https://x.test/a": {Author: "Jo Reporter", PostedTime: "2025-01-01 10:00:00", Content: "Two cars collided."},
		},
	}
	store := newFakeStore()
	cls := &fakeClassifier{related: map[string]bool{"Crash on I-5": true}}
	rw := &fakeRewriter{retitle: "Two Hurt in I-5 Collision"}
	ix := &fakeIndexer{}
	nf := &fakeNotifier{}

	p := &Pipeline{Sources: srcs(src), Store: store, Classifier: cls, Rewriter: rw, Indexer: ix, Notifier: nf}
	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if sum.Accepted != 1 || sum.Failed != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	a, ok := store.records["https://x.test/a"]
	if !ok {
		t.Fatalf("record not persisted")
	}
	if !a.IsRelated {
		t.Errorf("is_related = false")
	}
	if a.Content != "<p>rewritten</p>" {
		t.Errorf("content = %q, want rewritten body", a.Content)
	}
	if a.Title != "Two Hurt in I-5 Collision" {
		t.Errorf("retitle not applied: %q", a.Title)
	}
	if a.TitleSEOOptimized == "" || a.CallToAction == "" || a.OneSentenceDescription == "" {
		t.Errorf("accepted article has empty AI fields: %+v", a)
	}
	if a.Wordcount != len(strings.Fields(a.Content)) {
		t.Errorf("wordcount = %d for content %q", a.Wordcount, a.Content)
	}
	if len(ix.upserts) != 1 || ix.upserts[0] != "https://x.test/a" {
		t.Errorf("vector upserts = %v", ix.upserts)
	}
	if len(nf.batches) != 1 || len(nf.batches[0]) != 1 {
		t.Fatalf("webhook batches = %v", nf.batches)
	}
	if !sum.Notified {
		t.Errorf("summary not marked notified")
	}
}

func TestRunSkipsSeenURLBeforeAnyWork(t *testing.T) {
	src := &fakeExtractor{
		name:  "fake",
		cands: []model.Candidate{{Title: "Old news", NewsURL: "https://x.test/seen"}},
	}
	store := newFakeStore()
	store.records["https://x.test/seen"] = model.Article{NewsURL: "https://x.test/seen"}
	cls := &fakeClassifier{}
	rw := &fakeRewriter{}
	nf := &fakeNotifier{}

	p := &Pipeline{Sources: srcs(src), Store: store, Classifier: cls, Rewriter: rw, Notifier: nf}
	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if sum.SkippedDuplicateURL != 1 {
		t.Errorf("summary = %+v", sum)
	}
	if src.detailCalls != 0 {
		t.Errorf("detail fetched for a seen URL")
	}
	if cls.calls != 0 {
		t.Errorf("LLM called for a seen URL")
	}
	if rw.calls != 0 {
		t.Errorf("rewrite called for a seen URL")
	}
	if len(nf.batches) != 0 {
		t.Errorf("webhook called with nothing accepted")
	}
	if len(store.records) != 1 {
		t.Errorf("records = %d, want the preexisting one only", len(store.records))
	}
}

func TestRunNotRelated(t *testing.T) {
	src := &fakeExtractor{
		name:  "fake",
		cands: []model.Candidate{{Title: "Local bake sale", NewsURL: "https://x.test/b"}},
		details: map[string]model.Detail{
			"https://x.test/b": {Content: "Cookies were sold."},
		},
	}
	store := newFakeStore()
	cls := &fakeClassifier{related: map[string]bool{}}
	rw := &fakeRewriter{}
	ix := &fakeIndexer{}
	nf := &fakeNotifier{}

	p := &Pipeline{Sources: srcs(src), Store: store, Classifier: cls, Rewriter: rw, Indexer: ix, Notifier: nf}
	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if sum.SkippedNotRelated != 1 || sum.Accepted != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	a, ok := store.records["https://x.test/b"]
	if !ok {
		t.Fatalf("rejected article must still be persisted")
	}
	if a.IsRelated {
		t.Errorf("is_related = true")
	}
	if a.TitleSEOOptimized != "" || a.CallToAction != "" || a.OneSentenceDescription != "" {
		t.Errorf("rejected article has AI fields: %+v", a)
	}
	if rw.calls != 0 {
		t.Errorf("rewrite called for a rejected article")
	}
	if len(ix.upserts) != 0 {
		t.Errorf("rejected article was indexed")
	}
	if len(nf.batches) != 0 {
		t.Errorf("rejected article reached the webhook")
	}
}

func TestRewriteFailureDoesNotDropSiblings(t *testing.T) {
	src := &fakeExtractor{
		name: "fake",
		cands: []model.Candidate{
			{Title: "first", NewsURL: "https://x.test/1"},
			{Title: "second", NewsURL: "https://x.test/2"},
			{Title: "third", NewsURL: "https://x.test/3"},
		},
		details: map[string]model.Detail{
			"https://x.test/1": {Content: "a"},
			"https://x.test/2": {Content: "b"},
			"https://x.test/3": {Content: "c"},
		},
	}
	store := newFakeStore()
	cls := &fakeClassifier{related: map[string]bool{"first": true, "second": true, "third": true}}
	rw := &fakeRewriter{failTitles: map[string]bool{"second": true}}
	nf := &fakeNotifier{}

	p := &Pipeline{Sources: srcs(src), Store: store, Classifier: cls, Rewriter: rw, Notifier: nf}
	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if sum.Accepted != 2 || sum.Failed != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if _, ok := store.records["https://x.test/2"]; ok {
		t.Errorf("failed article was persisted")
	}
	if len(nf.batches) != 1 || len(nf.batches[0]) != 2 {
		t.Errorf("webhook batches = %v", nf.batches)
	}
}

func TestSourceFailureDoesNotAbortSiblings(t *testing.T) {
	broken := &fakeExtractor{name: "broken", discoverErr: errors.New("listing 503")}
	working := &fakeExtractor{
		name:    "working",
		cands:   []model.Candidate{{Title: "ok", NewsURL: "https://x.test/ok"}},
		details: map[string]model.Detail{"https://x.test/ok": {Content: "fine"}},
	}
	store := newFakeStore()
	cls := &fakeClassifier{related: map[string]bool{"ok": true}}

	p := &Pipeline{Sources: srcs(broken, working), Store: store, Classifier: cls, Rewriter: &fakeRewriter{}}
	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if sum.Accepted != 1 {
		t.Fatalf("summary = %+v", sum)
	}
}

func TestInsertConflictIsNormalOutcome(t *testing.T) {
	// Gate says unseen, insert loses the race: exactly one winner, no error.
	src := &fakeExtractor{
		name:    "fake",
		cands:   []model.Candidate{{Title: "raced", NewsURL: "https://x.test/r"}},
		details: map[string]model.Detail{"https://x.test/r": {Content: "x"}},
	}
	store := newFakeStore()
	store.records["https://x.test/r"] = model.Article{NewsURL: "https://x.test/r", Title: "winner"}
	store.lieOnExists = true
	cls := &fakeClassifier{related: map[string]bool{}}
	nf := &fakeNotifier{}

	p := &Pipeline{Sources: srcs(src), Store: store, Classifier: cls, Rewriter: &fakeRewriter{}, Notifier: nf}
	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if sum.SkippedDuplicateURL != 1 || sum.Failed != 0 {
		t.Fatalf("summary = %+v", sum)
	}
	if store.records["https://x.test/r"].Title != "winner" {
		t.Errorf("existing record was modified on conflict")
	}
}

func TestGateErrorFailsOpen(t *testing.T) {
	src := &fakeExtractor{
		name:    "fake",
		cands:   []model.Candidate{{Title: "hiccup", NewsURL: "https://x.test/h"}},
		details: map[string]model.Detail{"https://x.test/h": {Content: "y"}},
	}
	store := newFakeStore()
	store.existsErr = errors.New("store timeout")
	cls := &fakeClassifier{related: map[string]bool{"hiccup": true}}

	p := &Pipeline{Sources: srcs(src), Store: store, Classifier: cls, Rewriter: &fakeRewriter{}}
	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if sum.Accepted != 1 {
		t.Fatalf("gate error should not block ingestion, summary = %+v", sum)
	}
}

func TestNotifyFailureLeavesStateAlone(t *testing.T) {
	src := &fakeExtractor{
		name:    "fake",
		cands:   []model.Candidate{{Title: "a", NewsURL: "https://x.test/n"}},
		details: map[string]model.Detail{"https://x.test/n": {Content: "z"}},
	}
	store := newFakeStore()
	cls := &fakeClassifier{related: map[string]bool{"a": true}}
	nf := &fakeNotifier{err: errors.New("downstream 500")}

	p := &Pipeline{Sources: srcs(src), Store: store, Classifier: cls, Rewriter: &fakeRewriter{}, Notifier: nf}
	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("webhook failure must not fail the run: %v", err)
	}
	if sum.Notified {
		t.Errorf("summary marked notified after failure")
	}
	if _, ok := store.records["https://x.test/n"]; !ok {
		t.Errorf("persisted record lost after webhook failure")
	}
}

func TestIndexerFailureKeepsArticleAccepted(t *testing.T) {
	src := &fakeExtractor{
		name:    "fake",
		cands:   []model.Candidate{{Title: "a", NewsURL: "https://x.test/i"}},
		details: map[string]model.Detail{"https://x.test/i": {Content: "z"}},
	}
	store := newFakeStore()
	cls := &fakeClassifier{related: map[string]bool{"a": true}}
	ix := &fakeIndexer{err: errors.New("index down")}
	nf := &fakeNotifier{}

	p := &Pipeline{Sources: srcs(src), Store: store, Classifier: cls, Rewriter: &fakeRewriter{}, Indexer: ix, Notifier: nf}
	sum, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if sum.Accepted != 1 || len(nf.batches) != 1 {
		t.Fatalf("index outage dropped the article: %+v", sum)
	}
}
