package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"crashwire/internal/model"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by Get when no record exists for the URL.
var ErrNotFound = errors.New("article not found")

// ArticleStore persists articles keyed by news_url. Records are write-once:
// Insert is conditional on absence and nothing ever updates a stored record.
type ArticleStore struct {
	rdb *redis.Client
}

func NewArticleStore(rdb *redis.Client) *ArticleStore {
	return &ArticleStore{rdb: rdb}
}

func articleKey(url string) string {
	return "news:article:" + url
}

// stamp fills the server-side fields: wordcount from the final content and
// the UTC insertion time. Caller-supplied values for either are discarded.
func stamp(a model.Article, now time.Time) model.Article {
	a.Wordcount = len(strings.Fields(a.Content))
	a.Timestamp = now.UTC().Format("2006-01-02T15:04:05.000000Z")
	return a
}

// Insert writes the article if no record with the same news_url exists.
// Returns false on conflict, leaving the stored record untouched.
// wordcount and timestamp are stamped here, never taken from the caller.
func (s *ArticleStore) Insert(ctx context.Context, a model.Article) (bool, error) {
	a = stamp(a, time.Now())
	b, err := json.Marshal(a)
	if err != nil {
		return false, err
	}
	ok, err := s.rdb.SetNX(ctx, articleKey(a.NewsURL), b, 0).Result()
	if err != nil {
		return false, fmt.Errorf("insert article: %w", err)
	}
	return ok, nil
}

// Exists reports whether a record for the URL is already stored.
func (s *ArticleStore) Exists(ctx context.Context, url string) (bool, error) {
	n, err := s.rdb.Exists(ctx, articleKey(url)).Result()
	if err != nil {
		return false, fmt.Errorf("check article: %w", err)
	}
	return n > 0, nil
}

// Get retrieves a stored article by URL.
func (s *ArticleStore) Get(ctx context.Context, url string) (model.Article, error) {
	b, err := s.rdb.Get(ctx, articleKey(url)).Bytes()
	if err == redis.Nil {
		return model.Article{}, ErrNotFound
	}
	if err != nil {
		return model.Article{}, fmt.Errorf("get article: %w", err)
	}
	var a model.Article
	if err := json.Unmarshal(b, &a); err != nil {
		return model.Article{}, err
	}
	return a, nil
}

// AllRelated scans the full table and returns every article with is_related set.
func (s *ArticleStore) AllRelated(ctx context.Context) ([]model.Article, error) {
	var out []model.Article
	iter := s.rdb.Scan(ctx, 0, articleKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		b, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scan articles: %w", err)
		}
		var a model.Article
		if err := json.Unmarshal(b, &a); err != nil {
			return nil, err
		}
		if a.IsRelated {
			out = append(out, a)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan articles: %w", err)
	}
	return out, nil
}

// ClearAll deletes every stored article and returns how many were removed.
// Operator maintenance only; the pipeline never deletes.
func (s *ArticleStore) ClearAll(ctx context.Context) (int, error) {
	deleted := 0
	iter := s.rdb.Scan(ctx, 0, articleKey("*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("clear articles: %w", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("clear articles: %w", err)
	}
	return deleted, nil
}
