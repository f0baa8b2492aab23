package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client is a minimal HTTP client for a Pinecone serverless index.
// baseURL is the index host, e.g. "https://news-xxxxx.svc.us-east-1.pinecone.io".
type Client struct {
	baseURL   string
	apiKey    string
	namespace string
	http      *http.Client
}

// Metadata is the payload stored next to each vector. It is only ever read
// back during duplicate checks, never to reconstruct an article.
type Metadata struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	PostedTime string `json:"posted_time"`
}

// Match is a single ranked result from a similarity query.
type Match struct {
	ID       string   `json:"id"`
	Score    float64  `json:"score"`
	Metadata Metadata `json:"metadata"`
}

// New creates a new Pinecone client bound to a single namespace.
func New(baseURL, apiKey, namespace string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		namespace: namespace,
		http:      &http.Client{Timeout: timeout},
	}
}

type vector struct {
	ID       string    `json:"id"`
	Values   []float32 `json:"values"`
	Metadata Metadata  `json:"metadata"`
}

type upsertRequest struct {
	Vectors   []vector `json:"vectors"`
	Namespace string   `json:"namespace,omitempty"`
}

// Upsert writes one vector. Same-ID upserts overwrite, so the call is
// idempotent under key collision.
func (c *Client) Upsert(ctx context.Context, id string, values []float32, md Metadata) error {
	if c == nil {
		return errors.New("nil pinecone client")
	}
	body, err := json.Marshal(upsertRequest{
		Vectors:   []vector{{ID: id, Values: values, Metadata: md}},
		Namespace: c.namespace,
	})
	if err != nil {
		return err
	}
	return c.post(ctx, "/vectors/upsert", body, nil)
}

type queryRequest struct {
	Vector          []float32 `json:"vector"`
	TopK            int       `json:"topK"`
	Namespace       string    `json:"namespace,omitempty"`
	IncludeMetadata bool      `json:"includeMetadata"`
}

type queryResponse struct {
	Matches []Match `json:"matches"`
}

// Query returns the topK nearest neighbors within the client's namespace,
// ranked by similarity score.
func (c *Client) Query(ctx context.Context, values []float32, topK int) ([]Match, error) {
	if c == nil {
		return nil, errors.New("nil pinecone client")
	}
	body, err := json.Marshal(queryRequest{
		Vector:          values,
		TopK:            topK,
		Namespace:       c.namespace,
		IncludeMetadata: true,
	})
	if err != nil {
		return nil, err
	}
	var out queryResponse
	if err := c.post(ctx, "/query", body, &out); err != nil {
		return nil, err
	}
	return out.Matches, nil
}

func (c *Client) post(ctx context.Context, path string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("pinecone %s failed: status=%d body=%s", path, resp.StatusCode, string(b))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
