package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"crashwire/internal/model"
)

// Client posts accepted articles to the downstream endpoint. Delivery is
// best-effort: the pipeline logs a failure and moves on, persisted state is
// never rolled back.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
}

// New creates a webhook client.
func New(endpoint, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		token:    token,
		http:     &http.Client{Timeout: timeout},
	}
}

type payload struct {
	Items []model.Article `json:"items"`
}

// Notify submits the batch in a single POST with bearer auth.
func (c *Client) Notify(ctx context.Context, items []model.Article) error {
	if c == nil {
		return errors.New("nil webhook client")
	}
	body, err := json.Marshal(payload{Items: items})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("webhook notify failed: status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
