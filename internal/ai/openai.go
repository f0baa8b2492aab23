package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient wraps the OpenAI Chat Completions and Embeddings APIs.
// Every pipeline LLM call demands a strict JSON object, so the chat side is
// exposed as a single JSON-mode helper rather than free-text completion.
type OpenAIClient struct {
	client         *openai.Client
	model          string
	embeddingModel string
}

type Config struct {
	APIKey         string
	Model          string
	EmbeddingModel string
	BaseURL        string // optional
}

func NewOpenAI(cfg Config) *OpenAIClient {
	var c *openai.Client
	if cfg.BaseURL != "" {
		cc := openai.DefaultConfig(cfg.APIKey)
		cc.BaseURL = cfg.BaseURL
		c = openai.NewClientWithConfig(cc)
	} else {
		c = openai.NewClient(cfg.APIKey)
	}
	if cfg.Model == "" {
		panic("OpenAI model must be specified")
	}
	if cfg.EmbeddingModel == "" {
		panic("OpenAI embedding model must be specified")
	}
	return &OpenAIClient{client: c, model: cfg.Model, embeddingModel: cfg.EmbeddingModel}
}

// CompleteJSON sends the prompt as a single user message in JSON mode and
// decodes the reply into out. A reply that is not the JSON shape out expects
// is an error; callers decide whether that is fatal for their article.
func (o *OpenAIClient) CompleteJSON(ctx context.Context, prompt string, out any) error {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 120*time.Second)
		defer cancel()
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		slog.Error("openai: chat completion error", "err", err)
		return err
	}
	if len(resp.Choices) == 0 {
		return errors.New("openai: empty completion")
	}
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), out); err != nil {
		return fmt.Errorf("openai: decode completion: %w", err)
	}
	return nil
}

// Embed returns the embedding vector for the text. Vector length is fixed by
// the configured embedding model (1536 for text-embedding-ada-002).
func (o *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 60*time.Second)
		defer cancel()
	}
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(o.embeddingModel),
	})
	if err != nil {
		slog.Error("openai: embedding error", "err", err)
		return nil, err
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("openai: empty embedding response")
	}
	return resp.Data[0].Embedding, nil
}
