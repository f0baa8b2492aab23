package index

import (
	"context"
	"fmt"

	"crashwire/internal/ai"
	"crashwire/internal/pinecone"
)

// Embedder is the slice of the AI client the indexer needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Upserter is the write side of the vector store.
type Upserter interface {
	Upsert(ctx context.Context, id string, values []float32, md pinecone.Metadata) error
}

// Indexer mirrors accepted articles into the vector store so future novelty
// checks can find them. Only accepted articles are ever indexed.
type Indexer struct {
	AI    Embedder
	Store Upserter
}

// Upsert embeds the article and writes it under "pg-<news_url>". One upsert
// per accepted article, no batching, no delete path.
func (ix *Indexer) Upsert(ctx context.Context, newsURL, title, content, postedTime string) error {
	vec, err := ix.AI.Embed(ctx, ai.EmbeddingText(title, content))
	if err != nil {
		return fmt.Errorf("index: embed: %w", err)
	}
	if err := ix.Store.Upsert(ctx, "pg-"+newsURL, vec, pinecone.Metadata{
		Title:      title,
		Content:    content,
		PostedTime: postedTime,
	}); err != nil {
		return fmt.Errorf("index: upsert: %w", err)
	}
	return nil
}
