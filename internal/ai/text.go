package ai

import "fmt"

// EmbeddingText is the canonical text embedded for an article. The indexer
// and the novelty check must agree on this byte-for-byte or similarity scores
// between runs are meaningless.
func EmbeddingText(title, content string) string {
	return fmt.Sprintf("Title: %s\n\nContent: %s", title, content)
}
