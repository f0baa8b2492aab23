package classify

import (
	"context"
	"fmt"
	"log/slog"

	"crashwire/internal/ai"
	"crashwire/internal/pinecone"
)

// Model is the slice of the AI client the classifier needs.
type Model interface {
	CompleteJSON(ctx context.Context, prompt string, out any) error
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SimilaritySearcher is the read side of the vector index.
type SimilaritySearcher interface {
	Query(ctx context.Context, values []float32, topK int) ([]pinecone.Match, error)
}

// Classifier decides whether an article is relevant car-accident news and not
// a near-duplicate of one already accepted under a different URL.
type Classifier struct {
	AI        Model
	Search    SimilaritySearcher // nil disables the novelty check
	Threshold float64            // similarity score above which a duplicate check runs
}

type yesNo struct {
	Answer string `json:"answer"`
}

const relevancePrompt = `I have a news article and need to determine if it is about car accidents in California.
###
Title: %s

Content: %s
###
Please return the result in a single JSON format: {"answer": "yes" or "no"}.
Respond with "yes" if the article is about car accidents in California; otherwise, respond with "no".
Ensure the response is in lowercase and properly formatted.
If you are not sure if the accident occurred in California, check to see if it is only about a car accident.`

const duplicatePrompt = `Please check if the two news are the same:
First News:
News Title: %s
News Content: %s
Posted Time: %s

=======================
Second News:
News Title: %s
News Content: %s
Posted Time: %s

Please return the result in a single JSON format: {"answer": "yes" or "no"}.`

// Classify reports whether the article is both relevant and new. Relevance is
// fail-closed: anything but a clean "yes" rejects. An LLM transport failure
// is returned to the caller, who skips the article. Similarity-query failures
// degrade to "no duplicate found" so an index outage over-accepts instead of
// silently dropping articles.
func (c *Classifier) Classify(ctx context.Context, title, content, postedTime string) (bool, error) {
	related, err := c.isRelated(ctx, title, content)
	if err != nil {
		return false, err
	}
	if !related {
		return false, nil
	}
	dup, err := c.alreadyIndexed(ctx, title, content, postedTime)
	if err != nil {
		return false, err
	}
	return !dup, nil
}

func (c *Classifier) isRelated(ctx context.Context, title, content string) (bool, error) {
	var out yesNo
	if err := c.AI.CompleteJSON(ctx, fmt.Sprintf(relevancePrompt, title, content), &out); err != nil {
		return false, fmt.Errorf("relevance check: %w", err)
	}
	return out.Answer == "yes", nil
}

// alreadyIndexed embeds the candidate, pulls the nearest indexed neighbor and,
// when the similarity score clears the threshold, asks the LLM whether the two
// report the same news item.
func (c *Classifier) alreadyIndexed(ctx context.Context, title, content, postedTime string) (bool, error) {
	if c.Search == nil {
		return false, nil
	}
	threshold := c.Threshold
	if threshold <= 0 {
		threshold = 0.7
	}
	vec, err := c.AI.Embed(ctx, ai.EmbeddingText(title, content))
	if err != nil {
		return false, fmt.Errorf("novelty check: %w", err)
	}
	matches, err := c.Search.Query(ctx, vec, 1)
	if err != nil {
		slog.Error("classify: similarity query failed, treating as new", "err", err)
		return false, nil
	}
	var nearest *pinecone.Match
	for i := range matches {
		if matches[i].Score > threshold {
			nearest = &matches[i]
			break
		}
	}
	if nearest == nil {
		return false, nil
	}
	prompt := fmt.Sprintf(duplicatePrompt,
		title, content, postedTime,
		nearest.Metadata.Title, nearest.Metadata.Content, nearest.Metadata.PostedTime)
	var out yesNo
	if err := c.AI.CompleteJSON(ctx, prompt, &out); err != nil {
		return false, fmt.Errorf("duplicate check: %w", err)
	}
	return out.Answer == "yes", nil
}
