package rewrite

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"
)

// Model is the slice of the AI client the rewriter needs.
type Model interface {
	CompleteJSON(ctx context.Context, prompt string, out any) error
}

// Result is the structured output of a rewrite call.
type Result struct {
	Body         string // rewritten article, HTML
	CallToAction string // call-to-action section, HTML
	SEOTitle     string
	Description  string // one-sentence description
}

//go:embed prompt.tmpl
var promptTpl string

var compiled = template.Must(template.New("rewrite").Parse(promptTpl))

type promptData struct {
	Title   string
	Content string
}

// Rewriter turns an accepted article into the firm's branded form.
type Rewriter struct {
	AI Model
}

type rewriteResponse struct {
	Body         string `json:"Rewritten article"`
	CallToAction string `json:"Call to action"`
	SEOTitle     string `json:"SEO-optimized title"`
	Description  string `json:"One-sentence description"`
}

// Rewrite asks the LLM for the four branded fields. A response missing any of
// them is an error; rewrite failures are fatal for the article and are never
// retried.
func (r *Rewriter) Rewrite(ctx context.Context, title, content string) (Result, error) {
	var buf bytes.Buffer
	if err := compiled.Execute(&buf, promptData{Title: title, Content: content}); err != nil {
		return Result{}, err
	}
	var resp rewriteResponse
	if err := r.AI.CompleteJSON(ctx, buf.String(), &resp); err != nil {
		return Result{}, fmt.Errorf("rewrite: %w", err)
	}
	for key, val := range map[string]string{
		"Rewritten article":        resp.Body,
		"Call to action":           resp.CallToAction,
		"SEO-optimized title":      resp.SEOTitle,
		"One-sentence description": resp.Description,
	} {
		if strings.TrimSpace(val) == "" {
			return Result{}, fmt.Errorf("rewrite: response missing %q", key)
		}
	}
	return Result{
		Body:         resp.Body,
		CallToAction: resp.CallToAction,
		SEOTitle:     resp.SEOTitle,
		Description:  resp.Description,
	}, nil
}

const retitlePrompt = `Rewrite the following news headline into a short, punchy title for a personal injury law firm's news feed.
Keep the facts, drop filler words, and do not exceed 90 characters.

Headline: %s

Article:
%s

Please return the result in a single JSON format: {"title": "new title here"}.`

type retitleResponse struct {
	Title string `json:"title"`
}

// Retitle derives a punchier display title from the content. Applied at most
// once per article; the caller keeps the previous title when this fails.
func (r *Rewriter) Retitle(ctx context.Context, title, content string) (string, error) {
	var resp retitleResponse
	if err := r.AI.CompleteJSON(ctx, fmt.Sprintf(retitlePrompt, title, content), &resp); err != nil {
		return "", fmt.Errorf("retitle: %w", err)
	}
	if strings.TrimSpace(resp.Title) == "" {
		return "", fmt.Errorf("retitle: empty title in response")
	}
	return strings.TrimSpace(resp.Title), nil
}
