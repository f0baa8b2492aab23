package model

// Article is the single record the pipeline produces. The JSON field names are
// the wire format shared by the key-value store and the downstream webhook.
type Article struct {
	NewsURL                string `json:"news_url"`
	Title                  string `json:"title"`
	Author                 string `json:"author"`
	PostedTime             string `json:"posted_time"`
	Content                string `json:"content"`
	IsRelated              bool   `json:"is_related"`
	TitleSEOOptimized      string `json:"title_seo_optimized"`
	CallToAction           string `json:"call_to_action"`
	OneSentenceDescription string `json:"one_sentence_description"`
	Wordcount              int    `json:"wordcount"`
	Timestamp              string `json:"timestamp"`
}

// Candidate is a discovered article reference, not yet fetched.
type Candidate struct {
	Title   string `json:"title"`
	NewsURL string `json:"news_url"`
}

// Detail holds the fields a detail-page fetch adds to a candidate.
type Detail struct {
	Author     string
	PostedTime string
	Content    string
}
