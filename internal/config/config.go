package config

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// OpenAIConfig holds credentials and model names for the LLM calls.
type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	Model          string `mapstructure:"model"`
	EmbeddingModel string `mapstructure:"embedding_model"`
	BaseURL        string `mapstructure:"base_url"` // optional, for proxies
}

// PineconeConfig holds the vector index connection settings.
type PineconeConfig struct {
	BaseURL             string  `mapstructure:"base_url"` // index host, e.g. https://news-xxxxx.svc.us-east-1.pinecone.io
	APIKey              string  `mapstructure:"api_key"`
	Namespace           string  `mapstructure:"namespace"`
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
}

// ScrapeConfig controls page fetching.
type ScrapeConfig struct {
	ProxyKey  string `mapstructure:"proxy_key"` // ScraperAPI key; direct fetch when empty
	Timeout   string `mapstructure:"timeout"`   // duration string, e.g. "20s"
	UserAgent string `mapstructure:"user_agent"`
}

// WebhookConfig points at the downstream endpoint that receives accepted articles.
type WebhookConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Token    string `mapstructure:"token"`
}

// SourcesConfig selects which extractors run and bounds pagination.
type SourcesConfig struct {
	Enabled   []string `mapstructure:"enabled"` // empty means all
	PageLimit int      `mapstructure:"page_limit"`
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Redis    RedisConfig    `mapstructure:"redis"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Pinecone PineconeConfig `mapstructure:"pinecone"`
	Scrape   ScrapeConfig   `mapstructure:"scrape"`
	Webhook  WebhookConfig  `mapstructure:"webhook"`
	Sources  SourcesConfig  `mapstructure:"sources"`
}

// FillDefaults applies default values if not provided.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o"
	}
	if c.OpenAI.EmbeddingModel == "" {
		c.OpenAI.EmbeddingModel = "text-embedding-ada-002"
	}
	if c.Pinecone.SimilarityThreshold == 0 {
		c.Pinecone.SimilarityThreshold = 0.7
	}
	if c.Scrape.Timeout == "" {
		c.Scrape.Timeout = "20s"
	}
	if c.Scrape.UserAgent == "" {
		c.Scrape.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	}
	if c.Sources.PageLimit == 0 {
		c.Sources.PageLimit = 3
	}
}
