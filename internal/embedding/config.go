package embedding

import (
	"os"
	"strings"
	"time"
)

// Config holds configuration for the embeddings client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// DefaultBaseURL is the default OpenAI API endpoint.
const DefaultBaseURL = "https://api.openai.com/v1"

// DefaultModel matches the model the opinion embeddings were produced with.
// Vectors from a different model are not comparable, so changing this
// requires re-embedding every opinion.
const DefaultModel = "text-embedding-3-small"

// LoadFromEnv loads embeddings client configuration from environment variables.
//
// Environment variables:
//   - OPENAI_API_KEY: API key (required for live embedding)
//   - OPENAI_BASE_URL: API endpoint (default: https://api.openai.com/v1)
//   - OPENAI_EMBEDDING_MODEL: embedding model (default: text-embedding-3-small)
func LoadFromEnv() Config {
	baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	model := strings.TrimSpace(os.Getenv("OPENAI_EMBEDDING_MODEL"))
	if model == "" {
		model = DefaultModel
	}

	return Config{
		BaseURL: baseURL,
		APIKey:  os.Getenv("OPENAI_API_KEY"),
		Model:   model,
		Timeout: 30 * time.Second,
	}
}

// Validate checks that the configuration can produce a working client.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}
