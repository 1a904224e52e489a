package embedding

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrDimensionMismatch is returned when the model produces vectors of an unexpected size.
var ErrDimensionMismatch = errors.New("embedding dimension mismatch")

// Config configures an OpenAI-compatible embeddings endpoint.
type Config struct {
	Host       string // Host is the API base URL, e.g. http://localhost:11434/v1.
	Model      string // Model is the embedding model name.
	Token      string // Token authenticates against the API. Local servers accept any value.
	Dimensions int    // Dimensions is the expected vector length.
}

// normalizeHost appends the /v1 suffix that OpenAI-compatible servers expect.
func normalizeHost(host string) string {
	host = strings.TrimSuffix(host, "/")
	if host != "" && !strings.HasSuffix(host, "/v1") {
		host += "/v1"
	}
	return host
}

// Client embeds text through an OpenAI-compatible API such as Ollama.
type Client struct {
	embedder   embeddings.Embedder
	dimensions int
	logger     *slog.Logger
}

// NewClient creates a Client from cfg.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	const op = "embedding.NewClient"

	if cfg.Model == "" {
		return nil, fmt.Errorf("%s: model is required", op)
	}

	token := cfg.Token
	if token == "" {
		token = "none"
	}

	llm, err := openai.New(
		openai.WithBaseURL(normalizeHost(cfg.Host)),
		openai.WithToken(token),
		openai.WithEmbeddingModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create client: %w", op, err)
	}

	embedder, err := embeddings.NewEmbedder(llm, embeddings.WithStripNewLines(true))
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create embedder: %w", op, err)
	}

	return &Client{
		embedder:   embedder,
		dimensions: cfg.Dimensions,
		logger:     logger.With(slog.String("component", "embedder"), slog.String("model", cfg.Model)),
	}, nil
}

// Factory returns a Factory that builds a Client on first use.
func (cfg Config) Factory(logger *slog.Logger) Factory {
	return func(_ context.Context) (Embedder, error) {
		logger.Info("initializing embedder", slog.String("host", cfg.Host), slog.String("model", cfg.Model))
		return NewClient(cfg, logger)
	}
}

// Embed generates the embedding of a single text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	const op = "embedding.Client.Embed"

	v, err := c.embedder.EmbedQuery(ctx, text)
	if err != nil {
		c.logger.Error("failed to generate embedding", slog.Any("err", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if c.dimensions > 0 && len(v) != c.dimensions {
		return nil, fmt.Errorf("%s: got %d, want %d: %w", op, len(v), c.dimensions, ErrDimensionMismatch)
	}

	return v, nil
}
