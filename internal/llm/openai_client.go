// ABOUTME: OpenAI embedding provider for product text
// ABOUTME: Makes one call per input and classifies failures as transient or permanent
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/harper/catmatch/internal/models"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// DefaultTimeout bounds a single embedding request
	DefaultTimeout = 30 * time.Second
)

// retryHintPattern extracts "Please try again in 1.5s" style hints from 429 messages
var retryHintPattern = regexp.MustCompile(`(?i)try again in ((?:\d+(?:\.\d+)?(?:ms|h|m|s))+)`)

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel openai.EmbeddingModel
	Timeout        time.Duration
	HTTPClient     *http.Client
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:         apiKey,
		EmbeddingModel: DefaultEmbeddingModel,
		Timeout:        DefaultTimeout,
	}
}

// OpenAIClient embeds text through the OpenAI embeddings endpoint
type OpenAIClient struct {
	client         *openai.Client
	embeddingModel openai.EmbeddingModel
	timeout        time.Duration
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	oc := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		oc.BaseURL = config.BaseURL
	}
	if config.HTTPClient != nil {
		oc.HTTPClient = config.HTTPClient
	}

	model := config.EmbeddingModel
	if model == "" {
		model = DefaultEmbeddingModel
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(oc),
		embeddingModel: model,
		timeout:        timeout,
	}, nil
}

// Model returns the embedding model name; the embedding cache keys on it
func (c *OpenAIClient) Model() string {
	return string(c.embeddingModel)
}

// Embed returns the embedding for one input. It does not retry: failures come
// back as *models.ProviderError so the caller can apply a shared backoff.
func (c *OpenAIClient) Embed(ctx context.Context, text string) (models.Vector, error) {
	if strings.TrimSpace(text) == "" {
		return nil, &models.ProviderError{Body: "empty input", Err: models.ErrMissingField}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: c.embeddingModel,
	})
	if err != nil {
		// Caller cancellation is not a provider failure
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, classifyError(err)
	}

	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, &models.ProviderError{StatusCode: http.StatusOK, Body: "no embeddings returned"}
	}

	// Convert []float32 to []float64
	embedding32 := resp.Data[0].Embedding
	embedding64 := make(models.Vector, len(embedding32))
	for i, v := range embedding32 {
		embedding64[i] = float64(v)
	}
	return embedding64, nil
}

// classifyError maps go-openai errors onto the provider error taxonomy
func classifyError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		pe := fromStatus(apiErr.HTTPStatusCode, apiErr.Message, err)
		// An exhausted quota also comes back as 429 but will not recover by waiting
		if code, ok := apiErr.Code.(string); ok && code == "insufficient_quota" {
			pe.Transient = false
			pe.RateLimited = false
		}
		return pe
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fromStatus(reqErr.HTTPStatusCode, reqErr.HTTPStatus, err)
	}

	// Timeouts and connection failures never reached a response
	return &models.ProviderError{Transient: true, Err: err}
}

func fromStatus(status int, message string, err error) *models.ProviderError {
	pe := &models.ProviderError{StatusCode: status, Body: message, Err: err}
	switch {
	case status == http.StatusTooManyRequests:
		pe.Transient = true
		pe.RateLimited = true
		pe.RetryAfter = ParseRetryHint(message)
	case status == http.StatusRequestTimeout, status >= 500:
		pe.Transient = true
	}
	return pe
}

// ParseRetryHint reads a suggested delay out of a provider message; zero when absent
func ParseRetryHint(message string) time.Duration {
	m := retryHintPattern.FindStringSubmatch(message)
	if m == nil {
		return 0
	}
	d, err := time.ParseDuration(m[1])
	if err != nil || d < 0 {
		return 0
	}
	return d
}
