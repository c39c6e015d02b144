// Package gemini adapts the Google Gemini embeddings API to the engine's
// encoder contract. It is the lighter of the two provider adapters: a
// per-call deadline and one backoff retry, without the breaker and limiter
// machinery of the OpenAI-compatible path.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/hirelens/matchdex/internal/domain"
	"github.com/hirelens/matchdex/internal/metrics"
)

const (
	defaultModel = "gemini-embedding-001"

	// DefaultTimeout is the per-call deadline on one provider request.
	DefaultTimeout = 10 * time.Second

	retryBaseDelay = 500 * time.Millisecond
)

// Config holds the Gemini provider settings.
type Config struct {
	APIKey     string
	Model      string // defaults to gemini-embedding-001
	Dimensions int
	Provider   string // metrics label, defaults to "gemini"

	// Timeout is the per-call deadline; zero selects DefaultTimeout.
	Timeout time.Duration

	Logger *zap.Logger
}

// Encoder is an embedding provider backed by the Gemini API.
type Encoder struct {
	client     *genai.Client
	model      string
	dimensions int
	provider   string
	timeout    time.Duration
	logger     *zap.Logger
}

var (
	_ domain.Encoder      = (*Encoder)(nil)
	_ domain.BatchEncoder = (*Encoder)(nil)
)

// NewEncoder creates a Gemini embedding provider.
func NewEncoder(ctx context.Context, cfg *Config) (*Encoder, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required: %w", domain.ErrConfiguration)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}
	provider := cfg.Provider
	if provider == "" {
		provider = "gemini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Encoder{
		client:     client,
		model:      model,
		dimensions: cfg.Dimensions,
		provider:   provider,
		timeout:    timeout,
		logger:     logger,
	}, nil
}

// Encode implements domain.Encoder. The Gemini embeddings endpoint reports
// no token usage, so both token counts stay zero.
func (e *Encoder) Encode(ctx context.Context, text string) (domain.EncodeResult, error) {
	vectors, err := e.embed(ctx, []string{text})
	if err != nil {
		return domain.EncodeResult{}, err
	}
	return domain.EncodeResult{Vector: vectors[0]}, nil
}

// BatchEncode implements domain.BatchEncoder with a single provider call.
func (e *Encoder) BatchEncode(ctx context.Context, texts []string) (domain.BatchEncodeResult, error) {
	if len(texts) == 0 {
		return domain.BatchEncodeResult{}, nil
	}
	vectors, err := e.embed(ctx, texts)
	if err != nil {
		return domain.BatchEncodeResult{}, err
	}
	return domain.BatchEncodeResult{Vectors: vectors}, nil
}

func (e *Encoder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = &genai.Content{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: t}},
		}
	}

	var config *genai.EmbedContentConfig
	if e.dimensions > 0 {
		dim := int32(e.dimensions)
		config = &genai.EmbedContentConfig{OutputDimensionality: &dim}
	}

	var lastErr error
	for attempt := 0; attempt <= 1; attempt++ {
		if attempt > 0 {
			backoff := retryBaseDelay + time.Duration(rand.Int63n(int64(retryBaseDelay/5)))
			e.logger.Warn("Retrying embedding request",
				zap.Duration("backoff", backoff), zap.Error(lastErr))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		vectors, err := e.invoke(ctx, contents, config)
		if err == nil {
			return vectors, nil
		}
		lastErr = err
		if !isRetryable(err) {
			break
		}
	}
	return nil, lastErr
}

func (e *Encoder) invoke(ctx context.Context, contents []*genai.Content, config *genai.EmbedContentConfig) ([][]float32, error) {
	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.client.Models.EmbedContent(cctx, e.model, contents, config)
	duration := time.Since(start)

	if err != nil {
		metrics.EncoderRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		return nil, e.classify(ctx, err)
	}

	if len(resp.Embeddings) != len(contents) {
		metrics.EncoderRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
		e.countError("count_mismatch")
		return nil, fmt.Errorf("embedding response has %d vectors for %d inputs: %w",
			len(resp.Embeddings), len(contents), domain.ErrEncoder)
	}

	vectors := make([][]float32, len(resp.Embeddings))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			metrics.EncoderRequestsTotal.WithLabelValues(e.provider, e.model, "error").Inc()
			e.countError("empty_response")
			return nil, fmt.Errorf("empty embedding at index %d: %w", i, domain.ErrEncoder)
		}
		vectors[i] = emb.Values
	}

	metrics.EncoderRequestsTotal.WithLabelValues(e.provider, e.model, "success").Inc()
	metrics.EncoderRequestDuration.WithLabelValues(e.provider, e.model).Observe(duration.Seconds())
	return vectors, nil
}

func (e *Encoder) classify(parent context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil:
		e.countError("timeout")
		return fmt.Errorf("embedding request exceeded %s: %w", e.timeout, domain.ErrEncoderTimeout)
	case parent.Err() != nil:
		return parent.Err()
	default:
		e.countError("api_error")
		return fmt.Errorf("embedding request failed: %v: %w", err, domain.ErrEncoder)
	}
}

func (e *Encoder) countError(errorType string) {
	metrics.EncoderErrorsTotal.WithLabelValues(e.provider, e.model, errorType).Inc()
}

// isRetryable limits the single retry to failures that plausibly clear on
// their own. SDK-specific error codes are deliberately not inspected.
func isRetryable(err error) bool {
	if errors.Is(err, domain.ErrEncoderTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
