// Package openai adapts an OpenAI-compatible embeddings API to the engine's
// encoder contract, with a per-call deadline, a single backoff retry for
// transient failures, outbound rate limiting, and a circuit breaker.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"net/http"
	"sort"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hirelens/matchdex/internal/domain"
	"github.com/hirelens/matchdex/internal/metrics"
)

const (
	// DefaultTimeout is the per-call deadline on one provider request.
	DefaultTimeout = 10 * time.Second

	retryBaseDelay = 500 * time.Millisecond
)

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	User       string
	Provider   string // metrics label, defaults to "openai"

	// Timeout is the per-call deadline; zero selects DefaultTimeout.
	Timeout time.Duration

	// RequestsPerMinute throttles outbound calls; zero disables the limiter.
	RequestsPerMinute int
	Burst             int

	// DisableBreaker turns the circuit breaker off (on by default).
	DisableBreaker bool

	Logger *zap.Logger
}

// Encoder is an embedding provider using the OpenAI-compatible API.
type Encoder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	user       string
	provider   string
	timeout    time.Duration
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[openai.EmbeddingResponse]
	logger     *zap.Logger
}

var (
	_ domain.Encoder      = (*Encoder)(nil)
	_ domain.BatchEncoder = (*Encoder)(nil)
)

// NewEncoder creates an OpenAI-compatible embedding provider.
func NewEncoder(cfg *Config) *Encoder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	provider := cfg.Provider
	if provider == "" {
		provider = "openai"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerMinute > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(float64(cfg.RequestsPerMinute)/60.0), burst)
	}

	e := &Encoder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		user:       cfg.User,
		provider:   provider,
		timeout:    timeout,
		limiter:    limiter,
		logger:     logger,
	}
	if !cfg.DisableBreaker {
		e.breaker = gobreaker.NewCircuitBreaker[openai.EmbeddingResponse](gobreaker.Settings{
			Name:        "encoder-" + provider,
			MaxRequests: 3,
			Interval:    time.Minute,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 10 && failureRatio >= 0.6
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("Encoder circuit breaker state changed",
					zap.String("name", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		})
	}
	return e
}

// Encode implements domain.Encoder. Returns the vector and token usage.
func (e *Encoder) Encode(ctx context.Context, text string) (domain.EncodeResult, error) {
	resp, err := e.createEmbeddings(ctx, []string{text})
	if err != nil {
		return domain.EncodeResult{}, err
	}
	if len(resp.Data) == 0 {
		e.countError("empty_response")
		return domain.EncodeResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEncoder)
	}
	return domain.EncodeResult{
		Vector:       resp.Data[0].Embedding,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// BatchEncode implements domain.BatchEncoder. Vectors come back in input
// order regardless of how the provider ordered the response rows.
func (e *Encoder) BatchEncode(ctx context.Context, texts []string) (domain.BatchEncodeResult, error) {
	if len(texts) == 0 {
		return domain.BatchEncodeResult{}, nil
	}

	resp, err := e.createEmbeddings(ctx, texts)
	if err != nil {
		return domain.BatchEncodeResult{}, err
	}
	if len(resp.Data) != len(texts) {
		e.countError("count_mismatch")
		return domain.BatchEncodeResult{}, fmt.Errorf("embedding response has %d vectors for %d inputs: %w",
			len(resp.Data), len(texts), domain.ErrEncoder)
	}

	sort.Slice(resp.Data, func(i, j int) bool { return resp.Data[i].Index < resp.Data[j].Index })
	vectors := make([][]float32, len(texts))
	for i, d := range resp.Data {
		vectors[i] = d.Embedding
	}
	return domain.BatchEncodeResult{
		Vectors:      vectors,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}

// createEmbeddings runs one provider request with rate limiting and a single
// retry on transient failure.
func (e *Encoder) createEmbeddings(ctx context.Context, inputs []string) (openai.EmbeddingResponse, error) {
	if e.limiter != nil {
		if err := e.limiter.Wait(ctx); err != nil {
			e.countError("rate_limit_wait")
			return openai.EmbeddingResponse{}, fmt.Errorf("rate limiter: %v: %w", err, domain.ErrEncoderTimeout)
		}
	}

	req := openai.EmbeddingRequest{
		Input:          inputs,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
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
				return openai.EmbeddingResponse{}, ctx.Err()
			}
		}

		resp, err := e.invoke(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !isRetryable(err) {
			break
		}
	}
	return openai.EmbeddingResponse{}, lastErr
}

// invoke performs a single call under the per-call deadline.
func (e *Encoder) invoke(ctx context.Context, req openai.EmbeddingRequest) (openai.EmbeddingResponse, error) {
	cctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	resp, err := e.execute(cctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.EncoderRequestsTotal.WithLabelValues(e.provider, string(e.model), "error").Inc()
		return openai.EmbeddingResponse{}, e.classify(ctx, err)
	}

	metrics.EncoderRequestsTotal.WithLabelValues(e.provider, string(e.model), "success").Inc()
	metrics.EncoderRequestDuration.WithLabelValues(e.provider, string(e.model)).Observe(duration.Seconds())
	if resp.Usage.TotalTokens > 0 {
		metrics.EncoderTokensTotal.WithLabelValues(e.provider, string(e.model), "prompt").
			Add(float64(resp.Usage.PromptTokens))
		metrics.EncoderTokensTotal.WithLabelValues(e.provider, string(e.model), "total").
			Add(float64(resp.Usage.TotalTokens))
	}
	return resp, nil
}

func (e *Encoder) execute(ctx context.Context, req openai.EmbeddingRequest) (openai.EmbeddingResponse, error) {
	if e.breaker == nil {
		return e.client.CreateEmbeddings(ctx, req)
	}
	return e.breaker.Execute(func() (openai.EmbeddingResponse, error) {
		return e.client.CreateEmbeddings(ctx, req)
	})
}

// classify maps a transport failure onto the engine error taxonomy. parent is
// the caller's context, consulted to tell a missed per-call deadline apart
// from the caller giving up.
func (e *Encoder) classify(parent context.Context, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) && parent.Err() == nil:
		e.countError("timeout")
		return fmt.Errorf("embedding request exceeded %s: %w", e.timeout, domain.ErrEncoderTimeout)
	case parent.Err() != nil:
		return parent.Err()
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		e.countError("circuit_open")
		return fmt.Errorf("embedding circuit open: %w", domain.ErrEncoder)
	default:
		e.countError("api_error")
		return parseAPIError(err)
	}
}

func (e *Encoder) countError(errorType string) {
	metrics.EncoderErrorsTotal.WithLabelValues(e.provider, string(e.model), errorType).Inc()
}

// isRetryable keeps retries to failures that plausibly clear on their own:
// timeouts, network trouble, throttling, and 5xx responses.
func isRetryable(err error) bool {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return false
	}
	if errors.Is(err, domain.ErrEncoderTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return retryableStatus(apiErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return retryableStatus(reqErr.HTTPStatusCode)
	}
	return false
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrEncoder.
func parseAPIError(err error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("embedding API error %d: %s: %w",
			reqErr.HTTPStatusCode, detail, domain.ErrEncoder)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("embedding API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, domain.ErrEncoder)
	}

	return fmt.Errorf("embedding request failed: %v: %w", err, domain.ErrEncoder)
}

// extractDetail pulls the "detail" field from a JSON error body, the format
// used by several OpenAI-compatible gateways.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
