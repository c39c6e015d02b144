package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/hirelens/matchdex/internal/domain"
	"github.com/hirelens/matchdex/internal/metrics"
)

func TestMain(m *testing.M) {
	if err := metrics.Register(prometheus.NewRegistry()); err != nil {
		panic(err)
	}
	os.Exit(m.Run())
}

// embeddingResponse mirrors the OpenAI-compatible API embedding response.
type embeddingResponse struct {
	Object string         `json:"object"`
	Data   []embeddingRow `json:"data"`
	Model  string         `json:"model"`
	Usage  struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

type embeddingRow struct {
	Object    string    `json:"object"`
	Embedding []float32 `json:"embedding"`
	Index     int       `json:"index"`
}

func writeVectors(w http.ResponseWriter, tokens int, vecs ...embeddingRow) {
	resp := embeddingResponse{Object: "list", Model: "test-model", Data: vecs}
	resp.Usage.PromptTokens = tokens
	resp.Usage.TotalTokens = tokens
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func writeAPIError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"message": message, "type": "server_error"},
	})
}

func newTestEncoder(url string, mutate ...func(*Config)) *Encoder {
	cfg := &Config{
		APIKey:   "test-key",
		BaseURL:  url,
		Model:    "test-model",
		Provider: "test",
		Logger:   zap.NewNop(),
	}
	for _, m := range mutate {
		m(cfg)
	}
	return NewEncoder(cfg)
}

func TestEncoder_Encode(t *testing.T) {
	expectedVec := []float32{0.1, 0.2, 0.3, 0.4}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		writeVectors(w, 10, embeddingRow{Object: "embedding", Embedding: expectedVec, Index: 0})
	}))
	defer server.Close()

	enc := newTestEncoder(server.URL, func(c *Config) {
		c.Dimensions = 4
		c.RequestsPerMinute = 600
	})

	result, err := enc.Encode(context.Background(), "hello world")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(result.Vector) != len(expectedVec) {
		t.Fatalf("expected %d dimensions, got %d", len(expectedVec), len(result.Vector))
	}
	for i, v := range result.Vector {
		if v != expectedVec[i] {
			t.Errorf("vec[%d] = %f, expected %f", i, v, expectedVec[i])
		}
	}
	if result.TotalTokens != 10 {
		t.Errorf("TotalTokens = %d, expected 10", result.TotalTokens)
	}
}

func TestEncoder_BatchEncodeRestoresOrder(t *testing.T) {
	vec1 := []float32{0.1, 0.2}
	vec2 := []float32{0.3, 0.4}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Rows come back out of order; the adapter must sort by Index.
		writeVectors(w, 20,
			embeddingRow{Object: "embedding", Embedding: vec2, Index: 1},
			embeddingRow{Object: "embedding", Embedding: vec1, Index: 0},
		)
	}))
	defer server.Close()

	enc := newTestEncoder(server.URL)
	result, err := enc.BatchEncode(context.Background(), []string{"hello", "world"})
	if err != nil {
		t.Fatalf("BatchEncode failed: %v", err)
	}
	if len(result.Vectors) != 2 {
		t.Fatalf("expected 2 vectors, got %d", len(result.Vectors))
	}
	if result.Vectors[0][0] != 0.1 {
		t.Errorf("expected first vec[0]=0.1, got %f", result.Vectors[0][0])
	}
	if result.Vectors[1][0] != 0.3 {
		t.Errorf("expected second vec[0]=0.3, got %f", result.Vectors[1][0])
	}
	if result.TotalTokens != 20 {
		t.Errorf("expected TotalTokens=20, got %d", result.TotalTokens)
	}
}

func TestEncoder_BatchEncodeEmpty(t *testing.T) {
	enc := newTestEncoder("http://unused")

	result, err := enc.BatchEncode(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Vectors != nil {
		t.Errorf("expected nil vectors for empty input, got %v", result.Vectors)
	}
}

func TestEncoder_BatchEncodeCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeVectors(w, 5, embeddingRow{Object: "embedding", Embedding: []float32{0.1}, Index: 0})
	}))
	defer server.Close()

	enc := newTestEncoder(server.URL)
	_, err := enc.BatchEncode(context.Background(), []string{"a", "b"})
	if !errors.Is(err, domain.ErrEncoder) {
		t.Fatalf("err = %v, want ErrEncoder for count mismatch", err)
	}
}

func TestEncoder_TimeoutMapsToEncoderTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		writeVectors(w, 1, embeddingRow{Object: "embedding", Embedding: []float32{0.1}, Index: 0})
	}))
	defer server.Close()

	enc := newTestEncoder(server.URL, func(c *Config) {
		c.Timeout = 30 * time.Millisecond
	})

	_, err := enc.Encode(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEncoderTimeout) {
		t.Fatalf("err = %v, want ErrEncoderTimeout", err)
	}
}

func TestEncoder_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeAPIError(w, http.StatusInternalServerError, "transient")
			return
		}
		writeVectors(w, 3, embeddingRow{Object: "embedding", Embedding: []float32{0.5}, Index: 0})
	}))
	defer server.Close()

	enc := newTestEncoder(server.URL)
	result, err := enc.Encode(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Encode failed after retry: %v", err)
	}
	if result.Vector[0] != 0.5 {
		t.Errorf("vec[0] = %f, expected 0.5", result.Vector[0])
	}
	if got := calls.Load(); got != 2 {
		t.Errorf("server calls = %d, expected 2 (original + one retry)", got)
	}
}

func TestEncoder_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeAPIError(w, http.StatusBadRequest, "malformed input")
	}))
	defer server.Close()

	enc := newTestEncoder(server.URL)
	_, err := enc.Encode(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEncoder) {
		t.Fatalf("err = %v, want ErrEncoder", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, expected exactly 1 for a 400", got)
	}
}

func TestEncoder_BreakerOpensAfterRepeatedFailures(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeAPIError(w, http.StatusUnauthorized, "bad key")
	}))
	defer server.Close()

	enc := newTestEncoder(server.URL)
	for i := 0; i < 10; i++ {
		if _, err := enc.Encode(context.Background(), "hello"); err == nil {
			t.Fatal("expected error from failing provider")
		}
	}

	before := calls.Load()
	_, err := enc.Encode(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEncoder) {
		t.Fatalf("err = %v, want ErrEncoder once the circuit opens", err)
	}
	if calls.Load() != before {
		t.Error("open circuit must short the provider call")
	}
}
