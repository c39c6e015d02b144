package embcache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hirelens/matchdex/internal/domain"
	"github.com/hirelens/matchdex/internal/store"
)

type mockEncoder struct {
	result      domain.EncodeResult
	err         error
	batchResult domain.BatchEncodeResult
	batchErr    error
	calls       int
	batchCalls  int
}

func (m *mockEncoder) Encode(_ context.Context, _ string) (domain.EncodeResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockEncoder) BatchEncode(_ context.Context, texts []string) (domain.BatchEncodeResult, error) {
	m.batchCalls++
	if m.batchErr != nil {
		return domain.BatchEncodeResult{}, m.batchErr
	}
	if m.batchResult.Vectors != nil {
		return m.batchResult, nil
	}
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = m.result.Vector
	}
	return domain.BatchEncodeResult{
		Vectors:      vectors,
		PromptTokens: m.result.PromptTokens * len(texts),
		TotalTokens:  m.result.TotalTokens * len(texts),
	}, nil
}

// encodeOnly lacks BatchEncode, forcing the fallback loop.
type encodeOnly struct {
	result domain.EncodeResult
	calls  int
}

func (m *encodeOnly) Encode(_ context.Context, _ string) (domain.EncodeResult, error) {
	m.calls++
	return m.result, nil
}

// mockKV implements the consumer interface for tests.
type mockKV struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKV) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, store.ErrKeyNotFound
}

func (m *mockKV) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedEncoder(t *testing.T, inner domain.Encoder) (*CachedEncoder, *mockKV) {
	t.Helper()
	ms := &mockKV{}
	ce := New(inner, ms, 0, nil, zap.NewNop())
	return ce, ms
}
