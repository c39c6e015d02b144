package gemini

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/hirelens/matchdex/internal/domain"
)

func TestNewEncoder_RequiresAPIKey(t *testing.T) {
	_, err := NewEncoder(context.Background(), &Config{APIKey: "   "})
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("NewEncoder with blank key: got %v, want ErrConfiguration", err)
	}
}

func TestNewEncoder_Defaults(t *testing.T) {
	enc, err := NewEncoder(context.Background(), &Config{APIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if enc.model != defaultModel {
		t.Errorf("model = %q, want %q", enc.model, defaultModel)
	}
	if enc.provider != "gemini" {
		t.Errorf("provider = %q, want gemini", enc.provider)
	}
	if enc.timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", enc.timeout, DefaultTimeout)
	}
}

func TestNewEncoder_Overrides(t *testing.T) {
	enc, err := NewEncoder(context.Background(), &Config{
		APIKey:     "test-key",
		Model:      " custom-embed ",
		Dimensions: 256,
		Provider:   "vertex",
		Timeout:    3 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if enc.model != "custom-embed" {
		t.Errorf("model = %q, want custom-embed", enc.model)
	}
	if enc.provider != "vertex" {
		t.Errorf("provider = %q, want vertex", enc.provider)
	}
	if enc.dimensions != 256 {
		t.Errorf("dimensions = %d, want 256", enc.dimensions)
	}
	if enc.timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", enc.timeout)
	}
}

func TestBatchEncodeEmpty(t *testing.T) {
	enc := &Encoder{timeout: time.Second, provider: "gemini", model: defaultModel, logger: zap.NewNop()}
	res, err := enc.BatchEncode(context.Background(), nil)
	if err != nil {
		t.Fatalf("BatchEncode(nil): %v", err)
	}
	if len(res.Vectors) != 0 {
		t.Fatalf("BatchEncode(nil) returned %d vectors", len(res.Vectors))
	}
}

func TestClassify(t *testing.T) {
	enc := &Encoder{timeout: time.Second, provider: "gemini", model: defaultModel, logger: zap.NewNop()}

	err := enc.classify(context.Background(), context.DeadlineExceeded)
	if !errors.Is(err, domain.ErrEncoderTimeout) {
		t.Errorf("deadline with live parent: got %v, want ErrEncoderTimeout", err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	err = enc.classify(cancelled, context.Canceled)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled parent: got %v, want context.Canceled", err)
	}
	if errors.Is(err, domain.ErrEncoder) || errors.Is(err, domain.ErrEncoderTimeout) {
		t.Errorf("cancelled parent must not map to an encoder error, got %v", err)
	}

	err = enc.classify(context.Background(), fmt.Errorf("boom"))
	if !errors.Is(err, domain.ErrEncoder) {
		t.Errorf("generic failure: got %v, want ErrEncoder", err)
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "dial timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

var _ net.Error = timeoutErr{}

func TestIsRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"timeout sentinel", fmt.Errorf("slow: %w", domain.ErrEncoderTimeout), true},
		{"deadline", context.DeadlineExceeded, true},
		{"net error", timeoutErr{}, true},
		{"wrapped net error", fmt.Errorf("call: %w", timeoutErr{}), true},
		{"generic", errors.New("bad request"), false},
		{"encoder sentinel", fmt.Errorf("api: %w", domain.ErrEncoder), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := isRetryable(tc.err); got != tc.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tc.err, got, tc.want)
			}
		})
	}
}
