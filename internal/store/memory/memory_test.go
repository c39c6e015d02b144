package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hirelens/matchdex/internal/store"
)

func TestGetSet(t *testing.T) {
	s := NewStore(16, 0)
	ctx := context.Background()

	if _, err := s.Get(ctx, "absent"); !errors.Is(err, store.ErrKeyNotFound) {
		t.Fatalf("Get(absent) = %v, want ErrKeyNotFound", err)
	}

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Get(k) = %q, want v", got)
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s := NewStore(16, 0)
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("abc")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	first, _ := s.Get(ctx, "k")
	first[0] = 'X'

	second, _ := s.Get(ctx, "k")
	if string(second) != "abc" {
		t.Errorf("stored value mutated through returned slice: %q", second)
	}
}

func TestDel(t *testing.T) {
	s := NewStore(16, 0)
	ctx := context.Background()

	if err := s.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Del(ctx, "k"); err != nil {
		t.Fatalf("Del: %v", err)
	}
	if _, err := s.Get(ctx, "k"); !errors.Is(err, store.ErrKeyNotFound) {
		t.Errorf("Get after Del = %v, want ErrKeyNotFound", err)
	}
}

func TestSetWithTTL(t *testing.T) {
	s := NewStore(16, 0)
	ctx := context.Background()

	if err := s.SetWithTTL(ctx, "k", []byte("v"), time.Nanosecond); err != nil {
		t.Fatalf("SetWithTTL: %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if _, err := s.Get(ctx, "k"); !errors.Is(err, store.ErrKeyNotFound) {
		t.Errorf("expired key Get = %v, want ErrKeyNotFound", err)
	}
}

func TestScan(t *testing.T) {
	s := NewStore(16, 0)
	ctx := context.Background()

	for _, k := range []string{"emb:a", "emb:b", "res:a"} {
		if err := s.Set(ctx, k, []byte("x")); err != nil {
			t.Fatalf("Set(%s): %v", k, err)
		}
	}

	keys, err := s.Scan(ctx, "emb:*")
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("Scan(emb:*) returned %d keys, want 2: %v", len(keys), keys)
	}
	for _, k := range keys {
		if k != "emb:a" && k != "emb:b" {
			t.Errorf("unexpected key %q", k)
		}
	}
}
