package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	if err := Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}

	// The collectors are package singletons; a second pass sees them as
	// already registered and skips.
	if err := Register(reg); err != nil {
		t.Fatalf("second Register: %v", err)
	}

	if err := reg.Register(IndexedCandidates); err == nil {
		t.Error("direct re-registration should fail, Register must have registered it")
	}
}

func TestRegister_ConflictingCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	clash := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "matchdex",
		Name:      "indexed_candidates",
		Help:      "same name, different definition",
	})
	reg.MustRegister(clash)

	if err := Register(reg); err == nil {
		t.Fatal("Register accepted a collector clashing with an existing name")
	}
}
