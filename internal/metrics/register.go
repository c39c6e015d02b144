package metrics

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Register registers every engine collector on reg. The collectors are
// package-level singletons, so a collector reg already holds is skipped;
// several engines can share one registry.
func Register(reg prometheus.Registerer) error {
	collectors := append(encoderCollectors(), matchingCollectors()...)
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return fmt.Errorf("register collector: %w", err)
		}
	}
	return nil
}
