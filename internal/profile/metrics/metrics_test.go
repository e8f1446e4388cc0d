package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	t.Run("records on an isolated registry", func(t *testing.T) {
		m := New(prometheus.NewRegistry())

		m.IncrementDecision("single", "public")
		m.IncrementDecision("single", "public")
		m.IncrementResolve("ok")
		m.IncrementCacheLookup("hit")
		m.ObserveEvaluateLatency("batch", 5*time.Millisecond)

		assert.Equal(t, 2.0, testutil.ToFloat64(m.Decisions.WithLabelValues("single", "public")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.ResolveOutcome.WithLabelValues("ok")))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	})

	t.Run("nil receiver is a no-op", func(t *testing.T) {
		var m *Metrics
		assert.NotPanics(t, func() {
			m.IncrementDecision("single", "public")
			m.ObserveStoreRead("profile", time.Millisecond)
			m.IncrementCacheLookup("miss")
		})
	})
}
