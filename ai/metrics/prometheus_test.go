package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/linguapet/ai/brain"
	"github.com/hrygo/linguapet/store"
	"github.com/hrygo/linguapet/store/db/memory"
)

func TestPrometheusExporter(t *testing.T) {
	exporter := NewPrometheusExporter(DefaultConfig())

	t.Run("ObserveTurn", func(t *testing.T) {
		exporter.ObserveTurn(brain.RouteRule, 2*time.Millisecond)
		exporter.ObserveTurn(brain.RouteRule, 3*time.Millisecond)
		exporter.ObserveTurn(brain.RouteTeach, time.Millisecond)

		assert.Equal(t, 2.0, testutil.ToFloat64(exporter.turns.WithLabelValues("rule")))
		assert.Equal(t, 1.0, testutil.ToFloat64(exporter.turns.WithLabelValues("teach")))
		assert.Equal(t, 2, testutil.CollectAndCount(exporter.turnLatency))
	})

	t.Run("ObserveNote", func(t *testing.T) {
		exporter.ObserveNote(true)
		exporter.ObserveNote(true)
		exporter.ObserveNote(false)

		assert.Equal(t, 2.0, testutil.ToFloat64(exporter.notes.WithLabelValues("accepted")))
		assert.Equal(t, 1.0, testutil.ToFloat64(exporter.notes.WithLabelValues("rejected")))
	})
}

func TestPrometheusExporterHandler(t *testing.T) {
	exporter := NewPrometheusExporter(DefaultConfig())
	exporter.ObserveTurn(brain.RouteGreeting, time.Millisecond)
	exporter.ObserveNote(true)

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	w := httptest.NewRecorder()
	exporter.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "linguapet_brain_turns_total"))
	assert.True(t, strings.Contains(body, "linguapet_brain_turn_latency_seconds"))
	assert.True(t, strings.Contains(body, "linguapet_brain_notes_total"))
}

func TestPrometheusExporterWithEngine(t *testing.T) {
	exporter := NewPrometheusExporter(Config{})
	engine := brain.New(store.New(memory.NewDB(), nil), brain.WithObserver(exporter))

	engine.Reply(context.Background(), "你好", "小语", "日常会话")
	engine.Reply(context.Background(), "", "小语", "日常会话")

	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.turns.WithLabelValues("rule")))
	assert.Equal(t, 1.0, testutil.ToFloat64(exporter.turns.WithLabelValues("greeting")))
}

func BenchmarkPrometheusExporter(b *testing.B) {
	exporter := NewPrometheusExporter(DefaultConfig())

	b.Run("ObserveTurn", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			exporter.ObserveTurn(brain.RouteRandom, 100*time.Microsecond)
		}
	})
}
