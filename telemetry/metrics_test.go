package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsObserve(t *testing.T) {
	m := NewMetrics()
	m.Observe(GenerationStats{BestFitness: 4, AverageFitness: 2, WorstFitness: 1, Duration: time.Second})
	m.Observe(GenerationStats{BestFitness: 5, AverageFitness: 3, WorstFitness: 1, Duration: time.Second})

	if got := testutil.ToFloat64(m.generations); got != 2 {
		t.Errorf("generations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.bestFitness); got != 5 {
		t.Errorf("best = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.averageFitness); got != 3 {
		t.Errorf("average = %v, want 3", got)
	}
	if got := testutil.CollectAndCount(m.duration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestMetricsNil(t *testing.T) {
	var m *Metrics
	m.Observe(GenerationStats{BestFitness: 1})
}

func TestMetricsHandler(t *testing.T) {
	m := NewMetrics()
	m.Observe(GenerationStats{BestFitness: 1.5})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, name := range []string{"physarum_best_fitness 1.5", "physarum_generations_total 1", "physarum_generation_duration_seconds_bucket"} {
		if !strings.Contains(body, name) {
			t.Errorf("response missing %q", name)
		}
	}
}
