package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncBuildOutcome("regenerated")
	pr.IncRegenReason("configuration changed")
	pr.ObserveDeployDuration(90 * time.Second)
	pr.IncDeployOutcome("provisioned")
	pr.IncSubmitRetry()
	pr.ObservePollCount(3)
	// Basic scrape to ensure metrics encode without panic
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveBuildDuration(time.Second)
	r.IncBuildOutcome("skipped")
	r.IncRegenReason("forced")
	r.ObserveDeployDuration(time.Second)
	r.IncDeployOutcome("failed")
	r.IncSubmitRetry()
	r.ObservePollCount(1)
}
