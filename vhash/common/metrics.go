package common

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Pipeline stage names recorded by StageMetrics
const (
	StageAcquire = "acquire"
	StageExtract = "extract"
	StageCollage = "collage"
	StageHash    = "hash"
)

// StageMetrics records wall-clock timings for the stages of one pipeline run
type StageMetrics struct {
	mu        sync.RWMutex
	order     []string
	durations map[string]time.Duration
	started   time.Time
}

// NewStageMetrics creates an empty metrics recorder
func NewStageMetrics() *StageMetrics {
	return &StageMetrics{
		durations: make(map[string]time.Duration),
		started:   time.Now(),
	}
}

// Track starts timing stage and returns the function that stops it.
//
//	defer metrics.Track(common.StageCollage)()
func (sm *StageMetrics) Track(stage string) func() {
	start := time.Now()
	return func() {
		sm.Record(stage, time.Since(start))
	}
}

// Record adds d to the total for stage
func (sm *StageMetrics) Record(stage string, d time.Duration) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if _, ok := sm.durations[stage]; !ok {
		sm.order = append(sm.order, stage)
	}
	sm.durations[stage] += d
}

// Duration returns the recorded time for stage
func (sm *StageMetrics) Duration(stage string) time.Duration {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.durations[stage]
}

// Stages returns the recorded stage names in first-recorded order
func (sm *StageMetrics) Stages() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	out := make([]string, len(sm.order))
	copy(out, sm.order)
	return out
}

// Log writes one event carrying every stage duration
func (sm *StageMetrics) Log(logger zerolog.Logger) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	event := logger.Debug()
	for _, stage := range sm.order {
		event = event.Dur(stage, sm.durations[stage])
	}
	event.Dur("total", time.Since(sm.started)).Msg("Pipeline stage timings")
}
