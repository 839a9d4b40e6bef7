package upstream

import "time"

// Observer receives upstream events. telemetry/metrics.Collector satisfies
// it.
type Observer interface {
	RecordUpstreamAttempt(classification string, duration time.Duration)
	RecordRetry()
	RecordPayloadStripped()
}

type nopObserver struct{}

func (nopObserver) RecordUpstreamAttempt(string, time.Duration) {}
func (nopObserver) RecordRetry()                                {}
func (nopObserver) RecordPayloadStripped()                      {}
