package application

import (
	"time"

	"academy/contexts/learning/course-marketplace/ports"
)

const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// ObserveOperation records one use-case execution. A nil Metrics is allowed.
func ObserveOperation(metrics ports.Metrics, operation string, started time.Time, err error) {
	if metrics == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	metrics.ObserveOperation(operation, outcome, started)
}

func Now(clock ports.Clock) time.Time {
	if clock == nil {
		return time.Now().UTC()
	}
	return clock.Now().UTC()
}
