package activity

import (
	"huntd/pkg/logger"
	"huntd/pkg/models"
)

// Recorder bridges the hunt session to the queue. It satisfies the
// session's Recorder interface and never blocks the caller.
type Recorder struct {
	q *Queue
}

// NewRecorder wraps a queue. A nil queue yields a Recorder that drops
// everything, which keeps wiring simple when activity is disabled.
func NewRecorder(q *Queue) *Recorder { return &Recorder{q: q} }

// Record enqueues one event. Drops are counted and logged at debug so a
// flooded queue cannot flood the log either.
func (r *Recorder) Record(ev models.ActivityEvent) {
	if r.q == nil {
		return
	}
	if err := r.q.TryEnqueue(ev); err != nil {
		logger.Debug("activity_event_dropped", "user", ev.UserID, "reason", err.Error())
	}
}

// LogSink writes drained events to the structured log. This is the default
// sink; a hunt watching channel or webhook can replace it.
type LogSink struct{}

// Consume logs one drained event.
func (LogSink) Consume(ev models.ActivityEvent) {
	logger.Info("hunt_activity",
		"user", ev.UserID,
		"ts", ev.TS,
		"ordinal", ev.Ordinal,
		"outcome", string(ev.Outcome),
		"correct", ev.Correct,
	)
}
