package activity

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	enqueuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "huntd_activity_enqueued_total",
		Help: "Activity events accepted into the queue.",
	})
	droppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "huntd_activity_dropped_total",
		Help: "Activity events dropped because the queue was full or closed.",
	})
)

func init() {
	prometheus.MustRegister(enqueuedTotal, droppedTotal)
}
