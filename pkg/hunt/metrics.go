package hunt

import "github.com/prometheus/client_golang/prometheus"

var (
	submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "huntd_submissions_total",
		Help: "Submissions processed, labeled by outcome kind.",
	}, []string{"outcome"})

	saveConflictsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "huntd_save_conflicts_total",
		Help: "Conditional progress saves rejected for a stale version.",
	})
)

func init() {
	prometheus.MustRegister(submissionsTotal, saveConflictsTotal)
}
