package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cutRunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cashcut_runs_total",
		Help: "Scheduled cash cut runs by outcome.",
	}, []string{"outcome"})

	supervisorFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cashcut_supervisor_report_failures_total",
		Help: "Supervisor notifications that failed or were rejected.",
	})
)
