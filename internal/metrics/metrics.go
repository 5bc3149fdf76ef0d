package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tictactoe"

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "runs_total",
		Help:      "Completed runs by kind (enumerate, solve, train) and status.",
	}, []string{"kind", "status"})

	RunDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "run_duration_seconds",
		Help:      "Wall time of a run by kind.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"kind"})

	StatesEnumerated = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "states_enumerated",
		Help:      "Reachable boards found by the last enumeration.",
	})

	SolverSweeps = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "solver",
		Name:      "sweeps_total",
		Help:      "Value iteration sweeps performed.",
	})

	SolverLastDelta = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "solver",
		Name:      "last_delta",
		Help:      "Largest value change in the final sweep of the last solve.",
	})

	TrainingEpisodes = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "qlearning",
		Name:      "episodes_total",
		Help:      "Self-play episodes trained.",
	})

	ExplorationRate = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "qlearning",
		Name:      "exploration_rate",
		Help:      "Current epsilon of the last trained agent.",
	})

	QTableStates = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "qlearning",
		Name:      "qtable_states",
		Help:      "States present in the Q-table of the last trained agent.",
	})
)

const (
	StatusOK    = "ok"
	StatusError = "error"
)

func ObserveRun(kind string, seconds float64, err error) {
	status := StatusOK
	if err != nil {
		status = StatusError
	}

	RunsTotal.WithLabelValues(kind, status).Inc()
	RunDuration.WithLabelValues(kind).Observe(seconds)
}
