package fanout

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	resultOK        = "ok"
	resultError     = "error"
	resultPanic     = "panic"
	resultCancelled = "cancelled"
)

var (
	tasksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "orgchart",
		Subsystem: "fanout",
		Name:      "tasks_total",
		Help:      "Total number of fan-out tasks broken down by outcome.",
	}, []string{"result"})

	inFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "orgchart",
		Subsystem: "fanout",
		Name:      "in_flight",
		Help:      "Number of fan-out tasks currently running.",
	})
)

func observe(result string) {
	tasksTotal.WithLabelValues(result).Inc()
}

func observeErr(err error) {
	var p *PanicError
	switch {
	case err == nil:
		observe(resultOK)
	case errors.As(err, &p):
		observe(resultPanic)
	default:
		observe(resultError)
	}
}
