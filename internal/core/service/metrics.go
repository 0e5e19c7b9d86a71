package service

import "github.com/prometheus/client_golang/prometheus"

var (
	interactionsDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "huginn_interactions_dispatched_total", Help: "interactions routed to a live executor"},
		[]string{"client", "transport"},
	)

	interactionsTimedOut = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "huginn_interactions_timed_out_total", Help: "interactions answered with the synthetic timed-out response"},
		[]string{"client", "transport"},
	)

	executorsEvicted = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "huginn_executors_evicted_total", Help: "executors evicted from the registry"},
		[]string{"client", "reason"},
	)

	registeredExecutors = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{Name: "huginn_registered_executors", Help: "executors currently registered"},
		[]string{"client"},
	)
)

func init() {
	prometheus.MustRegister(
		interactionsDispatched,
		interactionsTimedOut,
		executorsEvicted,
		registeredExecutors,
	)
}
