package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SignalsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crowd_safety_signals_received_total",
		Help: "Total number of signals submitted to the detection adapter, labelled by outcome.",
	}, []string{"outcome"})

	IncidentsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crowd_safety_incidents_created_total",
		Help: "Total number of incidents created, labelled by kind.",
	}, []string{"kind"})

	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crowd_safety_transitions_total",
		Help: "Accepted lifecycle transitions, labelled by target status.",
	}, []string{"to"})

	TransitionsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crowd_safety_transitions_rejected_total",
		Help: "Rejected lifecycle transitions, labelled by reason.",
	}, []string{"reason"})

	OpenIncidents = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crowd_safety_open_incidents",
		Help: "Open incidents observed by the last health snapshot.",
	})

	ChangesPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowd_safety_changes_published_total",
		Help: "Change records published to the fan-out.",
	})

	Subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "crowd_safety_subscribers",
		Help: "Currently registered fan-out subscribers.",
	})

	SubscribersDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowd_safety_subscribers_dropped_total",
		Help: "Subscribers dropped because their queue exceeded the bound.",
	})

	PersistFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crowd_safety_persist_failures_total",
		Help: "Incident snapshots that could not be written to the persistent store.",
	})

	ProbeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crowd_safety_probe_duration_ms",
		Help:    "Subsystem probe latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	}, []string{"subsystem", "reachable"})

	DetectorCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crowd_safety_detector_calls_total",
		Help: "External detector calls, labelled by detector and status.",
	}, []string{"detector", "status"})
)
