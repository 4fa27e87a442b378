package incidents

import (
	"github.com/bissquit/statuspage/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	incidentsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "incidents",
			Name:      "created_total",
			Help:      "Total incidents committed, by status",
		},
		[]string{"status"},
	)

	propagationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: "incidents",
			Name:      "status_propagation_failures_total",
			Help:      "Incident creations rolled back because the service status could not be updated",
		},
	)
)
