package catalog

import (
	"github.com/bissquit/statuspage/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var servicesCreated = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "catalog",
		Name:      "services_created_total",
		Help:      "Total services created, by initial status",
	},
	[]string{"status"},
)
