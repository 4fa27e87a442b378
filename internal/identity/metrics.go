package identity

import (
	"github.com/bissquit/statuspage/internal/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Login results.
const (
	loginSuccess = "success"
	loginFailure = "failure"
	loginError   = "error"
)

var logins = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Login attempts by result",
	},
	[]string{"result"},
)
