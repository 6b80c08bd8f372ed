package proxy

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	relayRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellmirror",
		Subsystem: "proxy",
		Name:      "relay_requests_total",
		Help:      "Daily report relay requests by outcome.",
	}, []string{"outcome"})

	upstreamDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "wellmirror",
		Subsystem: "proxy",
		Name:      "upstream_duration_seconds",
		Help:      "Latency of upstream AI server calls.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})
)

// relay 结果标签
const (
	outcomeOK              = "ok"
	outcomeBadRequest      = "bad_request"
	outcomeUpstreamError   = "upstream_error"
	outcomeInvalidResponse = "invalid_response"
	outcomeInternal        = "internal_error"
)
