package eventbus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	eventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "wellmirror",
		Subsystem: "eventbus",
		Name:      "events_published_total",
		Help:      "Events published on the in-process hub.",
	}, []string{"type"})

	eventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "wellmirror",
		Subsystem: "eventbus",
		Name:      "events_dropped_total",
		Help:      "Events dropped because a subscriber buffer was full.",
	})

	subscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "wellmirror",
		Subsystem: "eventbus",
		Name:      "subscribers",
		Help:      "Active hub subscribers.",
	})
)
