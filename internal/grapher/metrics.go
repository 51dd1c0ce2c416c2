package grapher

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	normalizations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iolens_grapher_normalizations_total",
			Help: "Number of times a file's operations were normalized (cache misses).",
		},
		[]string{"access_type", "time_mode"},
	)
	views = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iolens_grapher_views_total",
			Help: "Number of views built, by view kind (pattern, size, duration, throughput).",
		},
		[]string{"view"},
	)
	rejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "iolens_grapher_rejections_total",
			Help: "Number of rejected selections or renders, by reason.",
		},
		[]string{"reason"},
	)
)
