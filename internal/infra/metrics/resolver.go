package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		resolutionsTotal,
		resolverLatencyMs,
		variantsServedTotal,
	)
}

var (
	resolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_resolutions_total",
			Help: "Link resolutions by domain and outcome.",
		},
		[]string{"domain", "success"},
	)

	resolverLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relay_resolver_latency_ms",
			Help:    "Resolver call latency distribution in milliseconds.",
			Buckets: []float64{25, 50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
		},
		[]string{"domain"},
	)

	variantsServedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_variants_served_total",
			Help: "Variant download buttons served, by domain and variant key.",
		},
		[]string{"domain", "variant"},
	)
)

func ObserveResolution(domain string, latencyMs int, success bool) {
	resolutionsTotal.WithLabelValues(norm(domain), strconv.FormatBool(success)).Inc()
	resolverLatencyMs.WithLabelValues(norm(domain)).Observe(float64(latencyMs))
}

func IncVariantServed(domain, variant string) {
	variantsServedTotal.WithLabelValues(norm(domain), norm(variant)).Inc()
}
