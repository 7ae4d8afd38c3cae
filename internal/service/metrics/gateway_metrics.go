package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    GatewayLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "bingopulse",
            Subsystem: "gateway",
            Name:      "latency_seconds",
            Help:      "Latency of backend gateway endpoints",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"endpoint"},
    )

    GatewayErrors = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "bingopulse",
            Subsystem: "gateway",
            Name:      "errors_total",
            Help:      "Errors by backend gateway endpoint and status class",
        },
        []string{"endpoint", "class"},
    )

    CacheLookups = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "bingopulse",
            Subsystem: "cache",
            Name:      "lookups_total",
            Help:      "Draw cache lookups by tier and result",
        },
        []string{"tier", "result"},
    )
)

// Register registers the gateway collectors with the default registry once.
func Register() {
    once.Do(func() {
        prometheus.MustRegister(GatewayLatency, GatewayErrors, CacheLookups)
    })
}
