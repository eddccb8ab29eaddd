// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stressbox"

var (
	// VisitsTracked counts RecordVisit calls by outcome: new or returning
	VisitsTracked = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "visits_tracked_total",
		Help:      "Page visits recorded by the visitor tracker",
	}, []string{"kind"})

	// TrackingFailures counts page requests whose tracking step failed
	TrackingFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "tracking_failures_total",
		Help:      "Page requests served without being tracked because the store failed",
	})

	// OperationDuration measures tracker operations including all store round-trips
	OperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "tracker_operation_duration_seconds",
		Help:      "Latency of visitor tracker operations",
		Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"operation"})

	// PageViews counts served pages by route
	PageViews = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "page_views_total",
		Help:      "HTML pages served, by page name",
	}, []string{"page"})
)

// Visit kinds
const (
	KindNew       = "new"
	KindReturning = "returning"
)
