package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP Metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameHTTPRequestsTotal,
			Help: HelpTextHTTPRequestsTotal,
		},
		[]string{LabelMethod, LabelPath, LabelStatus},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameHTTPRequestDuration,
			Help:    HelpTextHTTPRequestDuration,
			Buckets: HTTPLatencyBuckets,
		},
		[]string{LabelMethod, LabelPath},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameHTTPRequestsInFlight,
			Help: HelpTextHTTPRequestsInFlight,
		},
	)
)

// Cycle Reset Metrics
var (
	CycleTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCycleTicks,
			Help: HelpTextCycleTicks,
		},
	)

	CycleBoundariesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCycleBoundaries,
			Help: HelpTextCycleBoundaries,
		},
		[]string{LabelVariable, LabelCycle},
	)

	CycleFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCycleFailures,
			Help: HelpTextCycleFailures,
		},
		[]string{LabelVariable, LabelReason},
	)

	CycleRowsDeleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCycleRowsDeleted,
			Help: HelpTextCycleRowsDeleted,
		},
		[]string{LabelVariable, LabelScope},
	)

	CycleDeleteBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCycleDeleteBatches,
			Help: HelpTextCycleDeleteBatches,
		},
		[]string{LabelVariable},
	)

	CycleDeleteDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    MetricNameCycleDeleteDuration,
			Help:    HelpTextCycleDeleteDuration,
			Buckets: DeleteLatencyBuckets,
		},
		[]string{LabelScope},
	)

	CycleSkewCorrections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameCycleSkewCorrections,
			Help: HelpTextCycleSkewCorrections,
		},
		[]string{LabelVariable},
	)

	CycleInFlightSkips = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: MetricNameCycleInFlightSkips,
			Help: HelpTextCycleInFlightSkips,
		},
	)

	CycleCatchUpCapped = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: MetricNameCycleCatchUpCapped,
			Help: HelpTextCycleCatchUpCapped,
		},
		[]string{LabelVariable},
	)

	ActionFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: MetricNameActionFailures,
			Help: HelpTextActionFailures,
		},
		[]string{LabelVariable},
	)

	OnlinePlayers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: MetricNameOnlinePlayers,
			Help: HelpTextOnlinePlayers,
		},
	)
)
