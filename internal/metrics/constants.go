package metrics

// ============================================================================
// Metric Names
// ============================================================================

// HTTP metric names
const (
	MetricNameHTTPRequestsTotal    = "http_requests_total"
	MetricNameHTTPRequestDuration  = "http_request_duration_seconds"
	MetricNameHTTPRequestsInFlight = "http_requests_in_flight"
)

// Cycle reset metric names
const (
	MetricNameCycleTicks             = "cycle_ticks_total"
	MetricNameCycleBoundaries        = "cycle_boundaries_processed_total"
	MetricNameCycleFailures          = "cycle_failures_total"
	MetricNameCycleRowsDeleted       = "cycle_rows_deleted_total"
	MetricNameCycleDeleteBatches     = "cycle_delete_batches_total"
	MetricNameCycleDeleteDuration    = "cycle_delete_duration_seconds"
	MetricNameCycleSkewCorrections   = "cycle_skew_corrections_total"
	MetricNameCycleInFlightSkips     = "cycle_inflight_skips_total"
	MetricNameCycleCatchUpCapped     = "cycle_catch_up_capped"
	MetricNameActionFailures         = "cycle_action_failures_total"
	MetricNameOnlinePlayers          = "presence_online_players"
)

// ============================================================================
// Metric Help Text
// ============================================================================

// HTTP metric help text
const (
	HelpTextHTTPRequestsTotal    = "Total number of HTTP requests"
	HelpTextHTTPRequestDuration  = "HTTP request latency in seconds"
	HelpTextHTTPRequestsInFlight = "Current number of HTTP requests being served"
)

// Cycle reset metric help text
const (
	HelpTextCycleTicks             = "Total number of reset engine ticks"
	HelpTextCycleBoundaries        = "Total number of cycle boundaries committed"
	HelpTextCycleFailures          = "Total number of variable catch-up runs that failed"
	HelpTextCycleRowsDeleted       = "Total number of stored values deleted by resets"
	HelpTextCycleDeleteBatches     = "Total number of delete statements issued by resets"
	HelpTextCycleDeleteDuration    = "Time to delete a variable's data for one boundary"
	HelpTextCycleSkewCorrections   = "Total number of future progress entries corrected"
	HelpTextCycleInFlightSkips     = "Total number of variables skipped because a previous run was still in flight"
	HelpTextCycleCatchUpCapped     = "1 when a variable still had boundaries pending after its last run"
	HelpTextActionFailures         = "Total number of post-reset actions that failed"
	HelpTextOnlinePlayers          = "Current number of online players"
)

// ============================================================================
// Metric Label Names
// ============================================================================

// Common label names used across metrics
const (
	LabelMethod   = "method"
	LabelPath     = "path"
	LabelStatus   = "status"
	LabelVariable = "variable"
	LabelCycle    = "cycle"
	LabelScope    = "scope"
	LabelReason   = "reason"
)

// Failure reasons
const (
	ReasonTransient     = "transient"
	ReasonConfiguration = "configuration"
	ReasonOther         = "other"
)

// ============================================================================
// Histogram Buckets
// ============================================================================

// HTTPLatencyBuckets defines the histogram buckets for HTTP request duration
// in seconds. These buckets range from 1ms to 10s to capture various latency
// patterns: fast (1-10ms), normal (10-100ms), slow (100ms-1s), very slow (1-10s)
var HTTPLatencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// DeleteLatencyBuckets covers single statements up to long multi-batch player resets
var DeleteLatencyBuckets = []float64{.005, .025, .1, .5, 1, 5, 15, 60, 300}

// UnmatchedRoute labels requests no route matched
const UnmatchedRoute = "unmatched"
