// Package metrics provides Prometheus metrics for the match service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus metric the service records.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Intake metrics
	submissionsAccepted  prometheus.Counter
	submissionsDuplicate prometheus.Counter
	submissionsRejected  prometheus.Counter

	// Matching run metrics
	runsStarted            prometheus.Counter
	runsCompleted          prometheus.Counter
	runsFailed             prometheus.Counter
	runDuration            prometheus.Histogram
	participantsClassified prometheus.Counter
	backfillAdditions      prometheus.Counter
	groupsBuilt            prometheus.Counter
	groupsDropped          prometheus.Counter
	groupSize              prometheus.Histogram

	// Population gauges
	pendingParticipants prometheus.Gauge
	matchedParticipants prometheus.Gauge
	totalGroups         prometheus.Gauge

	// Store metrics
	storeOpLatency *prometheus.HistogramVec
	storeErrors    *prometheus.CounterVec

	// Notification queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueues      prometheus.Counter
	queueDequeues      prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Notification worker metrics
	workerCount     prometheus.Gauge
	invitesSent     prometheus.Counter
	inviteErrors    prometheus.Counter
	deliveryLatency prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "lunches",
		subsystem:        "matching",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.submissionsAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_accepted_total",
		Help:      "Total number of intake submissions accepted",
	})
	m.submissionsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_duplicate_total",
		Help:      "Total number of duplicate intake submissions acknowledged",
	})
	m.submissionsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "submissions_rejected_total",
		Help:      "Total number of intake submissions rejected by validation",
	})

	m.runsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_started_total",
		Help:      "Total number of matching runs started",
	})
	m.runsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_completed_total",
		Help:      "Total number of matching runs completed successfully",
	})
	m.runsFailed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "runs_failed_total",
		Help:      "Total number of matching runs that failed during commit",
	})
	m.runDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "run_duration_milliseconds",
		Help:      "Matching run duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.participantsClassified = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "participants_classified_total",
		Help:      "Total number of participants considered by matching runs",
	})
	m.backfillAdditions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "backfill_additions_total",
		Help:      "Total number of secondary-preference slot placements",
	})
	m.groupsBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "groups_built_total",
		Help:      "Total number of draft groups produced by matching runs",
	})
	m.groupsDropped = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "groups_dropped_total",
		Help:      "Total number of undersized groups dropped before output",
	})
	m.groupSize = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "group_size",
		Help:      "Size distribution of emitted match groups",
		Buckets:   []float64{2, 3, 4},
	})

	m.pendingParticipants = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "pending_participants",
		Help:      "Current number of participants awaiting a match",
	})
	m.matchedParticipants = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "matched_participants",
		Help:      "Current number of matched participants",
	})
	m.totalGroups = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "total_groups",
		Help:      "Current number of match groups in the store",
	})

	m.storeOpLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "store_op_latency_milliseconds",
			Help:      "Store operation latency in milliseconds by operation",
			Buckets:   m.histogramBuckets,
		},
		[]string{"op"},
	)
	m.storeErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "store_errors_total",
			Help:      "Total number of store errors by operation",
		},
		[]string{"op"},
	)

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notify_queue_size",
		Help:      "Current size of the notification queue",
	})
	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notify_queue_capacity",
		Help:      "Maximum notification queue capacity",
	})
	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notify_enqueue_total",
		Help:      "Total number of notification jobs enqueued",
	})
	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notify_dequeue_total",
		Help:      "Total number of notification jobs dequeued",
	})
	m.queueEnqueueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notify_enqueue_errors_total",
		Help:      "Total number of rejected notification enqueues",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notify_worker_count",
		Help:      "Number of notification delivery workers",
	})
	m.invitesSent = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "invites_sent_total",
		Help:      "Total number of invitations delivered",
	})
	m.inviteErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "invite_errors_total",
		Help:      "Total number of failed invitation deliveries",
	})
	m.deliveryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "invite_delivery_latency_milliseconds",
		Help:      "Invitation delivery latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// Intake metrics.

// RecordSubmissionAccepted increments the accepted submissions counter.
func RecordSubmissionAccepted() { globalManager.submissionsAccepted.Inc() }

// RecordSubmissionDuplicate increments the duplicate submissions counter.
func RecordSubmissionDuplicate() { globalManager.submissionsDuplicate.Inc() }

// RecordSubmissionRejected increments the rejected submissions counter.
func RecordSubmissionRejected() { globalManager.submissionsRejected.Inc() }

// Matching run metrics.

// RecordRunStarted increments the started runs counter.
func RecordRunStarted() { globalManager.runsStarted.Inc() }

// RecordRunCompleted increments the completed runs counter.
func RecordRunCompleted() { globalManager.runsCompleted.Inc() }

// RecordRunFailed increments the failed runs counter.
func RecordRunFailed() { globalManager.runsFailed.Inc() }

// RecordRunDuration records a run duration in milliseconds.
func RecordRunDuration(ms float64) { globalManager.runDuration.Observe(ms) }

// RecordParticipantsClassified adds to the classified participants counter.
func RecordParticipantsClassified(n int) {
	globalManager.participantsClassified.Add(float64(n))
}

// RecordBackfillAdditions adds to the backfill placements counter.
func RecordBackfillAdditions(n int) {
	globalManager.backfillAdditions.Add(float64(n))
}

// RecordGroupBuilt records one emitted group and its size.
func RecordGroupBuilt(size int) {
	globalManager.groupsBuilt.Inc()
	globalManager.groupSize.Observe(float64(size))
}

// RecordGroupsDropped adds to the dropped groups counter.
func RecordGroupsDropped(n int) { globalManager.groupsDropped.Add(float64(n)) }

// Population gauges.

// UpdatePendingParticipants sets the pending participants gauge.
func UpdatePendingParticipants(n int) { globalManager.pendingParticipants.Set(float64(n)) }

// UpdateMatchedParticipants sets the matched participants gauge.
func UpdateMatchedParticipants(n int) { globalManager.matchedParticipants.Set(float64(n)) }

// UpdateTotalGroups sets the total groups gauge.
func UpdateTotalGroups(n int) { globalManager.totalGroups.Set(float64(n)) }

// Store metrics.

// RecordStoreOpLatency records a store operation latency by name.
func RecordStoreOpLatency(op string, ms float64) {
	globalManager.storeOpLatency.WithLabelValues(op).Observe(ms)
}

// RecordStoreError increments the store error counter for an operation.
func RecordStoreError(op string) {
	globalManager.storeErrors.WithLabelValues(op).Inc()
}

// Notification queue metrics.

// UpdateQueueSize sets the current notification queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the notification queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueues.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeues.Inc() }

// RecordQueueEnqueueError increments the rejected enqueue counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrors.Inc() }

// Notification worker metrics.

// UpdateWorkerCount sets the delivery worker gauge.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordInviteSent increments the delivered invitations counter.
func RecordInviteSent() { globalManager.invitesSent.Inc() }

// RecordInviteError increments the failed deliveries counter.
func RecordInviteError() { globalManager.inviteErrors.Inc() }

// RecordDeliveryLatency records an invitation delivery latency.
func RecordDeliveryLatency(ms float64) { globalManager.deliveryLatency.Observe(ms) }

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
