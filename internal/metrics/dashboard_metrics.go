package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Dashboard metrics share the MetricsManager registry and the
// ENABLE_BUSINESS_METRICS switch with the HTTP metrics.
var (
	loginsTotal           *prometheus.CounterVec
	patientsAddedTotal    prometheus.Counter
	vitalsSamplesTotal    *prometheus.CounterVec
	vitalsFeedSubscribers prometheus.Gauge
	vitalsPublishFailures prometheus.Counter
	dataSourceSyncs       *prometheus.HistogramVec
	uploadJobsTotal       *prometheus.CounterVec
	reportDownloadsTotal  *prometheus.CounterVec

	httpOnce      sync.Once
	dashboardOnce sync.Once
)

// initializeDashboardMetrics initializes dashboard metrics if they haven't been initialized yet
func initializeDashboardMetrics() {
	dashboardOnce.Do(func() {
		loginsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "icudash_logins_total",
				Help: "Total number of login attempts",
			},
			[]string{"result"},
		)

		patientsAddedTotal = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "icudash_patients_added_total",
				Help: "Total number of patients added to the list",
			},
		)

		vitalsSamplesTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "icudash_vitals_samples_total",
				Help: "Total number of generated vitals samples",
			},
			[]string{"status"},
		)

		vitalsFeedSubscribers = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "icudash_vitals_feed_subscribers",
				Help: "Number of attached live vitals subscribers",
			},
		)

		vitalsPublishFailures = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "icudash_vitals_publish_failures_total",
				Help: "Total number of vitals samples that failed to publish to MQTT",
			},
		)

		dataSourceSyncs = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "icudash_data_source_sync_duration_seconds",
				Help:    "Time spent syncing a data source",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source", "result"},
		)

		uploadJobsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "icudash_upload_jobs_total",
				Help: "Total number of upload jobs by outcome",
			},
			[]string{"result"},
		)

		reportDownloadsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "icudash_report_downloads_total",
				Help: "Total number of report downloads by format",
			},
			[]string{"format"},
		)

		GetInstance().registry.MustRegister(
			loginsTotal,
			patientsAddedTotal,
			vitalsSamplesTotal,
			vitalsFeedSubscribers,
			vitalsPublishFailures,
			dataSourceSyncs,
			uploadJobsTotal,
			reportDownloadsTotal,
		)
	})
}

// RecordLogin records a login attempt with result "success" or "validation_failed"
func RecordLogin(result string) {
	if !businessMetricsEnabled() {
		return
	}
	initializeDashboardMetrics()
	loginsTotal.WithLabelValues(result).Inc()
}

// RecordPatientAdded counts an added patient
func RecordPatientAdded() {
	if !businessMetricsEnabled() {
		return
	}
	initializeDashboardMetrics()
	patientsAddedTotal.Inc()
}

// RecordVitalsSample counts a generated sample for a patient status
func RecordVitalsSample(status string) {
	if !businessMetricsEnabled() {
		return
	}
	initializeDashboardMetrics()
	vitalsSamplesTotal.WithLabelValues(status).Inc()
}

// AddFeedSubscribers moves the live subscriber gauge by delta
func AddFeedSubscribers(delta int) {
	if !businessMetricsEnabled() {
		return
	}
	initializeDashboardMetrics()
	vitalsFeedSubscribers.Add(float64(delta))
}

// RecordPublishFailure counts a sample that could not be published
func RecordPublishFailure() {
	if !businessMetricsEnabled() {
		return
	}
	initializeDashboardMetrics()
	vitalsPublishFailures.Inc()
}

// RecordDataSourceSync records the duration of a data source sync
func RecordDataSourceSync(source string, startTime time.Time, result string) {
	if !businessMetricsEnabled() {
		return
	}
	initializeDashboardMetrics()
	dataSourceSyncs.WithLabelValues(source, result).Observe(time.Since(startTime).Seconds())
}

// RecordUploadJob counts an upload job outcome: "completed", "cancelled" or "rejected"
func RecordUploadJob(result string) {
	if !businessMetricsEnabled() {
		return
	}
	initializeDashboardMetrics()
	uploadJobsTotal.WithLabelValues(result).Inc()
}

// RecordReportDownload counts a report download in format "txt" or "xlsx"
func RecordReportDownload(format string) {
	if !businessMetricsEnabled() {
		return
	}
	initializeDashboardMetrics()
	reportDownloadsTotal.WithLabelValues(format).Inc()
}
