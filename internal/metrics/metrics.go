package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tubegrab_jobs_created_total",
		Help: "Total number of download jobs created",
	})

	jobsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubegrab_jobs_finished_total",
		Help: "Download jobs that reached a terminal state",
	}, []string{"state"}) // state=completed|failed

	jobsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tubegrab_jobs_running",
		Help: "Number of downloads currently executing",
	})

	queueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tubegrab_queue_depth",
		Help: "Number of jobs waiting for a worker",
	})

	downloadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "tubegrab_download_duration_seconds",
		Help:    "Time spent executing downloads",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
	}, []string{"state"})

	metadataFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tubegrab_metadata_fetches_total",
		Help: "Metadata fetches by outcome",
	}, []string{"outcome"}) // outcome=success|error|timeout|shared

	metadataFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tubegrab_metadata_fetch_duration_seconds",
		Help:    "Time spent resolving video metadata",
		Buckets: prometheus.DefBuckets,
	})
)

func IncJobsCreated() { jobsCreated.Inc() }

// RecordJobStarted marks a job as picked up by a worker.
func RecordJobStarted() { jobsRunning.Inc() }

// RecordJobFinished records a terminal job and how long its download ran.
// A zero duration means the job never executed.
func RecordJobFinished(state string, d time.Duration) {
	jobsFinished.WithLabelValues(state).Inc()
	if d > 0 {
		jobsRunning.Dec()
		downloadDuration.WithLabelValues(state).Observe(d.Seconds())
	}
}

func SetQueueDepth(n int) { queueDepth.Set(float64(n)) }

// RecordMetadataFetch records one metadata fetch outcome.
func RecordMetadataFetch(outcome string, d time.Duration) {
	metadataFetches.WithLabelValues(outcome).Inc()
	if outcome != "shared" {
		metadataFetchDuration.Observe(d.Seconds())
	}
}
