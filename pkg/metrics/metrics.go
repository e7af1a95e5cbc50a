package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	JobsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fileserver_jobs_submitted_total",
		Help: "Connections accepted and enqueued to the worker pool.",
	})
	JobsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fileserver_jobs_completed_total",
		Help: "Jobs a worker ran to completion, including panicked ones.",
	})
	PanicsRecovered = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fileserver_worker_panics_recovered_total",
		Help: "Panics caught at the per-job boundary.",
	})
	QueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "fileserver_queue_depth",
		Help: "Jobs waiting in the pool queue.",
	})
	Responses = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "fileserver_responses_total",
		Help: "Responses written, by HTTP status code.",
	}, []string{"status"})
)

func init() {
	prometheus.MustRegister(JobsSubmitted, JobsCompleted, PanicsRecovered, QueueDepth, Responses)
}

// Serve exposes /metrics on its own listener. The file-serving
// path speaks raw TCP and never goes through net/http; this side
// channel is the only place the stdlib server appears.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(addr, mux)
}
