package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	tracesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iolens_traces_received_total",
			Help: "Number of trace documents received from Kafka.",
		},
	)
	tracesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "iolens_traces_rejected_total",
			Help: "Number of trace documents that failed validation.",
		},
	)
	traceLoadTimestamp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "iolens_trace_last_load_timestamp_seconds",
			Help: "Unix time the held trace document was last replaced.",
		},
	)
	fileOperations = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "iolens_file_operations",
			Help: "Number of traced operations per file in the held document.",
		},
		[]string{"access_type", "file_name"},
	)
	fileBytes = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "iolens_file_transferred_kibibytes",
			Help: "Total request size per file in the held document, in KiB.",
		},
		[]string{"access_type", "file_name"},
	)
	fileDuration = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "iolens_file_duration_milliseconds",
			Help: "Total request duration per file in the held document, in ms.",
		},
		[]string{"access_type", "file_name"},
	)
	fileExtent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "iolens_file_max_extent_kibibytes",
			Help: "Largest offset+size touched per file in the held document, in KiB.",
		},
		[]string{"access_type", "file_name"},
	)
	runThroughput = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "iolens_run_throughput_kibibytes_per_second",
			Help: "Run-level throughput per access type (total size / total duration).",
		},
		[]string{"access_type"},
	)
)
