package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gramgram_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gramgram_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		},
		[]string{"method", "path"},
	)

	// Resultado das operações de ciclo de vida: "ok" ou o tipo de erro.
	LikeablePersonOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gramgram_likeable_person_operations_total",
			Help: "Likeable person lifecycle operations by outcome",
		},
		[]string{"operation", "result"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gramgram_incoming_cache_lookups_total",
			Help: "Incoming likeable people cache lookups",
		},
		[]string{"result"}, // hit, miss, error
	)

	PublishedEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gramgram_domain_events_published_total",
			Help: "Domain events handed to kafka",
		},
		[]string{"event_type", "result"},
	)

	ConsumedBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gramgram_kafka_consumed_batches_total",
			Help: "Kafka batches handed to consumers by outcome",
		},
		[]string{"topic", "result"},
	)
)
