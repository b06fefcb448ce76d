package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implementa Recorder com coletores Prometheus.
type PrometheusRecorder struct {
	uploadAttempts   *prometheus.CounterVec
	uploadConflicts  *prometheus.CounterVec
	uploadTotal      *prometheus.CounterVec
	uploadDuration   *prometheus.HistogramVec
	uploadCycles     *prometheus.HistogramVec
	recordOpsTotal   *prometheus.CounterVec
	recordOpDuration *prometheus.HistogramVec
	httpTotal        *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewPrometheusRecorder cria os coletores e os registra em reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		uploadAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conferencia_upload_attempts_total",
				Help: "Ciclos de consulta e escrita executados por uploads",
			},
			[]string{"provider"},
		),
		uploadConflicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conferencia_upload_conflicts_total",
				Help: "Escritas rejeitadas por revisão desatualizada",
			},
			[]string{"provider"},
		),
		uploadTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conferencia_uploads_total",
				Help: "Uploads finalizados por desfecho",
			},
			[]string{"provider", "outcome"},
		),
		uploadDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conferencia_upload_duration_seconds",
				Help:    "Duração total de uploads, incluindo retentativas",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"provider", "outcome"},
		),
		uploadCycles: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conferencia_upload_cycles",
				Help:    "Ciclos usados por upload",
				Buckets: []float64{1, 2, 3, 4, 5, 10},
			},
			[]string{"provider"},
		),
		recordOpsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conferencia_record_operations_total",
				Help: "Operações no armazenamento de registros",
			},
			[]string{"backend", "collection", "operation", "success"},
		),
		recordOpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conferencia_record_operation_duration_seconds",
				Help:    "Duração das operações no armazenamento de registros",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"backend", "collection", "operation"},
		),
		httpTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "conferencia_http_requests_total",
				Help: "Requisições HTTP atendidas",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "conferencia_http_request_duration_seconds",
				Help:    "Duração das requisições HTTP",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(
		r.uploadAttempts,
		r.uploadConflicts,
		r.uploadTotal,
		r.uploadDuration,
		r.uploadCycles,
		r.recordOpsTotal,
		r.recordOpDuration,
		r.httpTotal,
		r.httpDuration,
	)

	return r
}

func (r *PrometheusRecorder) RecordUploadAttempt(provider string) {
	r.uploadAttempts.WithLabelValues(provider).Inc()
}

func (r *PrometheusRecorder) RecordUploadConflict(provider string) {
	r.uploadConflicts.WithLabelValues(provider).Inc()
}

func (r *PrometheusRecorder) RecordUpload(provider, outcome string, attempts int, duration time.Duration) {
	r.uploadTotal.WithLabelValues(provider, outcome).Inc()
	r.uploadDuration.WithLabelValues(provider, outcome).Observe(duration.Seconds())
	r.uploadCycles.WithLabelValues(provider).Observe(float64(attempts))
}

func (r *PrometheusRecorder) RecordRecordOperation(backend, collection, operation string, success bool, duration time.Duration) {
	r.recordOpsTotal.WithLabelValues(backend, collection, operation, strconv.FormatBool(success)).Inc()
	r.recordOpDuration.WithLabelValues(backend, collection, operation).Observe(duration.Seconds())
}

func (r *PrometheusRecorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	r.httpTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
