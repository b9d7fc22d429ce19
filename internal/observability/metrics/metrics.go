package metrics

import "github.com/prometheus/client_golang/prometheus"

// IngestMetrics exposes counters/histograms for the MMS ingestion pipeline.
type IngestMetrics struct {
	webhookTotal   *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
	archivedBytes  prometheus.Counter
}

func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	m := &IngestMetrics{
		webhookTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "recipebox",
			Subsystem: "ingest",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound MMS webhooks by outcome",
		}, []string{"outcome"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "recipebox",
			Subsystem: "ingest",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of MMS webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
		archivedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "recipebox",
			Subsystem: "ingest",
			Name:      "archived_media_bytes_total",
			Help:      "Total bytes of media archived to the gallery",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.webhookTotal, m.webhookLatency, m.archivedBytes)
	return m
}

func (m *IngestMetrics) ObserveWebhook(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookTotal.WithLabelValues(outcome).Inc()
	m.webhookLatency.WithLabelValues(outcome).Observe(seconds)
}

func (m *IngestMetrics) AddArchivedBytes(n int) {
	if m == nil {
		return
	}
	m.archivedBytes.Add(float64(n))
}
