// Package metrics exposes Prometheus counters and histograms for the bot.
// Most values are fed from the event bus so services stay unaware of it.
package metrics

import (
	"net/http"

	"github.com/OperacionalChopp/botchopp/internal/events"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Webhook request statuses
const (
	StatusAccepted     = "accepted"
	StatusRejected     = "rejected"
	StatusUnauthorized = "unauthorized"
	StatusRateLimited  = "rate_limited"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	registry *prometheus.Registry

	// Webhook metrics
	WebhookRequestsTotal   *prometheus.CounterVec
	WebhookDurationSeconds prometheus.Histogram

	// Conversation metrics
	UpdatesTotal *prometheus.CounterVec
	AnswersTotal *prometheus.CounterVec

	// AI metrics
	AICallsTotal     *prometheus.CounterVec
	AILatencySeconds *prometheus.HistogramVec

	// Queue metrics
	JobFailuresTotal *prometheus.CounterVec
}

// New creates a Metrics instance with every metric registered on registry.
// A nil registry gets a fresh one.
func New(registry *prometheus.Registry) *Metrics {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		WebhookRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botchopp_webhook_requests_total",
				Help: "Total number of webhook requests by status",
			},
			[]string{"status"}, // status: accepted, rejected, unauthorized, rate_limited
		),

		WebhookDurationSeconds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "botchopp_webhook_duration_seconds",
				Help:    "Webhook handling duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
		),

		UpdatesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botchopp_updates_total",
				Help: "Total number of accepted Telegram updates by type",
			},
			[]string{"update_type"}, // update_type: text, callback, start
		),

		AnswersTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botchopp_answers_total",
				Help: "Total number of replies sent by outcome",
			},
			[]string{"outcome"},
		),

		AICallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botchopp_ai_calls_total",
				Help: "Total number of assistant calls by provider and status",
			},
			[]string{"provider", "status"}, // status: success, error
		),

		AILatencySeconds: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "botchopp_ai_latency_seconds",
				Help:    "Assistant call latency in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
			},
			[]string{"provider"},
		),

		JobFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "botchopp_job_failures_total",
				Help: "Total number of failed job attempts by kind and result",
			},
			[]string{"kind", "result"}, // result: retried, dropped
		),
	}
}

// Registry returns the registry the metrics are registered on
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordWebhook records one webhook request
func (m *Metrics) RecordWebhook(status string, seconds float64) {
	m.WebhookRequestsTotal.WithLabelValues(status).Inc()
	m.WebhookDurationSeconds.Observe(seconds)
}

// Subscribe counts conversation, assistant and queue events published on
// bus. Handlers run asynchronously so publishers never wait on metrics.
func (m *Metrics) Subscribe(bus events.EventBus) error {
	subscriptions := map[string]interface{}{
		events.TopicMessageReceived:  m.onMessageReceived,
		events.TopicQuestionAnswered: m.onQuestionAnswered,
		events.TopicAIDelegated:      m.onAIDelegated,
		events.TopicJobFailed:        m.onJobFailed,
	}

	for topic, handler := range subscriptions {
		if err := bus.SubscribeAsync(topic, handler); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) onMessageReceived(event events.MessageReceived) {
	m.UpdatesTotal.WithLabelValues(event.UpdateType).Inc()
}

func (m *Metrics) onQuestionAnswered(event events.QuestionAnswered) {
	m.AnswersTotal.WithLabelValues(event.Outcome).Inc()
}

func (m *Metrics) onAIDelegated(event events.AIDelegated) {
	status := "success"
	if !event.Success {
		status = "error"
	}
	m.AICallsTotal.WithLabelValues(event.Provider, status).Inc()
	m.AILatencySeconds.WithLabelValues(event.Provider).Observe(event.Latency.Seconds())
}

func (m *Metrics) onJobFailed(event events.JobFailed) {
	result := "retried"
	if event.Dropped {
		result = "dropped"
	}
	m.JobFailuresTotal.WithLabelValues(event.Kind, result).Inc()
}
