package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds every collector served on /metrics
	Registry = prometheus.NewRegistry()

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency distributions.",
			Buckets: []float64{0.05, 0.1, 0.3, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"method", "path"},
	)

	FraudVerdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_fraud_verdicts_total",
			Help: "Positive fraud verdicts by rule and applied action.",
		},
		[]string{"rule", "action"},
	)

	EscrowTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_escrow_transitions_total",
			Help: "Order state transitions applied.",
		},
		[]string{"transition"},
	)

	SettlementOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_settlement_outcomes_total",
			Help: "Gateway callback outcomes.",
		},
		[]string{"outcome"},
	)

	WalletCredits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "market_wallet_credits_total",
			Help: "Wallet credits by source.",
		},
		[]string{"source"},
	)

	registerOnce sync.Once
)

// Init registers the collectors with Registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			HTTPRequestsTotal,
			HTTPRequestDuration,
			FraudVerdicts,
			EscrowTransitions,
			SettlementOutcomes,
			WalletCredits,
		)
	})
}

func RecordFraudVerdict(rule, action string) {
	FraudVerdicts.WithLabelValues(rule, action).Inc()
}

func RecordEscrowTransition(transition string) {
	EscrowTransitions.WithLabelValues(transition).Inc()
}

func RecordSettlement(outcome string) {
	SettlementOutcomes.WithLabelValues(outcome).Inc()
}

func RecordWalletCredit(source string) {
	WalletCredits.WithLabelValues(source).Inc()
}

// PrometheusMiddleware records request counts and latency per route template
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()

		c.Next()

		if path == "" {
			return
		}
		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// Handler serves Registry in the Prometheus exposition format
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
	return gin.WrapH(h)
}
