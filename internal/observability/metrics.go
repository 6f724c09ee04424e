package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Prometheus metrics for the RPC banking listener, grounded on the
// teacher's root metrics.go (same NewCounter/GaugeVec/HistogramVec idiom
// and the same promhttp handler wiring), renamed to this domain's
// concerns: dispatched operations, drop counts from the two loss gates,
// semantics cache hits, and subscription/account gauges.
var (
	RequestsReceivedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bankrpcd_requests_received_total",
		Help: "Total number of inbound datagrams that passed the inbound loss gate and decoded successfully",
	})

	RequestsDroppedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bankrpcd_requests_dropped_total",
		Help: "Total number of datagrams dropped, by stage (rate_limit, inbound_loss, decode, outbound_loss)",
	}, []string{"stage"})

	OpsDispatchedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bankrpcd_ops_dispatched_total",
		Help: "Total number of handler dispatches, by op_code and status_code",
	}, []string{"op_code", "status_code"})

	SemanticsCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bankrpcd_semantics_cache_hits_total",
		Help: "Total number of at_most_once requests answered from the cached-response history",
	})

	SemanticsCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bankrpcd_semantics_cache_misses_total",
		Help: "Total number of at_most_once requests that dispatched and populated the history",
	})

	ActiveSubscriptions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bankrpcd_active_subscriptions",
		Help: "Current number of non-expired monitor subscriptions",
	})

	AccountsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bankrpcd_accounts_total",
		Help: "Current number of open accounts",
	})

	FanOutDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bankrpcd_fanout_dropped_total",
		Help: "Total number of fan-out or hook tasks dropped because the worker pool queue was full",
	})
)

func init() {
	prometheus.MustRegister(
		RequestsReceivedTotal,
		RequestsDroppedTotal,
		OpsDispatchedTotal,
		SemanticsCacheHitsTotal,
		SemanticsCacheMissesTotal,
		ActiveSubscriptions,
		AccountsTotal,
		FanOutDroppedTotal,
	)
}

// MetricsHandler returns the promhttp handler to mount at /metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
