package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	OrdersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bistro_orders_created_total",
		Help: "Number of orders accepted by the storefront",
	})

	StatusUpdates = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bistro_order_status_updates_total",
		Help: "Number of order status changes by resulting status",
	}, []string{"status"})

	OrdersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bistro_orders_cancelled_total",
		Help: "Number of customer-initiated cancellations",
	})

	PollCycles = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bistro_tracker_poll_cycles_total",
		Help: "Number of completed tracker poll cycles",
	})

	PollErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bistro_tracker_poll_errors_total",
		Help: "Number of failed order lookups during polling",
	})
)

// Handler serves every registered counter. The storefront server and
// the tracker daemon both mount it on /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}
