// Package metrics expone los contadores Prometheus del bot en /metrics.
//
//   - ladderbot_orders_placed_total{side} — órdenes límite colocadas
//   - ladderbot_orders_recreated_total    — órdenes desaparecidas recreadas
//   - ladderbot_orders_filled_total       — fills inferidos
//   - ladderbot_take_profits_total        — patas de take-profit colocadas
//   - ladderbot_tracked_orders            — órdenes vivas en el ledger (gauge)
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ordersPlaced = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ladderbot_orders_placed_total",
			Help: "Limit orders placed on the CLOB",
		},
		[]string{"side"},
	)

	ordersRecreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ladderbot_orders_recreated_total",
			Help: "Disappeared orders recreated with identical parameters",
		},
	)

	ordersFilled = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ladderbot_orders_filled_total",
			Help: "Orders inferred as filled",
		},
	)

	takeProfits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ladderbot_take_profits_total",
			Help: "Take-profit sell legs placed",
		},
	)

	trackedOrders = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ladderbot_tracked_orders",
			Help: "Live orders currently tracked by the ledger",
		},
	)
)

func IncOrderPlaced(side string)  { ordersPlaced.WithLabelValues(side).Inc() }
func IncOrderRecreated()          { ordersRecreated.Inc() }
func IncOrderFilled()             { ordersFilled.Inc() }
func IncTakeProfitPlaced()        { takeProfits.Inc() }
func SetTrackedOrders(n int)      { trackedOrders.Set(float64(n)) }

// Handler devuelve el handler HTTP de /metrics.
func Handler() http.Handler { return promhttp.Handler() }
