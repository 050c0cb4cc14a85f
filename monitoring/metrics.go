// Package monitoring exposes prometheus metrics for the risk core.
package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	signalsChecked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskcore_signals_checked_total",
			Help: "Signals evaluated by the risk monitor, by outcome",
		},
		[]string{"result"},
	)

	ordersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskcore_orders_created_total",
			Help: "Orders registered by the portfolio manager",
		},
		[]string{"symbol", "action"},
	)

	fillsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "riskcore_fills_processed_total",
			Help: "Fill responses ingested, by broker status",
		},
		[]string{"status"},
	)

	killSwitchActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "riskcore_kill_switch_active",
			Help: "1 while the kill switch is active",
		},
	)

	dailyPnL = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "riskcore_daily_pnl",
			Help: "Realized plus unrealized PnL for the current trading day",
		},
	)
)

func init() {
	prometheus.MustRegister(signalsChecked)
	prometheus.MustRegister(ordersCreated)
	prometheus.MustRegister(fillsProcessed)
	prometheus.MustRegister(killSwitchActive)
	prometheus.MustRegister(dailyPnL)
}

func SignalChecked(approved bool) {
	if approved {
		signalsChecked.WithLabelValues("approved").Inc()
	} else {
		signalsChecked.WithLabelValues("rejected").Inc()
	}
}

func OrderCreated(symbol, action string) {
	ordersCreated.WithLabelValues(symbol, action).Inc()
}

func FillProcessed(status string) {
	fillsProcessed.WithLabelValues(status).Inc()
}

func SetKillSwitchActive(active bool) {
	if active {
		killSwitchActive.Set(1)
	} else {
		killSwitchActive.Set(0)
	}
}

func SetDailyPnL(v float64) {
	dailyPnL.Set(v)
}

// Handler serves the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
