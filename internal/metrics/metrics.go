package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "statarb_cycles_total", Help: "Evaluation cycles run"},
	)
	SkippedCyclesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "statarb_skipped_cycles_total", Help: "Cycles skipped before a decision"},
		[]string{"reason"},
	)
	DecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "statarb_decisions_total", Help: "Decisions by action"},
		[]string{"action"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "statarb_orders_total", Help: "Order legs submitted"},
		[]string{"pair", "side"},
	)
	ZScore = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "statarb_zscore", Help: "Latest computed z-score"},
	)
)

func init() {
	prometheus.MustRegister(CyclesTotal, SkippedCyclesTotal, DecisionsTotal, OrdersTotal, ZScore)
}

// Serve exposes /metrics plus the strategy status snapshot on /status.
func Serve(addr string, status http.HandlerFunc) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if status != nil {
		mux.HandleFunc("/status", status)
	}
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
