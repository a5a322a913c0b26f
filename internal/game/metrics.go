package game

import "github.com/prometheus/client_golang/prometheus"

var (
	tapsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "game_taps_total",
		Help: "Successful taps across all sessions",
	})
	tapsRejected = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "game_taps_rejected_total",
		Help: "Taps rejected for insufficient energy",
	})
	purchasesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "game_upgrade_purchases_total",
		Help: "Successful upgrade purchases",
	}, []string{"upgrade_type"})
	comboStepUps = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "game_combo_stepups_total",
		Help: "Combo multiplier step-up bonuses issued",
	})
	luckyTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "game_lucky_taps_total",
		Help: "Lucky tap bonus events triggered",
	})
	flushTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "game_snapshot_flush_total",
		Help: "Session snapshots flushed to the users table",
	})
	flushErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "game_snapshot_flush_errors_total",
		Help: "Failed snapshot flushes (retried on the next tick)",
	})
)

func init() {
	prometheus.MustRegister(tapsTotal, tapsRejected, purchasesTotal, comboStepUps, luckyTotal, flushTotal, flushErrors)
}
