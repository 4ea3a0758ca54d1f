package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	PredictionsSaved = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "polla_predictions_saved_total",
		Help: "predictions created or rewritten",
	})
	LiveFeedsActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "polla_live_feeds_active",
		Help: "open live leaderboard feeds",
	})
	LiveSnapshotsEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "polla_live_snapshots_emitted_total",
		Help: "leaderboard snapshots pushed to live feeds",
	})
	NotificationsSent = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "polla_notifications_sent_total",
		Help: "push notifications by outcome",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(PredictionsSaved, LiveFeedsActive, LiveSnapshotsEmitted, NotificationsSent)
}

// Handler serves the prometheus scrape endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
