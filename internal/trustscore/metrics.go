package trustscore

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	trustScoreCalculationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trust_score_calculations_total",
		Help: "Trust score calculations by trigger",
	}, []string{"trigger"})

	trustScoreValue = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trust_score_value",
		Help:    "Distribution of calculated trust scores",
		Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
	})
)

func recordCalculation(trigger string, score int) {
	trustScoreCalculationsTotal.WithLabelValues(trigger).Inc()
	trustScoreValue.Observe(float64(score))
}
