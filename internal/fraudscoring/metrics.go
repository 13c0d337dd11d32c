package fraudscoring

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var reviewsScoredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "fraud_scoring_reviews_scored_total",
	Help: "Reviews scored by the fraud-scoring service",
}, []string{"fraudulent"})

func recordScore(fraudulent bool) {
	reviewsScoredTotal.WithLabelValues(strconv.FormatBool(fraudulent)).Inc()
}
