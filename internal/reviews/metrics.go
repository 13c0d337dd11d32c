package reviews

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reviewsEvaluatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reviews_evaluated_total",
		Help: "Reviews run through fraud evaluation, by verification outcome",
	}, []string{"verified"})

	reviewCredibility = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "review_credibility",
		Help:    "Credibility assigned to evaluated reviews",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})
)

func recordEvaluation(verified bool, credibility int) {
	reviewsEvaluatedTotal.WithLabelValues(strconv.FormatBool(verified)).Inc()
	reviewCredibility.Observe(float64(credibility))
}
