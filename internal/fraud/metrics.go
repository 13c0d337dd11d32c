package fraud

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeFraudulent  = "fraudulent"
	outcomeClean       = "clean"
	outcomeUnavailable = "unavailable"
)

var reviewFraudChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "review_fraud_checks_total",
	Help: "Review fraud checks by outcome",
}, []string{"outcome"})

func recordCheck(outcome string) {
	reviewFraudChecksTotal.WithLabelValues(outcome).Inc()
}
