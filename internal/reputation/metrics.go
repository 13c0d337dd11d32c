package reputation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	usersFlaggedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "users_flagged_total",
		Help: "Users flagged for suspicious review behaviour, by risk level",
	}, []string{"risk_level"})

	spamPenaltiesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spam_penalties_total",
		Help: "Reputation penalties applied for unverified review volume, by risk level",
	}, []string{"risk_level"})
)

func recordFlag(level RiskLevel) {
	usersFlaggedTotal.WithLabelValues(string(level)).Inc()
}

func recordSpamPenalty(level RiskLevel) {
	spamPenaltiesTotal.WithLabelValues(string(level)).Inc()
}
