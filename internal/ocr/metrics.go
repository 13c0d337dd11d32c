package ocr

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var ocrAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "ocr_attempts_total",
	Help: "OCR provider attempts by outcome (success, empty, error)",
}, []string{"provider", "outcome"})

func recordAttempt(provider, outcome string) {
	ocrAttemptsTotal.WithLabelValues(provider, outcome).Inc()
}
