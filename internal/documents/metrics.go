package documents

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var documentsVerifiedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "documents_verified_total",
	Help: "Documents run through the verification pipeline, by verdict",
}, []string{"authentic"})

func recordVerification(authentic bool) {
	documentsVerifiedTotal.WithLabelValues(strconv.FormatBool(authentic)).Inc()
}
