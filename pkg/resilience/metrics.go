package resilience

import (
	"fmt"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sony/gobreaker"
)

// Breakers guard outbound dependencies (OCR engines, completion API, fraud
// service), so every series is keyed by the dependency name.
var (
	dependencyState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "crediscore",
		Subsystem: "dependency",
		Name:      "breaker_state",
		Help:      "Breaker state per dependency (0=closed, 0.5=half-open, 1=open)",
	}, []string{"dependency"})

	dependencyCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crediscore",
		Subsystem: "dependency",
		Name:      "calls_total",
		Help:      "Calls routed through a dependency breaker, by outcome",
	}, []string{"dependency", "outcome"})

	dependencyTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crediscore",
		Subsystem: "dependency",
		Name:      "breaker_transitions_total",
		Help:      "Breaker state transitions per dependency",
	}, []string{"dependency", "from", "to"})

	anonymousBreakers uint64
)

var stateValues = map[gobreaker.State]float64{
	gobreaker.StateClosed:   0,
	gobreaker.StateHalfOpen: 0.5,
	gobreaker.StateOpen:     1,
}

func nextBreakerName(base string) string {
	if base != "" {
		return base
	}
	return fmt.Sprintf("dependency-%d", atomic.AddUint64(&anonymousBreakers, 1))
}

func recordBreakerState(name string, state gobreaker.State) {
	v, ok := stateValues[state]
	if !ok {
		v = -1
	}
	dependencyState.WithLabelValues(name).Set(v)
}

func recordBreakerStateChange(name string, from, to gobreaker.State) {
	dependencyTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
	recordBreakerState(name, to)
}

func recordBreakerRequest(name string) {
	dependencyCalls.WithLabelValues(name, "attempt").Inc()
}

func recordBreakerFailure(name string) {
	dependencyCalls.WithLabelValues(name, "failure").Inc()
}

func recordBreakerFallback(name string) {
	dependencyCalls.WithLabelValues(name, "fallback").Inc()
}
