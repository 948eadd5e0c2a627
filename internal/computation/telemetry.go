package computation

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("gridgraph.computation")
	meter  = otel.Meter("gridgraph.computation")
)

var (
	runsTotal       metric.Int64Counter
	admissionsTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		runsTotal, metricsErr = meter.Int64Counter(
			"computation.runs",
			metric.WithDescription("Number of computations that finished executing"),
		)
		if metricsErr != nil {
			return
		}
		admissionsTotal, metricsErr = meter.Int64Counter(
			"computation.admissions",
			metric.WithDescription("Number of admission permits acquired"),
		)
	})
	return metricsErr
}
