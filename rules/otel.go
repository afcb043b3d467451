package rules

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/nstehr/bulwark/model"
)

const instrumentationName = "github.com/nstehr/bulwark/rules"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// metrics are recorded against the global meter provider, which is a
// no-op until the host installs an SDK provider.
type metrics struct {
	placements metric.Int64Counter
	queries    metric.Int64Counter
}

func newMetrics() (*metrics, error) {
	m := meter()
	placements, err := m.Int64Counter(
		"bulwark.placements",
		metric.WithDescription("Placement attempts by result and lane"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating placements counter: %w", err)
	}
	queries, err := m.Int64Counter(
		"bulwark.targeting.queries",
		metric.WithDescription("Targeting queries by outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating targeting counter: %w", err)
	}
	return &metrics{placements: placements, queries: queries}, nil
}

func (m *metrics) placement(lane model.LaneKind, result string) {
	m.placements.Add(context.Background(), 1, metric.WithAttributes(
		attribute.String("lane", lane.String()),
		attribute.String("result", result),
	))
}

func (m *metrics) query(ts TargetSet) {
	outcome := "units"
	switch {
	case ts.Direct:
		outcome = "direct"
	case len(ts.Units) == 0:
		outcome = "none"
	}
	m.queries.Add(context.Background(), 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
