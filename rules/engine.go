package rules

import (
	"errors"
	"fmt"

	"github.com/nstehr/bulwark/battlefield"
	"github.com/nstehr/bulwark/formation"
	"github.com/nstehr/bulwark/model"
)

// ErrNoLegalTarget is returned when an attacker can reach neither a unit
// nor the opposing player.
var ErrNoLegalTarget = errors.New("no legal target")

// Engine bundles one battle's board with the placement, targeting and
// blocking rules. Each battle constructs its own Engine; nothing is shared
// between instances.
type Engine struct {
	Board     *battlefield.Battlefield
	formation *formation.Calculator
	metrics   *metrics
}

// NewEngine creates an engine over an empty battlefield. The formation
// calculator is installed as the board's lane hook so every mutation
// recomputes adjacency bonuses for the affected lane.
func NewEngine(caps battlefield.Capacities) (*Engine, error) {
	m, err := newMetrics()
	if err != nil {
		return nil, err
	}
	calc := formation.NewCalculator()
	return &Engine{
		Board:     battlefield.New(caps, battlefield.WithLaneHook(calc.Recompute)),
		formation: calc,
		metrics:   m,
	}, nil
}

// Remove takes a unit out of a lane, e.g. after death or a bounce effect.
func (e *Engine) Remove(side model.Side, lane model.LaneKind, unitID string) (*model.Unit, error) {
	return e.Board.Remove(side, lane, unitID)
}

// Reset clears the board between battles.
func (e *Engine) Reset() {
	e.Board.Reset()
}

// Snapshot returns a read-only copy of the board.
func (e *Engine) Snapshot() model.Snapshot {
	return e.Board.Snapshot()
}

// Recompute re-applies formation bonuses to a lane. Mutations already do
// this; it is exposed for callers that change a unit's definition in place.
func (e *Engine) Recompute(side model.Side, lane model.LaneKind) {
	e.formation.Recompute(side, lane, e.Board.Units(side, lane))
}

// locate returns the side and lane of a unit on the board.
func (e *Engine) locate(unitID string) (*model.Unit, model.Side, model.LaneKind, error) {
	side, pos, ok := e.Board.Find(unitID)
	if !ok {
		return nil, 0, 0, fmt.Errorf("%w: %s", battlefield.ErrNotFound, unitID)
	}
	return e.Board.Unit(unitID), side, pos.Lane, nil
}
