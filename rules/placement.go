package rules

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nstehr/bulwark/battlefield"
	"github.com/nstehr/bulwark/model"
)

// CanPlace reports whether index is a legal slot in the side's lane: the
// lane must have room and the index must lie in [0, len]. Keywords, cost
// and turn state play no part.
func (e *Engine) CanPlace(side model.Side, u *model.Unit, lane model.LaneKind, index int) bool {
	return e.checkPlacement(side, u, lane, index) == nil
}

// Place validates and inserts u, then lets the board recompute formation
// bonuses for the lane. It returns false without mutating anything when
// the placement is illegal.
func (e *Engine) Place(side model.Side, u *model.Unit, lane model.LaneKind, index int) bool {
	return e.PlaceErr(side, u, lane, index) == nil
}

// PlaceErr is Place with the rejection reason.
func (e *Engine) PlaceErr(side model.Side, u *model.Unit, lane model.LaneKind, index int) error {
	if err := e.checkPlacement(side, u, lane, index); err != nil {
		e.reject(side, u, lane, index, err)
		return err
	}
	if err := e.Board.Insert(side, lane, index, u); err != nil {
		e.reject(side, u, lane, index, err)
		return err
	}
	e.metrics.placement(lane, "accepted")
	return nil
}

func (e *Engine) checkPlacement(side model.Side, u *model.Unit, lane model.LaneKind, index int) error {
	if u == nil {
		return battlefield.ErrNilUnit
	}
	if !side.Valid() || !lane.Valid() {
		return fmt.Errorf("%w: %s/%s", battlefield.ErrInvalidLane, side, lane)
	}
	n, c := e.Board.Len(side, lane), e.Board.Capacity(side, lane)
	if n >= c {
		return fmt.Errorf("%w: %s %s lane holds %d", battlefield.ErrCapacityExceeded, side, lane, c)
	}
	if index < 0 || index > n {
		return fmt.Errorf("%w: %d not in [0, %d]", battlefield.ErrInvalidIndex, index, n)
	}
	return nil
}

func (e *Engine) reject(side model.Side, u *model.Unit, lane model.LaneKind, index int, err error) {
	e.metrics.placement(lane, reasonOf(err))
	id := ""
	if u != nil {
		id = u.ID
	}
	slog.Debug("placement rejected", "side", side, "lane", lane, "index", index, "unit", id, "error", err)
}

// reasonOf maps an engine error to a stable, wire-friendly code.
func reasonOf(err error) string {
	switch {
	case errors.Is(err, battlefield.ErrCapacityExceeded):
		return "capacity_exceeded"
	case errors.Is(err, battlefield.ErrInvalidIndex):
		return "invalid_index"
	case errors.Is(err, battlefield.ErrNotFound):
		return "not_found"
	case errors.Is(err, battlefield.ErrDuplicateUnit):
		return "duplicate_unit"
	case errors.Is(err, ErrNoLegalTarget):
		return "no_legal_target"
	}
	return "bad_request"
}

// Reason exposes the error code mapping to transport layers.
func Reason(err error) string { return reasonOf(err) }
