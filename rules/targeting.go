package rules

import (
	"fmt"
	"slices"

	"github.com/nstehr/bulwark/battlefield"
	"github.com/nstehr/bulwark/model"
)

// TargetSet is the outcome of a targeting query. Direct means the attack
// goes to the opposing player and Units is empty.
type TargetSet struct {
	Direct bool
	Units  []*model.Unit
}

// Empty reports whether the attacker can reach nothing at all.
func (t TargetSet) Empty() bool { return !t.Direct && len(t.Units) == 0 }

// Contains reports whether a unit is a legal target.
func (t TargetSet) Contains(unitID string) bool {
	return slices.ContainsFunc(t.Units, func(u *model.Unit) bool { return u.ID == unitID })
}

// IDs returns the target unit IDs in order.
func (t TargetSet) IDs() []string {
	ids := make([]string, len(t.Units))
	for i, u := range t.Units {
		ids[i] = u.ID
	}
	return ids
}

// Board is the read access targeting needs.
type Board interface {
	Units(side model.Side, lane model.LaneKind) []*model.Unit
}

// LegalTargets computes the defenders reachable by an attacker standing in
// lane on side with keywords kw. Units are listed melee lane first, then
// ranged, each in index order, without duplicates.
//
// Artillery only has an effect from the ranged lane. When it fires
// directly at the player it takes precedence over Flank: the opposite lane
// a ranged flanker adds is the enemy melee lane, which is empty in that
// case, so the outcome is always the bare direct attack.
func LegalTargets(b Board, side model.Side, lane model.LaneKind, kw model.Keywords) TargetSet {
	enemy := side.Opponent()
	frontEmpty := len(b.Units(enemy, model.Melee)) == 0

	var include [2]bool
	switch lane {
	case model.Melee:
		if frontEmpty {
			include[model.Ranged] = true // push-through
		} else {
			include[model.Melee] = true
		}
	case model.Ranged:
		if kw.Artillery && frontEmpty {
			return TargetSet{Direct: true}
		}
		include[model.Melee] = true
	default:
		return TargetSet{}
	}
	if kw.Flank {
		include[lane.Opposite()] = true
	}

	var out []*model.Unit
	seen := make(map[string]bool)
	for _, l := range model.Lanes {
		if !include[l] {
			continue
		}
		for _, u := range b.Units(enemy, l) {
			if seen[u.ID] {
				continue
			}
			seen[u.ID] = true
			out = append(out, u)
		}
	}
	return TargetSet{Units: out}
}

// Targets returns the legal defenders for attacker standing in lane on
// side. An empty, non-direct result comes back with ErrNoLegalTarget.
func (e *Engine) Targets(side model.Side, lane model.LaneKind, attacker *model.Unit) (TargetSet, error) {
	if attacker == nil {
		return TargetSet{}, battlefield.ErrNilUnit
	}
	ts := LegalTargets(e.Board, side, lane, attacker.Keywords)
	e.metrics.query(ts)
	if ts.Empty() {
		return ts, fmt.Errorf("%w: %s from %s %s lane", ErrNoLegalTarget, attacker.ID, side, lane)
	}
	return ts, nil
}

// TargetsFor looks up an attacker on the board and returns its targets.
func (e *Engine) TargetsFor(attackerID string) (TargetSet, error) {
	u, side, lane, err := e.locate(attackerID)
	if err != nil {
		return TargetSet{}, err
	}
	return e.Targets(side, lane, u)
}
