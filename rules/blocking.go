package rules

import (
	"github.com/nstehr/bulwark/model"
)

// CanBlock reports whether defender may intercept attacker. The defender
// must be on the board on the opposing side. Guard always may; anyone else
// must be a legal target of the attacker.
func (e *Engine) CanBlock(side model.Side, lane model.LaneKind, attacker, defender *model.Unit) bool {
	if defender == nil || attacker == nil || defender.ID == attacker.ID {
		return false
	}
	if dside, _, ok := e.Board.Find(defender.ID); !ok || dside != side.Opponent() {
		return false
	}
	if defender.Keywords.Guard {
		return true
	}
	return LegalTargets(e.Board, side, lane, attacker.Keywords).Contains(defender.ID)
}

// CanBlockIDs is CanBlock for two units already on the board.
func (e *Engine) CanBlockIDs(attackerID, defenderID string) (bool, error) {
	attacker, side, lane, err := e.locate(attackerID)
	if err != nil {
		return false, err
	}
	defender, dside, _, err := e.locate(defenderID)
	if err != nil {
		return false, err
	}
	if attackerID == defenderID || dside == side {
		return false, nil
	}
	return e.CanBlock(side, lane, attacker, defender), nil
}

// Blockers lists every opposing unit able to block attacker, in lane then
// index order.
func (e *Engine) Blockers(side model.Side, lane model.LaneKind, attacker *model.Unit) []*model.Unit {
	if attacker == nil {
		return nil
	}
	targets := LegalTargets(e.Board, side, lane, attacker.Keywords)

	var out []*model.Unit
	enemy := side.Opponent()
	for _, l := range model.Lanes {
		for _, u := range e.Board.Units(enemy, l) {
			if u.Keywords.Guard || targets.Contains(u.ID) {
				out = append(out, u)
			}
		}
	}
	return out
}

// BlockersFor is Blockers for an attacker already on the board.
func (e *Engine) BlockersFor(attackerID string) ([]*model.Unit, error) {
	attacker, side, lane, err := e.locate(attackerID)
	if err != nil {
		return nil, err
	}
	return e.Blockers(side, lane, attacker), nil
}
