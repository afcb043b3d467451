package model

// LaneView is one side's lane as seen from outside the engine.
type LaneView struct {
	Kind     LaneKind   `json:"kind"`
	Capacity int        `json:"capacity"`
	Units    []UnitView `json:"units"`
}

// SideView holds both lanes of one side.
type SideView struct {
	Melee  LaneView `json:"melee"`
	Ranged LaneView `json:"ranged"`
}

// Lane returns the view for the given lane kind.
func (s SideView) Lane(l LaneKind) LaneView {
	if l == Ranged {
		return s.Ranged
	}
	return s.Melee
}

// Snapshot is a read-only copy of the whole board. It shares no memory
// with the battlefield it was taken from.
type Snapshot struct {
	Player SideView `json:"player"`
	Enemy  SideView `json:"enemy"`
}

// Side returns the view for the given side.
func (s Snapshot) Side(side Side) SideView {
	if side == Enemy {
		return s.Enemy
	}
	return s.Player
}

// UnitCount returns the number of units on the whole board.
func (s Snapshot) UnitCount() int {
	n := 0
	for _, sv := range []SideView{s.Player, s.Enemy} {
		n += len(sv.Melee.Units) + len(sv.Ranged.Units)
	}
	return n
}
