package battlefield

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/nstehr/bulwark/model"
)

var (
	ErrCapacityExceeded = errors.New("lane capacity exceeded")
	ErrInvalidIndex     = errors.New("invalid lane index")
	ErrNotFound         = errors.New("unit not found in lane")
	ErrDuplicateUnit    = errors.New("unit already on battlefield")
	ErrNilUnit          = errors.New("nil unit")
	ErrInvalidLane      = errors.New("invalid side or lane")
)

// Capacities is the maximum number of units per lane kind. Both sides use
// the same limits.
type Capacities struct {
	Melee  int
	Ranged int
}

// DefaultCapacities is the reference rule set.
var DefaultCapacities = Capacities{Melee: 4, Ranged: 3}

// Of returns the capacity for a lane kind.
func (c Capacities) Of(l model.LaneKind) int {
	if l == model.Ranged {
		return c.Ranged
	}
	return c.Melee
}

// LaneHook runs after a lane's contents change. units is the lane's live
// sequence in index order; hooks may update derived unit state but must not
// retain or reorder the slice.
type LaneHook func(side model.Side, lane model.LaneKind, units []*model.Unit)

type Option func(*Battlefield)

// WithLaneHook registers a hook invoked after every successful Insert,
// Remove and Reset.
func WithLaneHook(h LaneHook) Option {
	return func(b *Battlefield) { b.hook = h }
}

type lane struct {
	kind     model.LaneKind
	capacity int
	units    []*model.Unit
}

// Battlefield holds the four lanes of a single battle. It is not safe for
// concurrent use; each battle owns its own instance.
type Battlefield struct {
	caps  Capacities
	lanes [2][2]*lane // [side][lane kind]
	hook  LaneHook
}

// New creates an empty battlefield. Negative capacities are treated as zero.
func New(caps Capacities, opts ...Option) *Battlefield {
	caps.Melee = max(caps.Melee, 0)
	caps.Ranged = max(caps.Ranged, 0)
	b := &Battlefield{caps: caps}
	for _, opt := range opts {
		opt(b)
	}
	b.build()
	return b
}

func (b *Battlefield) build() {
	for _, s := range model.Sides {
		for _, l := range model.Lanes {
			c := b.caps.Of(l)
			b.lanes[s][l] = &lane{kind: l, capacity: c, units: make([]*model.Unit, 0, c)}
		}
	}
}

func (b *Battlefield) lane(side model.Side, l model.LaneKind) (*lane, error) {
	if !side.Valid() || !l.Valid() {
		return nil, fmt.Errorf("%w: %s/%s", ErrInvalidLane, side, l)
	}
	return b.lanes[side][l], nil
}

// Insert places u at index within the side's lane, shifting later units
// outward. index may equal the lane length to append.
func (b *Battlefield) Insert(side model.Side, l model.LaneKind, index int, u *model.Unit) error {
	ln, err := b.lane(side, l)
	if err != nil {
		return err
	}
	if u == nil {
		return ErrNilUnit
	}
	if _, _, ok := b.Find(u.ID); ok {
		return fmt.Errorf("%w: %s", ErrDuplicateUnit, u.ID)
	}
	if len(ln.units) >= ln.capacity {
		return fmt.Errorf("%w: %s %s lane holds %d", ErrCapacityExceeded, side, l, ln.capacity)
	}
	if index < 0 || index > len(ln.units) {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidIndex, index, len(ln.units))
	}

	ln.units = slices.Insert(ln.units, index, u)
	slog.Debug("unit inserted", "side", side, "lane", l, "index", index, "unit", u.ID)
	b.changed(side, ln)
	return nil
}

// Remove takes the unit with the given ID out of the side's lane and closes
// the gap. The removed unit is returned with its adjacency bonus cleared.
func (b *Battlefield) Remove(side model.Side, l model.LaneKind, unitID string) (*model.Unit, error) {
	ln, err := b.lane(side, l)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(ln.units, func(u *model.Unit) bool { return u.ID == unitID })
	if i < 0 {
		return nil, fmt.Errorf("%w: %s in %s %s lane", ErrNotFound, unitID, side, l)
	}

	u := ln.units[i]
	ln.units = slices.Delete(ln.units, i, i+1)
	u.SetBonus(model.Stats{})
	slog.Debug("unit removed", "side", side, "lane", l, "index", i, "unit", unitID)
	b.changed(side, ln)
	return u, nil
}

// Reset empties every lane and restores the configured capacities.
func (b *Battlefield) Reset() {
	for _, s := range model.Sides {
		for _, l := range model.Lanes {
			for _, u := range b.lanes[s][l].units {
				u.SetBonus(model.Stats{})
			}
		}
	}
	b.build()
	for _, s := range model.Sides {
		for _, l := range model.Lanes {
			b.changed(s, b.lanes[s][l])
		}
	}
}

func (b *Battlefield) changed(side model.Side, ln *lane) {
	if b.hook != nil {
		b.hook(side, ln.kind, ln.units)
	}
}

// Units returns the units in a side's lane in index order. The returned
// slice is a copy; the units themselves are shared.
func (b *Battlefield) Units(side model.Side, l model.LaneKind) []*model.Unit {
	ln, err := b.lane(side, l)
	if err != nil {
		return nil
	}
	return slices.Clone(ln.units)
}

// Len returns the number of units in a side's lane.
func (b *Battlefield) Len(side model.Side, l model.LaneKind) int {
	ln, err := b.lane(side, l)
	if err != nil {
		return 0
	}
	return len(ln.units)
}

// Capacity returns the maximum size of a side's lane.
func (b *Battlefield) Capacity(side model.Side, l model.LaneKind) int {
	ln, err := b.lane(side, l)
	if err != nil {
		return 0
	}
	return ln.capacity
}

// Find locates a unit anywhere on the board.
func (b *Battlefield) Find(unitID string) (model.Side, model.Position, bool) {
	for _, s := range model.Sides {
		for _, l := range model.Lanes {
			for i, u := range b.lanes[s][l].units {
				if u.ID == unitID {
					return s, model.Position{Lane: l, Index: i}, true
				}
			}
		}
	}
	return 0, model.Position{}, false
}

// Unit returns the unit with the given ID, or nil.
func (b *Battlefield) Unit(unitID string) *model.Unit {
	s, pos, ok := b.Find(unitID)
	if !ok {
		return nil
	}
	return b.lanes[s][pos.Lane].units[pos.Index]
}

// Snapshot copies the full board into values that share no memory with
// the battlefield.
func (b *Battlefield) Snapshot() model.Snapshot {
	return model.Snapshot{
		Player: b.sideView(model.Player),
		Enemy:  b.sideView(model.Enemy),
	}
}

func (b *Battlefield) sideView(side model.Side) model.SideView {
	return model.SideView{
		Melee:  b.laneView(b.lanes[side][model.Melee]),
		Ranged: b.laneView(b.lanes[side][model.Ranged]),
	}
}

func (b *Battlefield) laneView(ln *lane) model.LaneView {
	units := make([]model.UnitView, len(ln.units))
	for i, u := range ln.units {
		units[i] = u.View()
	}
	return model.LaneView{Kind: ln.kind, Capacity: ln.capacity, Units: units}
}
