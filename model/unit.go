package model

import "fmt"

// Keywords is the capability set of a unit. The flags are independent;
// any combination is valid.
type Keywords struct {
	Guard     bool `json:"guard,omitempty" yaml:"guard"`         // may block any attacker
	Flank     bool `json:"flank,omitempty" yaml:"flank"`         // also reaches the opposite enemy lane
	Artillery bool `json:"artillery,omitempty" yaml:"artillery"` // strikes the player when the enemy front is empty
	Formation bool `json:"formation,omitempty" yaml:"formation"` // receives adjacency bonuses
}

// Condition gates which neighbors count toward an adjacency bonus.
type Condition string

const (
	SameTribe Condition = "same-tribe"
	AnyAlly   Condition = "any-ally"
	// ExprCondition evaluates AdjacencyBonus.Expr against each neighbor.
	ExprCondition Condition = "expr"
)

func (c Condition) Valid() bool {
	switch c {
	case SameTribe, AnyAlly, ExprCondition:
		return true
	}
	return false
}

// Stats is an attack/health pair.
type Stats struct {
	Attack int `json:"attack" yaml:"attack"`
	Health int `json:"health" yaml:"health"`
}

func (s Stats) Add(o Stats) Stats {
	return Stats{Attack: s.Attack + o.Attack, Health: s.Health + o.Health}
}

func (s Stats) Scale(n int) Stats {
	return Stats{Attack: s.Attack * n, Health: s.Health * n}
}

// AdjacencyBonus is the per-neighbor delta granted to a formation unit.
type AdjacencyBonus struct {
	Delta     Stats     `json:"delta" yaml:"delta"`
	Condition Condition `json:"condition" yaml:"condition"`
	Expr      string    `json:"expr,omitempty" yaml:"expr"` // only for ExprCondition
}

// Unit is a combat card placed (or about to be placed) on the board.
// Attack and Health are base values; the engine never writes to them.
// Bonuses land in the derived effective view instead.
type Unit struct {
	ID            string          `json:"id"`
	CardID        string          `json:"cardId"`
	Name          string          `json:"name"`
	Attack        int             `json:"attack"`
	Health        int             `json:"health"`
	Tribe         string          `json:"tribe"`
	Cost          int             `json:"cost"`
	Keywords      Keywords        `json:"keywords"`
	PreferredLane *LaneKind       `json:"preferredLane,omitempty"`
	Adjacency     *AdjacencyBonus `json:"adjacency,omitempty"`

	bonus Stats // recomputed from scratch by the formation calculator
}

func (u *Unit) String() string {
	return fmt.Sprintf("%s(%s)", u.Name, u.ID)
}

// Base returns the unmodified stats.
func (u *Unit) Base() Stats { return Stats{Attack: u.Attack, Health: u.Health} }

// Bonus returns the adjacency bonus currently applied.
func (u *Unit) Bonus() Stats { return u.bonus }

// Effective returns base stats plus the current adjacency bonus.
func (u *Unit) Effective() Stats { return u.Base().Add(u.bonus) }

// SetBonus replaces the applied bonus. It overwrites rather than adds so
// repeated recomputation never compounds.
func (u *Unit) SetBonus(b Stats) { u.bonus = b }

// Lane returns the preferred lane, defaulting to Melee.
func (u *Unit) Lane() LaneKind {
	if u.PreferredLane != nil {
		return *u.PreferredLane
	}
	return Melee
}

// View returns a value copy safe to hand to external consumers.
func (u *Unit) View() UnitView {
	return UnitView{
		ID:        u.ID,
		CardID:    u.CardID,
		Name:      u.Name,
		Tribe:     u.Tribe,
		Cost:      u.Cost,
		Keywords:  u.Keywords,
		Base:      u.Base(),
		Effective: u.Effective(),
	}
}

// UnitView is an immutable copy of a unit's observable state.
type UnitView struct {
	ID        string   `json:"id"`
	CardID    string   `json:"cardId"`
	Name      string   `json:"name"`
	Tribe     string   `json:"tribe"`
	Cost      int      `json:"cost"`
	Keywords  Keywords `json:"keywords"`
	Base      Stats    `json:"base"`
	Effective Stats    `json:"effective"`
}
