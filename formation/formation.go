package formation

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/nstehr/bulwark/model"
)

// Card is the base-stat view of a unit exposed to condition expressions.
// Effective stats are left out since they change mid-recompute.
type Card struct {
	ID        string
	Name      string
	Tribe     string
	Attack    int
	Health    int
	Cost      int
	Guard     bool
	Flank     bool
	Artillery bool
	Formation bool
}

func cardOf(u *model.Unit) Card {
	return Card{
		ID:        u.ID,
		Name:      u.Name,
		Tribe:     u.Tribe,
		Attack:    u.Attack,
		Health:    u.Health,
		Cost:      u.Cost,
		Guard:     u.Keywords.Guard,
		Flank:     u.Keywords.Flank,
		Artillery: u.Keywords.Artillery,
		Formation: u.Keywords.Formation,
	}
}

// NeighborEnv is the environment an expr condition is evaluated against,
// once per neighbor of a formation unit.
type NeighborEnv struct {
	Self     Card
	Neighbor Card
	Side     string
	Lane     string
}

// SameTribe reports whether the neighbor shares the formation unit's tribe.
func (e NeighborEnv) SameTribe() bool {
	return sameTribe(e.Self.Tribe, e.Neighbor.Tribe)
}

// Tribes match case-insensitively. Untribed units share no tribe.
func sameTribe(a, b string) bool {
	return a != "" && strings.EqualFold(a, b)
}

// Compile builds a boolean neighbor condition.
func Compile(src string) (*vm.Program, error) {
	prog, err := expr.Compile(src, expr.Env(NeighborEnv{}), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("compile condition %q: %w", src, err)
	}
	return prog, nil
}

type compiled struct {
	prog *vm.Program
	err  error
}

// Calculator recomputes adjacency bonuses for formation units. It caches
// compiled expr conditions and belongs to a single battle.
type Calculator struct {
	programs map[string]compiled
}

func NewCalculator() *Calculator {
	return &Calculator{programs: make(map[string]compiled)}
}

// Recompute sets every unit's bonus in a lane from its base stats and its
// current neighbors. Running it twice without a mutation in between yields
// the same effective stats. The signature matches battlefield.LaneHook.
func (c *Calculator) Recompute(side model.Side, lane model.LaneKind, units []*model.Unit) {
	for i, u := range units {
		u.SetBonus(c.Bonus(side, lane, units, i))
	}
}

// Bonus returns the adjacency bonus for the unit at index i.
func (c *Calculator) Bonus(side model.Side, lane model.LaneKind, units []*model.Unit, i int) model.Stats {
	u := units[i]
	if !u.Keywords.Formation || u.Adjacency == nil {
		return model.Stats{}
	}

	n := 0
	for _, j := range [2]int{i - 1, i + 1} {
		if j < 0 || j >= len(units) {
			continue
		}
		if c.counts(side, lane, u, units[j]) {
			n++
		}
	}
	return u.Adjacency.Delta.Scale(n)
}

func (c *Calculator) counts(side model.Side, lane model.LaneKind, u, neighbor *model.Unit) bool {
	switch u.Adjacency.Condition {
	case model.AnyAlly:
		return true
	case model.SameTribe:
		return sameTribe(u.Tribe, neighbor.Tribe)
	case model.ExprCondition:
		return c.eval(side, lane, u, neighbor)
	}
	return false
}

func (c *Calculator) eval(side model.Side, lane model.LaneKind, u, neighbor *model.Unit) bool {
	src := u.Adjacency.Expr
	p, ok := c.programs[src]
	if !ok {
		p.prog, p.err = Compile(src)
		c.programs[src] = p
		if p.err != nil {
			slog.Warn("adjacency condition rejected", "unit", u.ID, "error", p.err)
		}
	}
	if p.err != nil {
		return false
	}

	env := NeighborEnv{
		Self:     cardOf(u),
		Neighbor: cardOf(neighbor),
		Side:     side.String(),
		Lane:     lane.String(),
	}
	result, err := vm.Run(p.prog, env)
	if err != nil {
		slog.Warn("adjacency condition error", "unit", u.ID, "neighbor", neighbor.ID, "error", err)
		return false
	}
	match, ok := result.(bool)
	return ok && match
}
