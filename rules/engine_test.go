package rules

import (
	"errors"
	"slices"
	"testing"

	"github.com/nstehr/bulwark/battlefield"
	"github.com/nstehr/bulwark/model"
)

func newEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(battlefield.DefaultCapacities)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return e
}

func mk(id string, kw model.Keywords) *model.Unit {
	return &model.Unit{ID: id, Name: id, Attack: 2, Health: 3, Keywords: kw}
}

// fill places units at the end of a lane.
func fill(t *testing.T, e *Engine, side model.Side, lane model.LaneKind, units ...*model.Unit) {
	t.Helper()
	for _, u := range units {
		if err := e.PlaceErr(side, u, lane, e.Board.Len(side, lane)); err != nil {
			t.Fatalf("PlaceErr(%s) failed: %v", u.ID, err)
		}
	}
}

func TestFormationScenario(t *testing.T) {
	e := newEngine(t)
	bonus := func(id string) *model.Unit {
		u := mk(id, model.Keywords{Formation: true})
		u.Adjacency = &model.AdjacencyBonus{Delta: model.Stats{Attack: 1, Health: 1}, Condition: model.AnyAlly}
		return u
	}
	a, b := bonus("A"), bonus("B")

	if !e.Place(model.Player, a, model.Melee, 0) {
		t.Fatal("Place(A, 0) rejected")
	}
	if got := a.Effective().Attack; got != 2 {
		t.Errorf("A alone: attack = %d, want 2", got)
	}
	if !e.Place(model.Player, b, model.Melee, 1) {
		t.Fatal("Place(B, 1) rejected")
	}
	for _, u := range []*model.Unit{a, b} {
		if got := u.Effective().Attack; got != 3 {
			t.Errorf("%s attack = %d, want base+1 = 3", u.ID, got)
		}
	}

	// A unit dropped between them gives each exactly one neighbor still,
	// but the newcomer sees two.
	c := bonus("C")
	if !e.Place(model.Player, c, model.Melee, 1) {
		t.Fatal("Place(C, 1) rejected")
	}
	if got := c.Effective(); got != (model.Stats{Attack: 4, Health: 5}) {
		t.Errorf("C effective = %+v, want 4/5", got)
	}

	if _, err := e.Remove(model.Player, model.Melee, "A"); err != nil {
		t.Fatalf("Remove(A) failed: %v", err)
	}
	if got := c.Effective().Attack; got != 3 {
		t.Errorf("C attack after A removed = %d, want 3", got)
	}
	if got := a.Effective().Attack; got != 2 {
		t.Errorf("removed A still carries a bonus: attack = %d", got)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	e := newEngine(t)
	u := mk("f", model.Keywords{Formation: true})
	u.Adjacency = &model.AdjacencyBonus{Delta: model.Stats{Attack: 2, Health: 1}, Condition: model.AnyAlly}
	fill(t, e, model.Enemy, model.Ranged, mk("l", model.Keywords{}), u, mk("r", model.Keywords{}))

	want := model.Stats{Attack: 6, Health: 5}
	for i := 0; i < 3; i++ {
		e.Recompute(model.Enemy, model.Ranged)
		if got := u.Effective(); got != want {
			t.Fatalf("effective = %+v, want %+v", got, want)
		}
	}
}

func TestCanPlace(t *testing.T) {
	e := newEngine(t)
	fill(t, e, model.Player, model.Ranged, mk("r1", model.Keywords{}), mk("r2", model.Keywords{}))

	tests := []struct {
		lane  model.LaneKind
		index int
		want  bool
	}{
		{model.Ranged, 2, true},  // capacity-1 units, append
		{model.Ranged, 0, true},  // front insert
		{model.Ranged, 3, false}, // gap
		{model.Ranged, -1, false},
		{model.Melee, 0, true},
		{model.Melee, 1, false},
	}
	for _, tc := range tests {
		if got := e.CanPlace(model.Player, mk("x", model.Keywords{}), tc.lane, tc.index); got != tc.want {
			t.Errorf("CanPlace(%s, %d) = %v, want %v", tc.lane, tc.index, got, tc.want)
		}
	}
	if e.CanPlace(model.Player, nil, model.Melee, 0) {
		t.Error("CanPlace accepted a nil unit")
	}
}

func TestPlaceAtCapacity(t *testing.T) {
	e := newEngine(t)
	fill(t, e, model.Player, model.Ranged, mk("r1", model.Keywords{}), mk("r2", model.Keywords{}))

	if !e.Place(model.Player, mk("r3", model.Keywords{}), model.Ranged, 2) {
		t.Fatal("Place at len with capacity-1 units rejected")
	}
	err := e.PlaceErr(model.Player, mk("r4", model.Keywords{}), model.Ranged, 3)
	if !errors.Is(err, battlefield.ErrCapacityExceeded) {
		t.Errorf("PlaceErr into full lane = %v, want ErrCapacityExceeded", err)
	}
	if got := Reason(err); got != "capacity_exceeded" {
		t.Errorf("Reason = %q, want capacity_exceeded", got)
	}
}

func TestPlaceRejectsWithoutMutation(t *testing.T) {
	e := newEngine(t)
	a := mk("a", model.Keywords{})
	fill(t, e, model.Player, model.Melee, a)
	before := e.Snapshot()

	if e.Place(model.Player, mk("b", model.Keywords{}), model.Melee, 5) {
		t.Error("Place with gap index accepted")
	}
	if e.Place(model.Enemy, a, model.Melee, 0) {
		t.Error("Place of a unit already on the board accepted")
	}
	if err := e.PlaceErr(model.Player, mk("c", model.Keywords{}), model.Melee, 7); !errors.Is(err, battlefield.ErrInvalidIndex) {
		t.Errorf("PlaceErr gap = %v, want ErrInvalidIndex", err)
	}

	after := e.Snapshot()
	if before.UnitCount() != after.UnitCount() || after.Player.Melee.Units[0].ID != "a" {
		t.Errorf("rejected placements changed the board: %+v", after)
	}
}

func TestTargeting(t *testing.T) {
	type board struct {
		enemyMelee, enemyRanged []*model.Unit
	}
	m1, m2 := mk("m1", model.Keywords{}), mk("m2", model.Keywords{})
	r1, r2 := mk("r1", model.Keywords{}), mk("r2", model.Keywords{})

	tests := []struct {
		name       string
		board      board
		lane       model.LaneKind
		kw         model.Keywords
		wantIDs    []string
		wantDirect bool
	}{
		{"melee hits melee", board{[]*model.Unit{m1, m2}, []*model.Unit{r1}}, model.Melee, model.Keywords{}, []string{"m1", "m2"}, false},
		{"melee push-through", board{nil, []*model.Unit{r1}}, model.Melee, model.Keywords{}, []string{"r1"}, false},
		{"melee flank", board{[]*model.Unit{m1}, []*model.Unit{r1, r2}}, model.Melee, model.Keywords{Flank: true}, []string{"m1", "r1", "r2"}, false},
		{"melee flank push-through dedup", board{nil, []*model.Unit{r1, r2}}, model.Melee, model.Keywords{Flank: true}, []string{"r1", "r2"}, false},
		{"melee artillery ignored", board{nil, []*model.Unit{r1}}, model.Melee, model.Keywords{Artillery: true}, []string{"r1"}, false},
		{"ranged hits melee", board{[]*model.Unit{m1}, []*model.Unit{r1}}, model.Ranged, model.Keywords{}, []string{"m1"}, false},
		{"ranged empty front", board{nil, []*model.Unit{r1}}, model.Ranged, model.Keywords{}, nil, false},
		{"artillery direct", board{nil, []*model.Unit{r1}}, model.Ranged, model.Keywords{Artillery: true}, nil, true},
		{"artillery blocked", board{[]*model.Unit{m1}, []*model.Unit{r1}}, model.Ranged, model.Keywords{Artillery: true}, []string{"m1"}, false},
		{"ranged flank dedup", board{[]*model.Unit{m1, m2}, []*model.Unit{r1}}, model.Ranged, model.Keywords{Flank: true}, []string{"m1", "m2"}, false},
		{"artillery flank direct", board{nil, []*model.Unit{r1}}, model.Ranged, model.Keywords{Artillery: true, Flank: true}, nil, true},
	}
	for _, tc := range tests {
		e := newEngine(t)
		fill(t, e, model.Enemy, model.Melee, tc.board.enemyMelee...)
		fill(t, e, model.Enemy, model.Ranged, tc.board.enemyRanged...)
		attacker := mk("atk", tc.kw)
		fill(t, e, model.Player, tc.lane, attacker)

		ts, err := e.Targets(model.Player, tc.lane, attacker)
		if ts.Direct != tc.wantDirect {
			t.Errorf("%s: Direct = %v, want %v", tc.name, ts.Direct, tc.wantDirect)
		}
		if got := ts.IDs(); !slices.Equal(got, tc.wantIDs) && !(len(got) == 0 && len(tc.wantIDs) == 0) {
			t.Errorf("%s: targets = %v, want %v", tc.name, got, tc.wantIDs)
		}
		wantErr := !tc.wantDirect && len(tc.wantIDs) == 0
		if got := errors.Is(err, ErrNoLegalTarget); got != wantErr {
			t.Errorf("%s: ErrNoLegalTarget = %v, want %v (err %v)", tc.name, got, wantErr, err)
		}
	}
}

func TestTargetingFromEnemySide(t *testing.T) {
	e := newEngine(t)
	fill(t, e, model.Player, model.Melee, mk("pm", model.Keywords{}))
	fill(t, e, model.Enemy, model.Melee, mk("em", model.Keywords{}))

	ts, err := e.TargetsFor("em")
	if err != nil {
		t.Fatalf("TargetsFor(em) failed: %v", err)
	}
	if got := ts.IDs(); !slices.Equal(got, []string{"pm"}) {
		t.Errorf("enemy attacker targets = %v, want [pm]", got)
	}
	if _, err := e.TargetsFor("ghost"); !errors.Is(err, battlefield.ErrNotFound) {
		t.Errorf("TargetsFor(ghost) = %v, want ErrNotFound", err)
	}
}

func TestTargetingDeterministicAndUnique(t *testing.T) {
	e := newEngine(t)
	fill(t, e, model.Enemy, model.Melee, mk("m1", model.Keywords{}), mk("m2", model.Keywords{}), mk("m3", model.Keywords{}))
	fill(t, e, model.Enemy, model.Ranged, mk("r1", model.Keywords{}), mk("r2", model.Keywords{}))
	attacker := mk("atk", model.Keywords{Flank: true})

	first := LegalTargets(e.Board, model.Player, model.Melee, attacker.Keywords).IDs()
	for i := 0; i < 5; i++ {
		again := LegalTargets(e.Board, model.Player, model.Melee, attacker.Keywords).IDs()
		if !slices.Equal(first, again) {
			t.Fatalf("targeting not deterministic: %v vs %v", first, again)
		}
	}
	seen := make(map[string]bool)
	for _, id := range first {
		if seen[id] {
			t.Errorf("duplicate target %s in %v", id, first)
		}
		seen[id] = true
	}
	if want := []string{"m1", "m2", "m3", "r1", "r2"}; !slices.Equal(first, want) {
		t.Errorf("order = %v, want %v", first, want)
	}
}

func TestBlocking(t *testing.T) {
	e := newEngine(t)
	front := mk("front", model.Keywords{})
	guard := mk("guard", model.Keywords{Guard: true})
	back := mk("back", model.Keywords{})
	fill(t, e, model.Enemy, model.Melee, front)
	fill(t, e, model.Enemy, model.Ranged, guard, back)

	attacker := mk("atk", model.Keywords{})
	fill(t, e, model.Player, model.Melee, attacker)

	tests := []struct {
		defender *model.Unit
		want     bool
	}{
		{front, true},
		{guard, true}, // not a legal target, guard overrides
		{back, false},
	}
	for _, tc := range tests {
		if got := e.CanBlock(model.Player, model.Melee, attacker, tc.defender); got != tc.want {
			t.Errorf("CanBlock(%s) = %v, want %v", tc.defender.ID, got, tc.want)
		}
	}

	got := e.Blockers(model.Player, model.Melee, attacker)
	var gotIDs []string
	for _, u := range got {
		gotIDs = append(gotIDs, u.ID)
	}
	if want := []string{"front", "guard"}; !slices.Equal(gotIDs, want) {
		t.Errorf("Blockers = %v, want %v", gotIDs, want)
	}

	ok, err := e.CanBlockIDs("atk", "back")
	if err != nil || ok {
		t.Errorf("CanBlockIDs(atk, back) = %v, %v; want false, nil", ok, err)
	}
	if _, err := e.CanBlockIDs("atk", "nobody"); !errors.Is(err, battlefield.ErrNotFound) {
		t.Errorf("CanBlockIDs unknown defender = %v, want ErrNotFound", err)
	}
}

func TestBlockingRequiresOpposingSide(t *testing.T) {
	e := newEngine(t)
	attacker := mk("atk", model.Keywords{Guard: true})
	ally := mk("ally", model.Keywords{Guard: true})
	backAlly := mk("back-ally", model.Keywords{})
	foe := mk("foe", model.Keywords{})
	fill(t, e, model.Player, model.Melee, attacker, ally)
	fill(t, e, model.Player, model.Ranged, backAlly)
	fill(t, e, model.Enemy, model.Melee, foe)

	tests := []struct {
		name     string
		defender *model.Unit
		want     bool
	}{
		{"guard ally", ally, false},
		{"attacker itself", attacker, false},
		{"back-line ally", backAlly, false},
		{"enemy front", foe, true},
		{"off board guard", mk("ghost", model.Keywords{Guard: true}), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.CanBlock(model.Player, model.Melee, attacker, tc.defender); got != tc.want {
				t.Errorf("CanBlock(atk, %s) = %v, want %v", tc.defender.ID, got, tc.want)
			}
			if tc.name == "off board guard" {
				return
			}
			got, err := e.CanBlockIDs("atk", tc.defender.ID)
			if err != nil || got != tc.want {
				t.Errorf("CanBlockIDs(atk, %s) = %v, %v; want %v, nil", tc.defender.ID, got, err, tc.want)
			}
		})
	}

	blockers, err := e.BlockersFor("atk")
	if err != nil {
		t.Fatalf("BlockersFor failed: %v", err)
	}
	for _, u := range blockers {
		if ok, _ := e.CanBlockIDs("atk", u.ID); !ok {
			t.Errorf("Blockers lists %s but CanBlockIDs rejects it", u.ID)
		}
	}
	if len(blockers) != 1 || blockers[0].ID != "foe" {
		t.Errorf("BlockersFor(atk) = %v, want [foe]", blockers)
	}
}

func TestGuardAlwaysBlocks(t *testing.T) {
	guard := mk("g", model.Keywords{Guard: true})
	for _, lane := range model.Lanes {
		for _, kw := range []model.Keywords{{}, {Flank: true}, {Artillery: true}, {Artillery: true, Flank: true}} {
			e := newEngine(t)
			fill(t, e, model.Enemy, model.Ranged, guard)
			attacker := mk("a", kw)
			if !e.CanBlock(model.Player, lane, attacker, guard) {
				t.Errorf("guard rejected as blocker for %s attacker with %+v", lane, kw)
			}
		}
	}
}

func TestResetClearsBattle(t *testing.T) {
	e := newEngine(t)
	fill(t, e, model.Player, model.Melee, mk("a", model.Keywords{}))
	fill(t, e, model.Enemy, model.Ranged, mk("b", model.Keywords{}))

	e.Reset()
	if n := e.Snapshot().UnitCount(); n != 0 {
		t.Errorf("UnitCount after Reset = %d, want 0", n)
	}
}
