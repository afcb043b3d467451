package model

import "fmt"

// LaneKind identifies one of the two parallel combat columns on each side.
type LaneKind byte

const (
	Melee  LaneKind = 0 // front lane
	Ranged LaneKind = 1 // back lane
)

// Lanes lists every lane kind in enumeration order. Targeting output follows
// this order, so it must not change.
var Lanes = [...]LaneKind{Melee, Ranged}

func (l LaneKind) String() string {
	switch l {
	case Melee:
		return "melee"
	case Ranged:
		return "ranged"
	}
	return fmt.Sprintf("lane(%d)", byte(l))
}

// Opposite returns the other lane kind.
func (l LaneKind) Opposite() LaneKind {
	if l == Melee {
		return Ranged
	}
	return Melee
}

func (l LaneKind) Valid() bool { return l == Melee || l == Ranged }

// ParseLane accepts the lowercase names used in card data and on the wire.
func ParseLane(s string) (LaneKind, error) {
	switch s {
	case "melee":
		return Melee, nil
	case "ranged":
		return Ranged, nil
	}
	return 0, fmt.Errorf("unknown lane %q", s)
}

func (l LaneKind) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid lane %d", byte(l))
	}
	return []byte(l.String()), nil
}

func (l *LaneKind) UnmarshalText(b []byte) error {
	v, err := ParseLane(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// Side is one of the two opposing halves of the board.
type Side byte

const (
	Player Side = 0
	Enemy  Side = 1
)

// Sides lists both sides in enumeration order.
var Sides = [...]Side{Player, Enemy}

func (s Side) String() string {
	switch s {
	case Player:
		return "player"
	case Enemy:
		return "enemy"
	}
	return fmt.Sprintf("side(%d)", byte(s))
}

// Opponent returns the side facing s.
func (s Side) Opponent() Side {
	if s == Player {
		return Enemy
	}
	return Player
}

func (s Side) Valid() bool { return s == Player || s == Enemy }

func ParseSide(s string) (Side, error) {
	switch s {
	case "player":
		return Player, nil
	case "enemy":
		return Enemy, nil
	}
	return 0, fmt.Errorf("unknown side %q", s)
}

func (s Side) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid side %d", byte(s))
	}
	return []byte(s.String()), nil
}

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Position identifies a slot within one side's lane. It is never stored.
type Position struct {
	Lane  LaneKind `json:"lane"`
	Index int      `json:"index"`
}
