package ipc

import "github.com/nstehr/bulwark/model"

// Message types. Every request is answered with exactly one TypeResult,
// TypeAck or TypeError envelope.
const (
	TypeHello    = "hello"
	TypeAck      = "ack"
	TypePlace    = "place"
	TypeRemove   = "remove"
	TypeTargets  = "targets"
	TypeBlock    = "block"
	TypeBlockers = "blockers"
	TypeSnapshot = "snapshot"
	TypeReset    = "reset"
	TypeResult   = "result"
	TypeError    = "error"
)

type HelloMessage struct {
	Battle string `json:"battle"`
}

type AckMessage struct {
	Status string `json:"status"`
	Battle string `json:"battle,omitempty"`
}

// ErrorMessage reports a rejected request. Code is one of capacity_exceeded,
// invalid_index, not_found, duplicate_unit, no_legal_target, unknown_card,
// bad_request.
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PlaceRequest spawns a card and places it. A nil Lane uses the card's
// preferred lane; a nil Index appends.
type PlaceRequest struct {
	Side   model.Side      `json:"side"`
	CardID string          `json:"cardId"`
	Lane   *model.LaneKind `json:"lane,omitempty"`
	Index  *int            `json:"index,omitempty"`
}

type PlaceResult struct {
	UnitID   string         `json:"unitId"`
	Side     model.Side     `json:"side"`
	Position model.Position `json:"position"`
	Unit     model.UnitView `json:"unit"`
}

type RemoveRequest struct {
	Side   model.Side     `json:"side"`
	Lane   model.LaneKind `json:"lane"`
	UnitID string         `json:"unitId"`
}

type RemoveResult struct {
	UnitID string `json:"unitId"`
}

type TargetsRequest struct {
	AttackerID string `json:"attackerId"`
}

// TargetsResult is either a direct attack on the opposing player or an
// ordered list of unit IDs.
type TargetsResult struct {
	Direct  bool     `json:"direct"`
	UnitIDs []string `json:"unitIds"`
}

type BlockRequest struct {
	AttackerID string `json:"attackerId"`
	DefenderID string `json:"defenderId"`
}

type BlockResult struct {
	Allowed bool `json:"allowed"`
}

type BlockersRequest struct {
	AttackerID string `json:"attackerId"`
}

type BlockersResult struct {
	UnitIDs []string `json:"unitIds"`
}
