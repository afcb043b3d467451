package session

import (
	"log/slog"

	"github.com/nstehr/bulwark/ipc"
	"github.com/nstehr/bulwark/model"
)

func (s *Session) HandlePlace(env ipc.Envelope) (*ipc.Envelope, error) {
	var req ipc.PlaceRequest
	if err := env.Decode(&req); err != nil {
		return fail(err)
	}
	u, err := s.Catalog.Spawn(req.CardID)
	if err != nil {
		return fail(err)
	}

	lane := u.Lane()
	if req.Lane != nil {
		lane = *req.Lane
	}
	index := s.Engine.Board.Len(req.Side, lane)
	if req.Index != nil {
		index = *req.Index
	}

	if err := s.Engine.PlaceErr(req.Side, u, lane, index); err != nil {
		return fail(err)
	}
	slog.Info("unit placed", "battle", s.Battle, "side", req.Side, "lane", lane, "index", index, "unit", u.ID)
	return result(ipc.PlaceResult{
		UnitID:   u.ID,
		Side:     req.Side,
		Position: model.Position{Lane: lane, Index: index},
		Unit:     u.View(),
	})
}

func (s *Session) HandleRemove(env ipc.Envelope) (*ipc.Envelope, error) {
	var req ipc.RemoveRequest
	if err := env.Decode(&req); err != nil {
		return fail(err)
	}
	u, err := s.Engine.Remove(req.Side, req.Lane, req.UnitID)
	if err != nil {
		return fail(err)
	}
	slog.Info("unit removed", "battle", s.Battle, "side", req.Side, "lane", req.Lane, "unit", u.ID)
	return result(ipc.RemoveResult{UnitID: u.ID})
}

func (s *Session) HandleTargets(env ipc.Envelope) (*ipc.Envelope, error) {
	var req ipc.TargetsRequest
	if err := env.Decode(&req); err != nil {
		return fail(err)
	}
	ts, err := s.Engine.TargetsFor(req.AttackerID)
	if err != nil {
		return fail(err)
	}
	return result(ipc.TargetsResult{Direct: ts.Direct, UnitIDs: ts.IDs()})
}

func (s *Session) HandleBlock(env ipc.Envelope) (*ipc.Envelope, error) {
	var req ipc.BlockRequest
	if err := env.Decode(&req); err != nil {
		return fail(err)
	}
	ok, err := s.Engine.CanBlockIDs(req.AttackerID, req.DefenderID)
	if err != nil {
		return fail(err)
	}
	return result(ipc.BlockResult{Allowed: ok})
}

func (s *Session) HandleBlockers(env ipc.Envelope) (*ipc.Envelope, error) {
	var req ipc.BlockersRequest
	if err := env.Decode(&req); err != nil {
		return fail(err)
	}
	blockers, err := s.Engine.BlockersFor(req.AttackerID)
	if err != nil {
		return fail(err)
	}
	ids := make([]string, len(blockers))
	for i, u := range blockers {
		ids[i] = u.ID
	}
	return result(ipc.BlockersResult{UnitIDs: ids})
}

func (s *Session) HandleSnapshot(ipc.Envelope) (*ipc.Envelope, error) {
	return result(s.Engine.Snapshot())
}

func (s *Session) HandleReset(ipc.Envelope) (*ipc.Envelope, error) {
	s.Engine.Reset()
	slog.Info("battle reset", "battle", s.Battle)
	return ack(s.Battle)
}
