package session

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/nstehr/bulwark/battlefield"
	"github.com/nstehr/bulwark/catalog"
	"github.com/nstehr/bulwark/ipc"
	"github.com/nstehr/bulwark/rules"
)

// Session owns a single battle for one connection. It is driven
// sequentially by the connection's read loop and shares nothing mutable
// with other sessions.
type Session struct {
	Battle  string
	Engine  *rules.Engine
	Catalog *catalog.Catalog
}

func New(caps battlefield.Capacities, cat *catalog.Catalog) (*Session, error) {
	engine, err := rules.NewEngine(caps)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return &Session{Engine: engine, Catalog: cat}, nil
}

// Register wires every battle handler onto the connection.
func (s *Session) Register(c *ipc.Connection) {
	c.RegisterHandler(ipc.TypeHello, func(env ipc.Envelope) (*ipc.Envelope, error) {
		resp, err := s.HandleHello(env)
		c.Battle = s.Battle
		return resp, err
	})
	c.RegisterHandler(ipc.TypePlace, s.HandlePlace)
	c.RegisterHandler(ipc.TypeRemove, s.HandleRemove)
	c.RegisterHandler(ipc.TypeTargets, s.HandleTargets)
	c.RegisterHandler(ipc.TypeBlock, s.HandleBlock)
	c.RegisterHandler(ipc.TypeBlockers, s.HandleBlockers)
	c.RegisterHandler(ipc.TypeSnapshot, s.HandleSnapshot)
	c.RegisterHandler(ipc.TypeReset, s.HandleReset)
}

// HandleHello names the battle and acknowledges the client. An empty name
// keeps the current one.
func (s *Session) HandleHello(env ipc.Envelope) (*ipc.Envelope, error) {
	var hello ipc.HelloMessage
	if err := env.Decode(&hello); err != nil {
		return fail(err)
	}
	if hello.Battle != "" {
		s.Battle = hello.Battle
	}
	slog.Info("battle opened", "battle", s.Battle)
	return ack(s.Battle)
}

func ack(battle string) (*ipc.Envelope, error) {
	env, err := ipc.NewEnvelope(ipc.TypeAck, ipc.AckMessage{Status: "ok", Battle: battle})
	if err != nil {
		return nil, err
	}
	return &env, nil
}

func result(data any) (*ipc.Envelope, error) {
	env, err := ipc.NewEnvelope(ipc.TypeResult, data)
	if err != nil {
		return nil, err
	}
	return &env, nil
}

// fail turns a rejected request into an error envelope. Rejections are
// answers, not handler failures, so the error return stays nil.
func fail(err error) (*ipc.Envelope, error) {
	env, merr := ipc.NewEnvelope(ipc.TypeError, ipc.ErrorMessage{Code: code(err), Message: err.Error()})
	if merr != nil {
		return nil, merr
	}
	return &env, nil
}

func code(err error) string {
	if errors.Is(err, catalog.ErrUnknownCard) {
		return "unknown_card"
	}
	return rules.Reason(err)
}
