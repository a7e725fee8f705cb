package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"reflex_drills/internal/game"
	"reflex_drills/internal/logger"
)

// Host runs one player's session and bridges it to the player's connection.
type Host struct {
	PlayerID string
	Kind     game.Kind

	cfg    game.Config
	loop   *game.Loop
	client *Client
	log    *slog.Logger
	done   chan struct{}
}

func newHost(c *Client, cfg game.Config, catalog []game.Scenario) (*Host, error) {
	h := &Host{
		PlayerID: c.PlayerID,
		Kind:     cfg.Kind,
		cfg:      cfg,
		client:   c,
		log:      logger.With("player", c.PlayerID, "game", cfg.Kind),
		done:     make(chan struct{}),
	}

	loop, err := game.NewLoop(cfg,
		game.WithCatalog(catalog),
		game.WithLogger(h.log),
		game.WithObserver(h.publish),
		game.WithHooks(sessionHooks()),
	)
	if err != nil {
		return nil, err
	}
	h.loop = loop
	return h, nil
}

func (h *Host) SessionID() string { return h.loop.ID() }

func (h *Host) run(ctx context.Context) {
	defer close(h.done)
	ActiveHosts.Inc()
	defer ActiveHosts.Dec()

	h.log.Info("session hosted", "session", h.loop.ID())
	if err := h.loop.Run(ctx); err != nil && err != context.Canceled {
		h.log.Warn("session loop stopped", "error", err)
	}
	h.log.Info("session released", "session", h.loop.ID())
}

func (h *Host) publish(s game.Snapshot) {
	h.client.Enqueue(encode(MsgSnapshot, s))
}

func (h *Host) ready() []byte {
	return encode(MsgReady, ReadyPayload{
		SessionID: h.loop.ID(),
		PlayerID:  h.PlayerID,
		Game:      h.Kind,
		Total:     h.cfg.TotalTrials,
		WindowMS:  h.cfg.ResponseWindow.Milliseconds(),
	})
}

// HandleMessage translates one client message into a loop event. Transport
// errors are answered on the connection and never reach the session.
func (h *Host) HandleMessage(raw []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.client.Enqueue(errorMessage("invalid message"))
		return
	}

	switch msg.Type {
	case MsgInput:
		in, err := game.ParseInput(h.Kind, msg.Value)
		if err != nil {
			h.client.Enqueue(errorMessage("invalid input: " + msg.Value))
			return
		}
		h.loop.Input(in)
	case MsgStart:
		SessionsStarted.WithLabelValues(string(h.Kind)).Inc()
		h.loop.Start()
	case MsgRestart:
		SessionsStarted.WithLabelValues(string(h.Kind)).Inc()
		h.loop.Restart()
	case MsgPing:
		h.client.Enqueue(encode(MsgPong, nil))
	default:
		h.client.Enqueue(errorMessage("unknown message type: " + msg.Type))
	}
}

// Snapshot reads the session's current view on its loop goroutine.
func (h *Host) Snapshot(ctx context.Context) (game.Snapshot, bool) {
	out := make(chan game.Snapshot, 1)
	h.loop.Do(func(s *game.Session) { out <- s.Snapshot() })

	select {
	case snap := <-out:
		return snap, true
	case <-h.loop.Done():
		return game.Snapshot{}, false
	case <-ctx.Done():
		return game.Snapshot{}, false
	}
}

// Close stops the session loop.
func (h *Host) Close() {
	h.loop.Close()
}

// Done is closed once the loop has exited.
func (h *Host) Done() <-chan struct{} {
	return h.done
}
