package ws

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"reflex_drills/internal/config"
	"reflex_drills/internal/game"
	"reflex_drills/internal/logger"
)

// Hub keeps at most one hosted session per player. A reconnecting player
// replaces the previous connection and its session.
type Hub struct {
	mu      sync.Mutex
	hosts   map[string]*Host
	games   config.Games
	catalog []game.Scenario

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(games config.Games, catalog []game.Scenario) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		hosts:   make(map[string]*Host),
		games:   games,
		catalog: catalog,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Attach builds a session of the client's game and hosts it.
func (h *Hub) Attach(c *Client) (*Host, error) {
	cfg, ok := h.games[c.Kind]
	if !ok {
		return nil, goerr.Wrap(game.ErrUnknownGame, "game not configured", goerr.V("kind", c.Kind))
	}

	host, err := newHost(c, cfg, h.catalog)
	if err != nil {
		return nil, err
	}

	h.mu.Lock()
	old := h.hosts[c.PlayerID]
	h.hosts[c.PlayerID] = host
	h.mu.Unlock()

	if old != nil {
		logger.Info("Hub.Attach: replacing previous session", "player", c.PlayerID, "old_game", old.Kind)
		old.client.Close()
		old.Close()
	}

	go host.run(h.ctx)
	return host, nil
}

// Detach releases host unless it has already been replaced.
func (h *Hub) Detach(host *Host) {
	h.mu.Lock()
	if h.hosts[host.PlayerID] == host {
		delete(h.hosts, host.PlayerID)
	}
	h.mu.Unlock()
	host.Close()
}

// Host returns the player's current host.
func (h *Hub) Host(playerID string) (*Host, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	host, ok := h.hosts[playerID]
	return host, ok
}

// Active reports how many sessions are hosted.
func (h *Hub) Active() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.hosts)
}

// StartCleanup periodically drops hosts whose loop has already exited.
func (h *Hub) StartCleanup(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-h.ctx.Done():
				return
			case <-ticker.C:
				h.cleanupFinished()
			}
		}
	}()
}

func (h *Hub) cleanupFinished() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, host := range h.hosts {
		select {
		case <-host.Done():
			delete(h.hosts, id)
			logger.Debug("cleaned up finished host", "player", id)
		default:
		}
	}
}

// Shutdown closes every connection and stops every session.
func (h *Hub) Shutdown() {
	h.cancel()

	h.mu.Lock()
	hosts := make([]*Host, 0, len(h.hosts))
	for _, host := range h.hosts {
		hosts = append(hosts, host)
	}
	h.hosts = make(map[string]*Host)
	h.mu.Unlock()

	for _, host := range hosts {
		host.client.Close()
		host.Close()
	}
}
