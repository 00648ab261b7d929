package orchestrator

import (
	"sync"

	"github.com/soundlink/conductor/internal/logger"
)

// NodeEvent is an inbound event delivered by a remote node: a track ended,
// threw, or got stuck.
type NodeEvent struct {
	NodeID  string `json:"node_id"`
	GuildID string `json:"guild_id"`
	Type    string `json:"type"`
	Track   string `json:"track,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// eventHub is an explicit typed registration surface: listeners register a
// callback, inbound node events fan out to all of them in order.
type eventHub struct {
	mu        sync.RWMutex
	listeners []func(NodeEvent)
}

func newEventHub() *eventHub {
	return &eventHub{}
}

func (h *eventHub) subscribe(fn func(NodeEvent)) {
	h.mu.Lock()
	h.listeners = append(h.listeners, fn)
	h.mu.Unlock()
}

func (h *eventHub) publish(ev NodeEvent) {
	h.mu.RLock()
	listeners := h.listeners
	h.mu.RUnlock()
	for _, fn := range listeners {
		fn(ev)
	}
}

// OnNodeEvent registers a callback invoked for every inbound node event.
// Registration is append-only; callbacks run synchronously on the ingesting
// goroutine and must not block.
func (o *Orchestrator) OnNodeEvent(fn func(NodeEvent)) {
	o.events.subscribe(fn)
}

// IngestNodeEvent feeds one inbound node event to the registered listeners.
func (o *Orchestrator) IngestNodeEvent(ev NodeEvent) {
	o.logger.Debug("node event",
		logger.String("node", ev.NodeID),
		logger.String("guild", ev.GuildID),
		logger.String("type", ev.Type))
	o.events.publish(ev)
}
