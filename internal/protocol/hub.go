package protocol

import (
	"log/slog"
	"slices"
	"sync"
)

// Sink is one connected client as seen by the hub. Send must not block.
type Sink interface {
	ID() string
	Send(event Outbound) error
}

// Hub tracks connected sinks and the room each one is subscribed to.
type Hub struct {
	logger *slog.Logger

	mu    sync.RWMutex
	sinks map[string]Sink
	rooms map[string]map[string]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger.With("component", "hub"),

		sinks: make(map[string]Sink),
		rooms: make(map[string]map[string]struct{}),
	}
}

func (that *Hub) Register(sink Sink) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.sinks[sink.ID()] = sink
}

// Unregister forgets the sink and drops it from every room.
func (that *Hub) Unregister(id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.sinks, id)

	for roomID, members := range that.rooms {
		delete(members, id)
		if len(members) == 0 {
			delete(that.rooms, roomID)
		}
	}
}

func (that *Hub) Subscribe(roomID, id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	members, ok := that.rooms[roomID]
	if !ok {
		members = make(map[string]struct{})
		that.rooms[roomID] = members
	}

	members[id] = struct{}{}
}

func (that *Hub) Unsubscribe(roomID, id string) {
	that.mu.Lock()
	defer that.mu.Unlock()

	members, ok := that.rooms[roomID]
	if !ok {
		return
	}

	delete(members, id)
	if len(members) == 0 {
		delete(that.rooms, roomID)
	}
}

// Members returns the ids subscribed to roomID.
func (that *Hub) Members(roomID string) []string {
	that.mu.RLock()
	defer that.mu.RUnlock()

	ids := make([]string, 0, len(that.rooms[roomID]))
	for id := range that.rooms[roomID] {
		ids = append(ids, id)
	}

	return ids
}

// SendTo delivers event to one sink. Unknown ids are ignored.
func (that *Hub) SendTo(id string, event Outbound) {
	that.mu.RLock()
	sink, ok := that.sinks[id]
	that.mu.RUnlock()

	if !ok {
		return
	}

	that.deliver(sink, event)
}

// Broadcast delivers event to every member of roomID except the excluded ids.
func (that *Hub) Broadcast(roomID string, event Outbound, exclude ...string) {
	that.mu.RLock()
	targets := make([]Sink, 0, len(that.rooms[roomID]))
	for id := range that.rooms[roomID] {
		if slices.Contains(exclude, id) {
			continue
		}

		if sink, ok := that.sinks[id]; ok {
			targets = append(targets, sink)
		}
	}
	that.mu.RUnlock()

	for _, sink := range targets {
		that.deliver(sink, event)
	}
}

func (that *Hub) deliver(sink Sink, event Outbound) {
	if err := sink.Send(event); err != nil {
		that.logger.Warn("failed to deliver event", "playerID", sink.ID(), "action", event.Action(), "error", err)
	}
}
