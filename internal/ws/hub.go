package ws

import (
	"encoding/json"
	"sync"
)

// Client is a single WebSocket connection scoped to one group lobby.
type Client struct {
	UserID  string
	GroupID string
	Send    chan []byte
	hub     *LobbyHub
	mu      sync.Mutex
	closed  bool
}

func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
	if c.hub != nil {
		c.hub.unregister(c)
	}
}

// LobbyHub fans group lifecycle events (joins, interview completions,
// votes, the final decision) out to every member watching that group's
// lobby. Clients that poll the HTTP API see the same state; the hub
// just saves them the round trips.
type LobbyHub struct {
	mu      sync.RWMutex
	byGroup map[string]map[*Client]struct{}
}

func NewLobbyHub() *LobbyHub {
	return &LobbyHub{byGroup: make(map[string]map[*Client]struct{})}
}

func (h *LobbyHub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c.hub = h
	if h.byGroup[c.GroupID] == nil {
		h.byGroup[c.GroupID] = make(map[*Client]struct{})
	}
	h.byGroup[c.GroupID][c] = struct{}{}
}

func (h *LobbyHub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m := h.byGroup[c.GroupID]; m != nil {
		delete(m, c)
		if len(m) == 0 {
			delete(h.byGroup, c.GroupID)
		}
	}
}

// GroupEvent is the wire shape pushed to lobby watchers.
type GroupEvent struct {
	Type    string      `json:"type"`
	GroupID string      `json:"group_id"`
	UserID  string      `json:"user_id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

const (
	EventMemberJoined       = "member_joined"
	EventMemberLeft         = "member_left"
	EventInterviewCompleted = "interview_completed"
	EventVoteCast           = "vote_cast"
	EventDecisionMade       = "decision_made"
)

// Broadcast sends the event to every client in the event's group. Slow
// consumers are skipped rather than blocked on.
func (h *LobbyHub) Broadcast(ev GroupEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.byGroup[ev.GroupID]))
	for c := range h.byGroup[ev.GroupID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		select {
		case c.Send <- data:
		default:
		}
	}
}

func (h *LobbyHub) WatcherCount(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.byGroup[groupID])
}
