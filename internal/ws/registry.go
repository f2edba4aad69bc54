package ws

import "sync"

// Registry is the in-memory index from connections to users and
// channels. It holds no business data and survives only for the process
// lifetime; after a reconnect the client re-issues its joins. The lock
// is held only for map reads and writes, never across a network send.
type Registry struct {
	mu       sync.RWMutex
	clients  map[string]*Client            // connection id -> client
	channels map[string]map[string]*Client // channel -> connection id -> client
	joined   map[string]map[string]bool    // connection id -> channel set
}

// NewRegistry creates an empty Registry
func NewRegistry() *Registry {
	return &Registry{
		clients:  make(map[string]*Client),
		channels: make(map[string]map[string]*Client),
		joined:   make(map[string]map[string]bool),
	}
}

// Add registers a connection and joins it to the user's personal
// channel, which it stays a member of for its whole lifetime.
func (r *Registry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.id] = c
	r.joinLocked(c, UserChannel(c.userID))
}

// Remove unregisters a connection and leaves all its channels. Returns
// the removed client, or nil if the connection was unknown.
func (r *Registry) Remove(connID string) *Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.clients[connID]
	if !ok {
		return nil
	}
	for channel := range r.joined[connID] {
		r.leaveLocked(connID, channel)
	}
	delete(r.joined, connID)
	delete(r.clients, connID)
	return c
}

// Join subscribes a connection to a channel. Unknown connections are
// ignored (they are mid-disconnect).
func (r *Registry) Join(connID, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[connID]
	if !ok {
		return
	}
	r.joinLocked(c, channel)
}

// Leave unsubscribes a connection from a channel. A connection never
// leaves its own user channel.
func (r *Registry) Leave(connID, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[connID]
	if !ok || channel == UserChannel(c.userID) {
		return
	}
	r.leaveLocked(connID, channel)
}

// MembersOf returns a snapshot of the clients subscribed to a channel
func (r *Registry) MembersOf(channel string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	members := r.channels[channel]
	if len(members) == 0 {
		return nil
	}
	out := make([]*Client, 0, len(members))
	for _, c := range members {
		out = append(out, c)
	}
	return out
}

// ChannelsOf returns a snapshot of the channels a connection is in
func (r *Registry) ChannelsOf(connID string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	joined := r.joined[connID]
	if len(joined) == 0 {
		return nil
	}
	out := make([]string, 0, len(joined))
	for channel := range joined {
		out = append(out, channel)
	}
	return out
}

// Count returns the number of live connections
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

func (r *Registry) joinLocked(c *Client, channel string) {
	if r.channels[channel] == nil {
		r.channels[channel] = make(map[string]*Client)
	}
	r.channels[channel][c.id] = c
	if r.joined[c.id] == nil {
		r.joined[c.id] = make(map[string]bool)
	}
	r.joined[c.id][channel] = true
}

func (r *Registry) leaveLocked(connID, channel string) {
	if members, ok := r.channels[channel]; ok {
		delete(members, connID)
		if len(members) == 0 {
			delete(r.channels, channel)
		}
	}
	if joined, ok := r.joined[connID]; ok {
		delete(joined, channel)
	}
}
