package hub

import (
	"sync"
)

// StatusListener is called after an identity transitions online or offline.
// Listeners run outside the registry lock.
type StatusListener func(userID string, online bool)

type statusChange struct {
	userID string
	online bool
}

// Registry maps each authenticated user to their set of live connections.
// A user is online iff they have at least one connection; the entry is
// removed, not left empty, when the last connection drops.
type Registry struct {
	mu        sync.RWMutex
	clients   map[string]map[string]*Client // userID -> clientID -> client
	listeners []StatusListener

	// Transition notifications are queued under mu and drained by a single
	// dispatcher at a time, so listeners always observe transitions in the
	// order they happened even when connects and disconnects race.
	notifyMu  sync.Mutex
	pending   []statusChange
	notifying bool
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]map[string]*Client),
	}
}

// AddStatusListener registers a transition listener. Must be called during
// wiring, before any connection is served.
func (r *Registry) AddStatusListener(fn StatusListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Register records a connection for its user. Idempotent per client id.
// Returns true when the user transitioned from offline to online.
func (r *Registry) Register(c *Client) bool {
	r.mu.Lock()
	conns, ok := r.clients[c.userID]
	if !ok {
		conns = make(map[string]*Client)
		r.clients[c.userID] = conns
	}
	conns[c.ID] = c
	wentOnline := !ok
	if wentOnline {
		r.enqueue(c.userID, true)
	}
	r.mu.Unlock()

	if wentOnline {
		r.dispatch()
	}
	return wentOnline
}

// Unregister removes a connection. A no-op if the connection was already
// removed, so duplicate disconnect signals are harmless. Returns true when
// the user's last connection dropped and they transitioned offline.
func (r *Registry) Unregister(c *Client) bool {
	r.mu.Lock()
	wentOffline := false
	if conns, ok := r.clients[c.userID]; ok {
		if _, exists := conns[c.ID]; exists {
			delete(conns, c.ID)
			if len(conns) == 0 {
				delete(r.clients, c.userID)
				wentOffline = true
			}
		}
	}
	if wentOffline {
		r.enqueue(c.userID, false)
	}
	r.mu.Unlock()

	if wentOffline {
		r.dispatch()
	}
	return wentOffline
}

// IsOnline reports whether the user currently has a live connection.
func (r *Registry) IsOnline(userID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients[userID]) > 0
}

// OnlineUsers returns a snapshot of all online user ids. Presence can change
// between snapshot and use.
func (r *Registry) OnlineUsers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]string, 0, len(r.clients))
	for userID := range r.clients {
		users = append(users, userID)
	}
	return users
}

// ClientsFor returns a snapshot of the user's live connections.
func (r *Registry) ClientsFor(userID string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conns := r.clients[userID]
	if len(conns) == 0 {
		return nil
	}
	clients := make([]*Client, 0, len(conns))
	for _, c := range conns {
		clients = append(clients, c)
	}
	return clients
}

// AllClients returns a snapshot of every live connection.
func (r *Registry) AllClients() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var clients []*Client
	for _, conns := range r.clients {
		for _, c := range conns {
			clients = append(clients, c)
		}
	}
	return clients
}

// enqueue records a transition. The caller must hold mu, which fixes the
// queue order to match the order transitions were applied to the map.
func (r *Registry) enqueue(userID string, online bool) {
	r.notifyMu.Lock()
	r.pending = append(r.pending, statusChange{userID: userID, online: online})
	r.notifyMu.Unlock()
}

// dispatch drains the pending queue, invoking listeners outside every lock.
// Only one caller drains at a time; the rest return immediately and leave
// their entry for the active drainer.
func (r *Registry) dispatch() {
	r.notifyMu.Lock()
	if r.notifying {
		r.notifyMu.Unlock()
		return
	}
	r.notifying = true

	for len(r.pending) > 0 {
		change := r.pending[0]
		r.pending = r.pending[1:]
		r.notifyMu.Unlock()

		r.mu.RLock()
		listeners := make([]StatusListener, len(r.listeners))
		copy(listeners, r.listeners)
		r.mu.RUnlock()

		for _, fn := range listeners {
			fn(change.userID, change.online)
		}

		r.notifyMu.Lock()
	}

	r.notifying = false
	r.notifyMu.Unlock()
}
