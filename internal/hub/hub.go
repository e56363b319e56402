package hub

import (
	"context"
	"errors"
	"net/http"

	"github.com/fayyozbobokulov/workplace-connect-server/internal/auth"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/event"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/repo"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	StatusOnline  = "online"
	StatusOffline = "offline"
)

// Hub owns the connection registry and the room-based router. It admits
// connections after handshake authentication, fans messages out to the right
// live connections and keeps presence state for the rest of the system.
type Hub struct {
	registry *Registry
	rooms    *RoomSet

	authenticator *auth.Authenticator
	groups        repo.GroupRepository
	messages      repo.MessageRepository

	logger   *zap.Logger
	upgrader websocket.Upgrader

	ctx    context.Context
	cancel context.CancelFunc
}

func NewHub(authenticator *auth.Authenticator, groups repo.GroupRepository, messages repo.MessageRepository, allowedOrigins []string, logger *zap.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		registry:      NewRegistry(),
		rooms:         NewRoomSet(),
		authenticator: authenticator,
		groups:        groups,
		messages:      messages,
		logger:        logger,
		ctx:           ctx,
		cancel:        cancel,
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	// The status broadcast goes to every connected client, matching the
	// original fan-out scope.
	h.registry.AddStatusListener(h.broadcastStatus)

	return h
}

// Registry exposes the presence registry for listener wiring.
func (h *Hub) Registry() *Registry {
	return h.registry
}

// ServeWS authenticates the handshake credential and, only on success,
// upgrades the connection and registers it. Failed handshakes are refused
// with 401 and never appear in presence state.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	tokenString := auth.TokenFromRequest(r)

	user, err := h.authenticator.Authenticate(r.Context(), tokenString)
	if err != nil {
		code := event.CodeAuthInvalid
		switch {
		case errors.Is(err, auth.ErrTokenMissing):
			code = event.CodeAuthMissing
		case errors.Is(err, auth.ErrUnknownIdentity):
			code = event.CodeAuthUnknown
		}
		h.logger.Info("handshake refused", zap.String("code", code))
		http.Error(w, code, http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", zap.Error(err))
		return
	}

	client := newClient(user, conn, h, h.logger)
	h.registry.Register(client)

	go client.readPump()
	go client.writePump()

	h.logger.Info("client connected",
		zap.String("client_id", client.ID),
		zap.String("user_id", client.userID),
	)
}

// dropClient runs the single cleanup pass for a closing connection: leave
// every joined room, unregister from the registry, close the transport.
func (h *Hub) dropClient(c *Client) {
	for groupID, remaining := range h.rooms.LeaveAll(c) {
		signal := event.NewEvent(event.EventUserLeft, event.RoomSignal{
			GroupID: groupID,
			UserID:  c.userID,
		})
		for _, member := range remaining {
			member.SafeSend(signal)
		}
	}

	h.registry.Unregister(c)
	c.Close()

	h.logger.Info("client disconnected",
		zap.String("client_id", c.ID),
		zap.String("user_id", c.userID),
	)
}

// broadcastStatus announces an online/offline transition to all clients.
func (h *Hub) broadcastStatus(userID string, online bool) {
	status := StatusOffline
	if online {
		status = StatusOnline
	}

	ev := event.NewEvent(event.EventUserStatus, event.UserStatus{
		UserID: userID,
		Status: status,
	})

	for _, c := range h.registry.AllClients() {
		c.SafeSend(ev)
	}
}

// OnlineUsers is the presence query surface for other subsystems.
func (h *Hub) OnlineUsers() []string {
	return h.registry.OnlineUsers()
}

// IsUserOnline reports whether the user has at least one live connection.
func (h *Hub) IsUserOnline(userID string) bool {
	return h.registry.IsOnline(userID)
}

// Stop closes every live connection and halts the hub.
func (h *Hub) Stop() {
	h.cancel()

	for _, c := range h.registry.AllClients() {
		c.Close()
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if origin == a {
				return true
			}
		}
		return false
	}
}
