package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fayyozbobokulov/workplace-connect-server/internal/auth"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/event"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/model"
	"github.com/fayyozbobokulov/workplace-connect-server/internal/repo"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type staticUsers struct {
	users map[string]*model.User
}

func (f *staticUsers) FindByUserID(ctx context.Context, userID string) (*model.User, error) {
	if user, ok := f.users[userID]; ok {
		return user, nil
	}
	return nil, repo.ErrUserNotFound
}

func newServedHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()

	users := &staticUsers{users: map[string]*model.User{
		"u1": {UserID: "u1", Username: "alice", IsActive: true},
	}}
	authenticator := auth.NewAuthenticator("handshake-secret", users, zap.NewNop())
	h := NewHub(authenticator, &fakeGroups{}, &fakeMessages{}, nil, zap.NewNop())

	server := httptest.NewServer(http.HandlerFunc(h.ServeWS))
	t.Cleanup(func() {
		h.Stop()
		server.Close()
	})
	return h, server
}

func signedToken(t *testing.T, userID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte("handshake-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestServeWS_RefusesMissingToken(t *testing.T) {
	h, server := newServedHub(t)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(server), nil)
	if err == nil {
		t.Fatal("dial succeeded without a token")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("handshake response = %v, want 401", resp)
	}

	if len(h.OnlineUsers()) != 0 {
		t.Error("refused connection appeared in presence state")
	}
}

func TestServeWS_RefusesUnknownIdentity(t *testing.T) {
	h, server := newServedHub(t)

	url := wsURL(server) + "?token=" + signedToken(t, "ghost")
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err == nil {
		t.Fatal("dial succeeded for an unknown identity")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("handshake response = %v, want 401", resp)
	}

	if len(h.OnlineUsers()) != 0 {
		t.Error("refused connection appeared in presence state")
	}
}

func TestServeWS_AdmitsValidToken(t *testing.T) {
	h, server := newServedHub(t)

	url := wsURL(server) + "?token=" + signedToken(t, "u1")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	// The new connection sees its own online transition.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev event.WsEvent
	if err := conn.ReadJSON(&ev); err != nil {
		t.Fatalf("failed to read first frame: %v", err)
	}
	if ev.Event != event.EventUserStatus {
		t.Fatalf("first event = %q, want %q", ev.Event, event.EventUserStatus)
	}

	if !h.IsUserOnline("u1") {
		t.Error("authenticated user not marked online")
	}
}
