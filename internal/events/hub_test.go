package events

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T, allowed []string) (*Hub, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(nil)
	r := gin.New()
	r.GET("/ws", WSHandler(hub, allowed))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHubDeliversEvents(t *testing.T) {
	hub, url := startHub(t, nil)

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ws.Close() })

	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := ws.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"welcome","transport":"websocket"}`, string(msg))

	require.Eventually(t, func() bool { return hub.Stats().WSClients == 1 }, 2*time.Second, 10*time.Millisecond)

	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	hub.now = func() time.Time { return fixed }
	hub.Publish(Event{Type: TypeVehicleProcessed, UserID: "u1", Sources: []string{"site1", "site2"}})

	_, msg, err = ws.ReadMessage()
	require.NoError(t, err)
	var got Event
	require.NoError(t, json.Unmarshal(msg, &got))
	assert.Equal(t, TypeVehicleProcessed, got.Type)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, []string{"site1", "site2"}, got.Sources)
	assert.True(t, fixed.Equal(got.At))
}

func TestHubDropsClosedClients(t *testing.T) {
	hub, url := startHub(t, nil)

	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Stats().WSClients == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, ws.Close())
	require.Eventually(t, func() bool { return hub.Stats().WSClients == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://app.example"})

	req := func(origin string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, "http://api.example/ws", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		return r
	}

	assert.True(t, check(req("")))
	assert.True(t, check(req("https://app.example")))
	assert.True(t, check(req("http://api.example")))
	assert.False(t, check(req("https://evil.example")))

	assert.True(t, originChecker([]string{"*"})(req("https://evil.example")))
}

func TestDiscardPublisher(t *testing.T) {
	assert.NotPanics(t, func() { Discard.Publish(Event{Type: TypeDocumentExported}) })
}
