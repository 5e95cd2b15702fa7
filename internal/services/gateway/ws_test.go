package gateway

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abderrahmenzaway/wie-empower/internal/events"
)

func TestWebsocketReceivesOwnEventsOnly(t *testing.T) {
	app := newTestApp(t, "")
	srv := httptest.NewServer(app.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	header := http.Header{"X-User-ID": []string{"alice"}}
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, header)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	// Give the subscription a moment to attach before publishing.
	time.Sleep(50 * time.Millisecond)
	app.hub.Publish(events.Event{Type: events.ZoneUpdated, UserID: "alice", Payload: map[string]string{"id": "z1"}})
	app.hub.Publish(events.Event{Type: events.ZoneUpdated, UserID: "bob", Payload: map[string]string{"id": "z2"}})
	app.hub.Publish(events.Event{Type: events.NewNotification, UserID: "alice", Payload: map[string]string{"id": "n1"}})

	var first events.Event
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, events.ZoneUpdated, first.Type)
	assert.Equal(t, "alice", first.UserID)

	var second events.Event
	require.NoError(t, conn.ReadJSON(&second))
	// Bob's event never arrives; the next frame is alice's notification.
	assert.Equal(t, events.NewNotification, second.Type)
}

func TestWebsocketRequiresIdentity(t *testing.T) {
	app := newTestApp(t, "")
	srv := httptest.NewServer(app.Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if conn != nil {
		conn.Close()
	}
	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
