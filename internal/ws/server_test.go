package ws

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"storefront/internal/config"
	"storefront/internal/livestore"
)

func newTestServer(t *testing.T) string {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		WSReadTimeout:     5 * time.Second,
		WSWriteTimeout:    time.Second,
		WSPingInterval:    time.Second,
		WSMaxMessageBytes: 1 << 16,
	}
	hub := livestore.NewHub(20 * time.Millisecond)
	t.Cleanup(hub.Close)

	router := gin.New()
	router.GET("/ws", NewServer(cfg, hub).HandleWebSocket)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, event, data string) {
	t.Helper()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(fmt.Sprintf(`{"event":%q,"data":%s}`, event, data))))
}

// expect reads frames until one named event arrives
func expect(t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		_, message, err := conn.ReadMessage()
		require.NoError(t, err, "waiting for %s", event)
		var frame Frame
		require.NoError(t, json.Unmarshal(message, &frame))
		if frame.Event == event {
			return frame.Data
		}
	}
}

func TestServer_CallFlow(t *testing.T) {
	url := newTestServer(t)
	agent := dial(t, url)
	user := dial(t, url)

	send(t, agent, livestore.EventRegisterUser, `{"userEmail":"a@x.com","userName":"Ari","isAgent":true}`)
	expect(t, agent, livestore.EventRegistered)
	send(t, user, livestore.EventRegisterUser, `{"userEmail":"u@x.com","userName":"Uma"}`)
	expect(t, user, livestore.EventRegistered)

	send(t, user, livestore.EventRequestConnection, `{"userEmail":"u@x.com","userName":"Uma"}`)
	var request livestore.ConnectionRequestEvent
	require.NoError(t, json.Unmarshal(expect(t, agent, livestore.EventConnectionRequest), &request))
	require.Equal(t, "u@x.com", request.UserEmail)

	send(t, agent, livestore.EventAcceptConnection, fmt.Sprintf(`{"requestId":%q}`, request.RequestID))

	var forUser livestore.AcceptedForUserEvent
	require.NoError(t, json.Unmarshal(expect(t, user, livestore.EventConnectionAccepted), &forUser))
	var forAgent livestore.AcceptedForAgentEvent
	require.NoError(t, json.Unmarshal(expect(t, agent, livestore.EventConnectionAccepted), &forAgent))
	require.Equal(t, forUser.SessionID, forAgent.SessionID)
	require.Equal(t, "Ari", forUser.AgentName)

	var connected livestore.CallEvent
	require.NoError(t, json.Unmarshal(expect(t, user, livestore.EventCallConnected), &connected))
	require.Equal(t, forUser.SessionID, connected.SessionID)
	expect(t, agent, livestore.EventCallConnected)

	offer := fmt.Sprintf(`{"sessionId":%q,"targetUserEmail":"a@x.com","offer":{"type":"offer","sdp":"v=0"}}`, forUser.SessionID)
	send(t, user, livestore.EventWebRTCOffer, offer)
	require.JSONEq(t, offer, string(expect(t, agent, livestore.EventWebRTCOffer)))

	require.NoError(t, user.Close())
	var ended livestore.CallEvent
	require.NoError(t, json.Unmarshal(expect(t, agent, livestore.EventCallEnded), &ended))
	require.Equal(t, "peer-disconnected", ended.Reason)
}

func TestServer_RejectsBadFrames(t *testing.T) {
	url := newTestServer(t)
	conn := dial(t, url)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`not json`)))
	var errEvent livestore.ErrorEvent
	require.NoError(t, json.Unmarshal(expect(t, conn, livestore.EventError), &errEvent))
	require.Contains(t, errEvent.Message, "invalid frame")

	send(t, conn, "self-destruct", `{}`)
	require.NoError(t, json.Unmarshal(expect(t, conn, livestore.EventError), &errEvent))
	require.Contains(t, errEvent.Message, "unknown event")

	send(t, conn, livestore.EventRegisterUser, `{"userName":"anon"}`)
	require.NoError(t, json.Unmarshal(expect(t, conn, livestore.EventError), &errEvent))
	require.Contains(t, errEvent.Message, "missing participant identity")
}

func TestConnection_SendAfterClose(t *testing.T) {
	t.Parallel()

	conn := &Connection{id: "c1", send: make(chan []byte, 1)}
	require.NoError(t, conn.Send("ping", map[string]string{"a": "b"}))
	require.ErrorIs(t, conn.Send("ping", nil), ErrBufferFull)

	conn.close()
	conn.close()
	require.ErrorIs(t, conn.Send("ping", nil), ErrConnectionClosed)
}
