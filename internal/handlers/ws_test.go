package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imposter/internal/game"
)

func dialRoom(t *testing.T, srv *httptest.Server, code, player string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/rooms/" + code + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"X-Player-Name": {player}})
	require.NoError(t, err)
	resp.Body.Close()
	t.Cleanup(func() { conn.Close() })
	return conn
}

// readUntil reads frames until match accepts one
func readUntil(t *testing.T, conn *websocket.Conn, match func(SocketMessage) bool) SocketMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg SocketMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if match(msg) {
			return msg
		}
	}
}

func TestRoomSocket(t *testing.T) {
	e := newTestEnv(t)
	srv := httptest.NewServer(e.router)
	defer srv.Close()
	code := e.room(t, "Ana", "Bo", "Cy")

	t.Run("sends the caller's view", func(t *testing.T) {
		conn := dialRoom(t, srv, code, "Bo")
		msg := readUntil(t, conn, func(SocketMessage) bool { return true })
		assert.Equal(t, MessageRoom, msg.Type)
		assert.Equal(t, "Bo", msg.Room.You)
		assert.Len(t, msg.Room.Players, 3)
	})

	t.Run("unknown room fails the handshake", func(t *testing.T) {
		url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/rooms/ZZZZ/ws"
		_, resp, err := websocket.DefaultDialer.Dial(url, nil)
		require.ErrorIs(t, err, websocket.ErrBadHandshake)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("connected players resolve the vote", func(t *testing.T) {
		conn := dialRoom(t, srv, code, "Ana")
		readUntil(t, conn, func(SocketMessage) bool { return true })

		base := "/rooms/" + code
		require.Equal(t, http.StatusNoContent, e.do(t, "POST", base+"/start", "Ana", nil).Code)
		for i, name := range []string{"Ana", "Bo", "Cy"} {
			require.Equal(t, http.StatusNoContent, e.do(t, "POST", base+"/turn", name, turnRequest{Game: 1, Round: 1, Index: i}).Code)
		}
		for voter, target := range map[string]string{"Ana": "Cy", "Bo": "Cy", "Cy": "Bo"} {
			require.Equal(t, http.StatusNoContent, e.do(t, "POST", base+"/votes", voter, targetRequest{Target: target}).Code)
		}

		msg := readUntil(t, conn, func(m SocketMessage) bool { return m.Room.Status == game.StatusFinished })
		assert.Equal(t, "Cy", msg.Room.VotedOut)
		assert.Equal(t, "Cy", msg.Room.ImposterName)
		assert.Equal(t, game.OutcomeGroupWins, msg.Room.Outcome)

		require.Equal(t, http.StatusNoContent, e.do(t, "POST", base+"/lobby", "Ana", nil).Code)
	})

	t.Run("kicked players get a final frame", func(t *testing.T) {
		conn := dialRoom(t, srv, code, "Cy")
		readUntil(t, conn, func(m SocketMessage) bool { return m.Room.Status == game.StatusLobby })

		require.Equal(t, http.StatusNoContent, e.do(t, "POST", "/rooms/"+code+"/kick", "Ana", targetRequest{Target: "Cy"}).Code)
		msg := readUntil(t, conn, func(m SocketMessage) bool { return m.Type == MessageRemoved })
		assert.False(t, msg.Room.IsMember)

		var next SocketMessage
		err := conn.ReadJSON(&next)
		assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "got %v", err)
	})
}
