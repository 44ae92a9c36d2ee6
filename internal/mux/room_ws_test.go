package mux

import (
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"luckyman-server/pkg/playable"
)

func dialRoom(t *testing.T, ts *httptest.Server, roomID, identity string) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/room/" + roomID + "/ws?access_token=" + url.QueryEscape(token(t, identity))
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, key string) *playable.Response {
	t.Helper()

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var resp playable.Response
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatalf("did not receive %s: %v", key, err)
			return nil
		}

		if resp.Key == key {
			return &resp
		}
	}
}

func Test_getRoomIDWS(t *testing.T) {
	a := assert.New(t)
	m := newTestMux(t)
	ts := httptest.NewServer(m)
	defer ts.Close()

	alice := dialRoom(t, ts, "room-1", "seat-alice")
	readUntil(t, alice, "roomState")

	bob := dialRoom(t, ts, "room-1", "seat-bob")
	readUntil(t, bob, "roomState")

	a.NoError(bob.WriteJSON(&playable.PayloadIn{Action: "startRound", Context: "1"}))
	resp := readUntil(t, bob, "error")
	a.Equal("only the host can start a round", resp.Value)
	a.Equal("1", resp.Context)

	a.NoError(alice.WriteJSON(&playable.PayloadIn{Action: "startRound", Context: "2"}))
	resp = readUntil(t, alice, "status")
	a.Equal("2", resp.Context)

	resp = readUntil(t, bob, "roundState")
	view := resp.Data.(map[string]interface{})
	a.Equal(float64(1), view["seat"])
	a.Len(view["hand"], 10)

	// the host opens the first round
	a.NoError(bob.WriteJSON(&playable.PayloadIn{Action: "pass", Context: "3"}))
	resp = readUntil(t, bob, "playRejected")
	a.Equal("NotYourTurn", resp.Value)
	a.Equal("3", resp.Context)
}

func Test_getRoomIDWS_unauthorized(t *testing.T) {
	m := newTestMux(t)
	ts := httptest.NewServer(m)
	defer ts.Close()

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/room/room-1/ws"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	assert.Error(t, err)
	if assert.NotNil(t, resp) {
		assert.Equal(t, 401, resp.StatusCode)
	}
}
