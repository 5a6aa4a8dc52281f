package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lyzr/crewledger/common/logger"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(logger.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message")
		return nil
	}
}

func TestHub_RoutesByPartition(t *testing.T) {
	h := startHub(t)

	a := newClient(h, nil, "OT_A_2024")
	b := newClient(h, nil, "OT_B_2024")
	all := newClient(h, nil, "")
	for _, c := range []*Client{a, b, all} {
		h.register <- c
	}
	assert.Eventually(t, func() bool { return h.ConnectionCount() == 3 }, time.Second, 5*time.Millisecond)

	h.Publish("OT_A_2024", []byte("a1"))

	assert.Equal(t, "a1", string(receive(t, a)))
	assert.Equal(t, "a1", string(receive(t, all)))
	assert.Empty(t, b.send)

	h.unregister <- a
	assert.Eventually(t, func() bool { return h.ConnectionCount() == 2 }, time.Second, 5*time.Millisecond)
	_, ok := <-a.send
	assert.False(t, ok)
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := startHub(t)
	slow := newClient(h, nil, "OT_A_2024")
	h.register <- slow
	require.Eventually(t, func() bool { return h.ConnectionCount() == 1 }, time.Second, 5*time.Millisecond)

	for i := 0; i <= sendBuffer; i++ {
		h.Publish("OT_A_2024", []byte("x"))
	}
	assert.Eventually(t, func() bool { return h.ConnectionCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestServeWS(t *testing.T) {
	h := startHub(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.ServeWS(w, r, r.URL.Query().Get("partition"))
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "?partition=OT_A_2024"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.ConnectionCount() == 1 }, time.Second, 5*time.Millisecond)
	h.Publish("OT_A_2024", []byte(`{"operation":"edit"}`))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"operation":"edit"}`, string(msg))
}
