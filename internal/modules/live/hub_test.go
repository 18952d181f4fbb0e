package live

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/logging"
	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
)

func TestHubBroadcastsOrderEvents(t *testing.T) {
	h := NewHub(nil, logging.Discard())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = h.Serve(w, r)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.Subscribers() == 1 }, time.Second, 10*time.Millisecond)

	h.OrderCreated(context.Background(), orders.Order{ID: "o1", Number: "HC-1", TotalCents: 300000, Status: orders.StatusCreated}, nil)
	h.OrderPaid(context.Background(), orders.Order{ID: "o1", Number: "HC-1", Status: orders.StatusPaid})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got []Event
	for i := 0; i < 2; i++ {
		_, msg, err := conn.ReadMessage()
		require.NoError(t, err)
		var ev Event
		require.NoError(t, json.Unmarshal(msg, &ev))
		got = append(got, ev)
	}
	assert.Equal(t, "order.created", got[0].Type)
	assert.Equal(t, 300000, got[0].TotalCents)
	assert.Equal(t, "order.paid", got[1].Type)
}

func TestSlowSubscriberIsDropped(t *testing.T) {
	h := NewHub(nil, logging.Discard())
	c := h.subscribe()
	for i := 0; i < sendBuffer+1; i++ {
		h.Publish(Event{Type: "order.created"})
	}
	assert.Zero(t, h.Subscribers())

	n := 0
	for range c.send {
		n++
	}
	assert.Equal(t, sendBuffer, n)
}

func TestCrossOriginRejected(t *testing.T) {
	h := NewHub([]string{"https://admin.hellocrackers.in"}, logging.Discard())
	r := httptest.NewRequest(http.MethodGet, "http://api.test/api/admin/live", nil)

	r.Header.Set("Origin", "https://evil.example")
	assert.False(t, h.upgrader.CheckOrigin(r))
	r.Header.Set("Origin", "https://admin.hellocrackers.in")
	assert.True(t, h.upgrader.CheckOrigin(r))
}
