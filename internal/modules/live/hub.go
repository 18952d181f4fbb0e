// Package live pushes order activity to admins over websockets.
package live

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/HelloCrackers/hellocrackers-2-sub001/internal/modules/orders"
)

const (
	sendBuffer = 16
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingEvery  = (pongWait * 9) / 10
)

type Event struct {
	Type        string    `json:"type"` // order.created | order.paid
	OrderID     string    `json:"order_id"`
	Number      string    `json:"number"`
	Customer    string    `json:"customer"`
	City        string    `json:"city"`
	TotalCents  int       `json:"total_cents"`
	Status      string    `json:"status"`
	PaymentMode string    `json:"payment_method"`
	At          time.Time `json:"at"`
}

type client struct {
	send chan []byte
}

// Hub fans events out to subscribers. A subscriber whose buffer is full is
// dropped rather than blocking the publisher.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	log     logrus.FieldLogger

	upgrader websocket.Upgrader
}

// NewHub builds a hub. allowed lists the browser origins that may connect;
// an empty list accepts same-origin requests only.
func NewHub(allowed []string, log logrus.FieldLogger) *Hub {
	origins := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		origins[o] = true
	}
	h := &Hub{clients: map[*client]struct{}{}, log: log}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			o := r.Header.Get("Origin")
			return o == "" || origins[o] || o == "http://"+r.Host || o == "https://"+r.Host
		},
	}
	return h
}

func (h *Hub) subscribe() *client {
	c := &client{send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) unsubscribe(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Subscribers reports the number of connected admins.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) Publish(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			delete(h.clients, c)
			close(c.send)
			h.log.Warn("live subscriber too slow, dropped")
		}
	}
}

func eventOf(typ string, o orders.Order) Event {
	return Event{
		Type:        typ,
		OrderID:     o.ID,
		Number:      o.Number,
		Customer:    o.CustomerName,
		City:        o.City,
		TotalCents:  o.TotalCents,
		Status:      o.Status,
		PaymentMode: o.PaymentMethod,
		At:          time.Now().UTC(),
	}
}

func (h *Hub) OrderCreated(_ context.Context, o orders.Order, _ []orders.OrderItem) {
	h.Publish(eventOf("order.created", o))
}

func (h *Hub) OrderPaid(_ context.Context, o orders.Order) {
	h.Publish(eventOf("order.paid", o))
}

// Serve upgrades the request and streams events until either side closes.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request) error {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := h.subscribe()

	// reader: only pongs and close frames are expected
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingEvery)
	defer func() {
		ticker.Stop()
		h.unsubscribe(c)
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too slow"))
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-done:
			return nil
		case <-r.Context().Done():
			return nil
		}
	}
}
