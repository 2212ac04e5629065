/**
 * @description
 * This file implements the dashboard broadcaster: a WebSocket hub that pushes
 * a fresh dashboard snapshot to every connected client after a successful
 * mutation, plus an optional AMQP event for out-of-process subscribers. The
 * broadcaster pulls snapshots through the ledger's read methods; the core has
 * no knowledge of subscribers.
 *
 * @dependencies
 * - github.com/gorilla/websocket: WebSocket upgrade and connection handling.
 * - internal/app: Dashboard snapshot assembly.
 */

package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/coreledger/ledger-service/internal/app"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	broadcastWait  = 5 * time.Second
	clientSendSize = 8
)

// EventPublisher publishes dashboard events to out-of-process subscribers.
type EventPublisher interface {
	PublishDashboardUpdated(ctx context.Context, payload any) error
}

// dashboardEnvelope is the frame pushed to WebSocket clients.
type dashboardEnvelope struct {
	Type string                 `json:"type"`
	Data *app.DashboardSnapshot `json:"data"`
}

// DashboardBroadcaster fans dashboard snapshots out to WebSocket clients and
// the event exchange.
type DashboardBroadcaster struct {
	service     *app.Service
	events      EventPublisher
	recentLimit int
	upgrader    websocket.Upgrader

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

// NewDashboardBroadcaster creates a broadcaster. events may be nil when no
// broker is configured.
func NewDashboardBroadcaster(service *app.Service, events EventPublisher, recentLimit int) *DashboardBroadcaster {
	return &DashboardBroadcaster{
		service:     service,
		events:      events,
		recentLimit: recentLimit,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The dashboard is an open demo surface; cross-origin policy is
			// enforced by the CORS layer on the REST routes.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*wsClient]struct{}),
	}
}

// ServeWS upgrades the request to a WebSocket connection, sends the current
// snapshot immediately and keeps pushing updates until the client goes away.
func (b *DashboardBroadcaster) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("level=warn component=ws msg=\"upgrade failed\" err=%v", err)
		return
	}

	client := &wsClient{conn: conn, send: make(chan []byte, clientSendSize)}
	b.mu.Lock()
	b.clients[client] = struct{}{}
	count := len(b.clients)
	b.mu.Unlock()
	log.Printf("level=info component=ws msg=\"client connected\" clients=%d", count)

	if frame, err := b.snapshotFrame(r.Context()); err == nil {
		client.send <- frame
	} else {
		log.Printf("level=warn component=ws msg=\"initial snapshot failed\" err=%v", err)
	}

	go b.writePump(client)
	go b.readPump(client)
}

// Broadcast pulls a fresh snapshot and pushes it to every connected client
// and, when configured, to the event exchange. Called by the HTTP layer and
// the simulator after successful mutations.
func (b *DashboardBroadcaster) Broadcast() {
	ctx, cancel := context.WithTimeout(context.Background(), broadcastWait)
	defer cancel()

	frame, err := b.snapshotFrame(ctx)
	if err != nil {
		log.Printf("level=warn component=ws msg=\"snapshot failed; broadcast skipped\" err=%v", err)
		return
	}

	b.mu.Lock()
	for client := range b.clients {
		select {
		case client.send <- frame:
		default:
			// Slow consumer: drop it rather than block the broadcast.
			delete(b.clients, client)
			close(client.send)
		}
	}
	b.mu.Unlock()

	if b.events != nil {
		if err := b.events.PublishDashboardUpdated(ctx, json.RawMessage(frame)); err != nil {
			log.Printf("level=warn component=ws msg=\"event publish failed\" err=%v", err)
		}
	}
}

func (b *DashboardBroadcaster) snapshotFrame(ctx context.Context) ([]byte, error) {
	snapshot, err := b.service.DashboardSnapshot(ctx, b.recentLimit)
	if err != nil {
		return nil, err
	}
	return json.Marshal(dashboardEnvelope{Type: "dashboard_update", Data: snapshot})
}

func (b *DashboardBroadcaster) writePump(client *wsClient) {
	defer client.conn.Close()
	for frame := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
	client.conn.SetWriteDeadline(time.Now().Add(writeWait))
	client.conn.WriteMessage(websocket.CloseMessage, []byte{})
}

func (b *DashboardBroadcaster) readPump(client *wsClient) {
	defer b.drop(client)
	for {
		// Clients do not send anything meaningful; reading drives connection
		// lifecycle and close handling.
		if _, _, err := client.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (b *DashboardBroadcaster) drop(client *wsClient) {
	b.mu.Lock()
	if _, ok := b.clients[client]; ok {
		delete(b.clients, client)
		close(client.send)
	}
	count := len(b.clients)
	b.mu.Unlock()
	client.conn.Close()
	log.Printf("level=info component=ws msg=\"client disconnected\" clients=%d", count)
}
