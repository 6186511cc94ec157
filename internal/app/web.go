package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/bend_glove/internal/config"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// WebSocket message types
type WSMessage struct {
	Action string `json:"action"` // reference
}

type WSResponse struct {
	Type    string          `json:"type"` // frame, status, reference, error
	Frame   json.RawMessage `json:"frame,omitempty"`
	Status  *Status         `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
}

// wsClientBuffer frames are queued per client before new ones are dropped.
const wsClientBuffer = 16

type wsClient struct {
	conn *websocket.Conn
	send chan []byte
}

type wsHub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newWSHub() *wsHub {
	return &wsHub{clients: make(map[*wsClient]struct{})}
}

func (h *wsHub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *wsHub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

func (h *wsHub) broadcast(msg WSResponse) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("web: websocket marshal error: %v", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			// slow client, skip this message
		}
	}
}

// webServer serves the latest interpreter output received over MQTT.
type webServer struct {
	mu         sync.RWMutex
	frame      json.RawMessage
	status     Status
	haveStatus bool

	hub              *wsHub
	requestReference func() error
}

func newWebServer(requestReference func() error) *webServer {
	return &webServer{hub: newWSHub(), requestReference: requestReference}
}

func (s *webServer) onFrame(payload []byte) {
	if !json.Valid(payload) {
		log.Printf("web: invalid frame payload (%d bytes)", len(payload))
		return
	}
	frame := json.RawMessage(append([]byte(nil), payload...))
	s.mu.Lock()
	s.frame = frame
	s.mu.Unlock()
	s.hub.broadcast(WSResponse{Type: "frame", Frame: frame})
}

func (s *webServer) onStatus(payload []byte) {
	var st Status
	if err := json.Unmarshal(payload, &st); err != nil {
		log.Printf("web: status unmarshal error: %v", err)
		return
	}
	s.mu.Lock()
	s.status = st
	s.haveStatus = true
	s.mu.Unlock()
	s.hub.broadcast(WSResponse{Type: "status", Status: &st})
}

func (s *webServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/frame", s.handleFrame)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/reference", s.handleReference)
	mux.HandleFunc("/ws", s.handleWS)

	// Static files from ./web as the root
	mux.Handle("/", http.FileServer(http.Dir("web")))
	return mux
}

func (s *webServer) handleFrame(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	frame := s.frame
	s.mu.RUnlock()

	if frame == nil {
		http.Error(w, "no data yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(frame); err != nil {
		log.Printf("web: write error: %v", err)
	}
}

func (s *webServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	st, ok := s.status, s.haveStatus
	s.mu.RUnlock()

	if !ok {
		st = Status{Connected: false, Message: msgNotConnected, Time: time.Now()}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(st); err != nil {
		log.Printf("web: json encode error: %v", err)
	}
}

func (s *webServer) handleReference(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := s.requestReference(); err != nil {
		log.Printf("web: reference request failed: %v", err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handleWS streams frames and status updates and accepts reference actions.
func (s *webServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("web: websocket upgrade error: %v", err)
		return
	}

	c := &wsClient{conn: conn, send: make(chan []byte, wsClientBuffer)}
	s.hub.add(c)
	defer func() {
		s.hub.remove(c)
		conn.Close()
	}()

	go func() {
		for msg := range c.send {
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Printf("web: websocket write error: %v", err)
				return
			}
		}
	}()

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("web: websocket read error: %v", err)
			}
			return
		}

		switch msg.Action {
		case "reference":
			resp := WSResponse{Type: "reference"}
			if err := s.requestReference(); err != nil {
				resp = WSResponse{Type: "error", Message: err.Error()}
			}
			s.sendTo(c, resp)
		default:
			s.sendTo(c, WSResponse{Type: "error", Message: fmt.Sprintf("unknown action %q", msg.Action)})
		}
	}
}

func (s *webServer) sendTo(c *wsClient, msg WSResponse) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("web: websocket marshal error: %v", err)
		return
	}
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if _, ok := s.hub.clients[c]; !ok {
		return
	}
	select {
	case c.send <- payload:
	default:
	}
}

// RunWeb serves the JSON API, the websocket stream and ./web until ctx is
// cancelled.
func RunWeb(ctx context.Context) error {
	cfg := config.Get()

	client, err := connectMQTT(cfg.MQTTBroker, cfg.MQTTClientIDWeb)
	if err != nil {
		return err
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	s := newWebServer(func() error {
		payload, err := json.Marshal(ReferenceRequest{Source: "web", Time: time.Now()})
		if err != nil {
			return err
		}
		token := client.Publish(cfg.TopicReference, 0, false, payload)
		token.Wait()
		return token.Error()
	})

	if err := subscribe(client, cfg.TopicFrame, func(_ mqtt.Client, msg mqtt.Message) {
		s.onFrame(msg.Payload())
	}); err != nil {
		return err
	}
	if err := subscribe(client, cfg.TopicStatus, func(_ mqtt.Client, msg mqtt.Message) {
		s.onStatus(msg.Payload())
	}); err != nil {
		return err
	}
	log.Printf("web: subscribed to %s and %s", cfg.TopicFrame, cfg.TopicStatus)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.WebServerPort),
		Handler: s.routes(),
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("web: shutdown error: %v", err)
		}
	}()

	log.Printf("web: server listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
