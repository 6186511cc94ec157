package app

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWebServer() (*webServer, *atomic.Int32) {
	var calls atomic.Int32
	s := newWebServer(func() error {
		calls.Add(1)
		return nil
	})
	return s, &calls
}

func TestWebFrameEndpoint(t *testing.T) {
	s, _ := newTestWebServer()
	mux := s.routes()

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/frame", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)

	s.onFrame([]byte(`{"tick":`))
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/frame", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code, "invalid payloads are dropped")

	s.onFrame([]byte(`{"tick":7,"reading":{"gesture":"fist","intensity":0.2}}`))
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/frame", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"tick":7,"reading":{"gesture":"fist","intensity":0.2}}`, rr.Body.String())
}

func TestWebStatusEndpoint(t *testing.T) {
	s, _ := newTestWebServer()
	mux := s.routes()

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	var st Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &st))
	assert.False(t, st.Connected)
	assert.Equal(t, msgNotConnected, st.Message)

	s.onStatus([]byte(`{"connected":true,"time":"2026-01-02T03:04:05Z"}`))
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	var connected Status
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &connected))
	assert.True(t, connected.Connected)
	assert.Empty(t, connected.Message)
}

func TestWebReferenceEndpoint(t *testing.T) {
	s, calls := newTestWebServer()
	mux := s.routes()

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/reference", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, http.MethodPost, rr.Header().Get("Allow"))
	assert.Equal(t, int32(0), calls.Load())

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/reference", nil))
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Equal(t, int32(1), calls.Load())

	failing := newWebServer(func() error { return errors.New("broker down") })
	rr = httptest.NewRecorder()
	failing.routes().ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/reference", nil))
	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Contains(t, rr.Body.String(), "broker down")
}

func TestWebSocketStream(t *testing.T) {
	s, calls := newTestWebServer()
	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	require.Eventually(t, func() bool {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		return len(s.hub.clients) == 1
	}, time.Second, 5*time.Millisecond)

	s.onFrame([]byte(`{"tick":1}`))
	var resp WSResponse
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "frame", resp.Type)
	assert.JSONEq(t, `{"tick":1}`, string(resp.Frame))

	s.onStatus([]byte(`{"connected":false,"message":"x","time":"2026-01-02T03:04:05Z"}`))
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "status", resp.Type)
	require.NotNil(t, resp.Status)
	assert.False(t, resp.Status.Connected)

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "reference"}))
	resp = WSResponse{}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "reference", resp.Type)
	assert.Equal(t, int32(1), calls.Load())

	require.NoError(t, conn.WriteJSON(WSMessage{Action: "dance"}))
	resp = WSResponse{}
	require.NoError(t, conn.ReadJSON(&resp))
	assert.Equal(t, "error", resp.Type)
	assert.Contains(t, resp.Message, "dance")
}

func TestWebSocketClientRemovedOnClose(t *testing.T) {
	s, _ := newTestWebServer()
	srv := httptest.NewServer(s.routes())
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		return len(s.hub.clients) == 1
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		s.hub.mu.Lock()
		defer s.hub.mu.Unlock()
		return len(s.hub.clients) == 0
	}, time.Second, 5*time.Millisecond)

	// broadcasting with no clients is a no-op
	s.onFrame([]byte(`{"tick":2}`))
}
