package handler

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

	mdwlog "github.com/msto63/sexpr/foundation/core/log"
	"github.com/msto63/sexpr/foundation/sexpr"
	"github.com/msto63/sexpr/internal/service"
	"github.com/msto63/sexpr/internal/store"
	"github.com/msto63/sexpr/pkg/core/health"
	"github.com/msto63/sexpr/pkg/core/logging"
)

type fixture struct {
	server   *httptest.Server
	history  *store.MemoryStore
	registry *health.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	engine, err := sexpr.New(sexpr.Options{Logger: mdwlog.NewNop(), MaxInputLength: 32})
	require.NoError(t, err)

	history := store.NewMemoryStore()
	converter, err := service.New(service.Config{
		Engine:  engine,
		History: history,
		Logger:  logging.Wrap(mdwlog.NewNop()),
	})
	require.NoError(t, err)

	registry := health.NewRegistry("sexpr", "0.1.0")
	registry.Register(health.EngineCheck(engine))
	registry.Register(health.PingCheck("history", history, true))

	srv := NewServer(DefaultConfig(), converter, registry)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &fixture{server: ts, history: history, registry: registry}
}

func postJSON(t *testing.T, url, body string) (*http.Response, map[string]interface{}) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp, decoded
}

func TestHandler_Convert(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		body   string
		status int
		check  func(t *testing.T, body map[string]interface{})
	}{
		{
			name:   "success",
			body:   `{"expression": "a = b + 1"}`,
			status: http.StatusOK,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, true, body["ok"])
				assert.Equal(t, "( = a ( + b 1 ) )", body["sexpr"])
			},
		},
		{
			name:   "syntax error",
			body:   `{"expression": "1 +"}`,
			status: http.StatusUnprocessableEntity,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, false, body["ok"])
				errBody, ok := body["error"].(map[string]interface{})
				require.True(t, ok)
				assert.Equal(t, "UNEXPECTED_EOF", errBody["kind"])
				assert.Equal(t, float64(3), errBody["start"])
			},
		},
		{
			name:   "empty",
			body:   `{"expression": ""}`,
			status: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "invalid_input", body["code"])
			},
		},
		{
			name:   "too large",
			body:   `{"expression": "` + strings.Repeat("x+", 20) + `x"}`,
			status: http.StatusRequestEntityTooLarge,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "input_too_large", body["code"])
			},
		},
		{
			name:   "invalid json",
			body:   `{"expression":`,
			status: http.StatusBadRequest,
			check: func(t *testing.T, body map[string]interface{}) {
				assert.Equal(t, "invalid_request", body["code"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := postJSON(t, f.server.URL+"/api/v1/convert", tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			tt.check(t, body)
		})
	}

	entries, err := f.history.List(context.Background(), store.Filter{Source: store.SourceHTTP})
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestHandler_Tokenize(t *testing.T) {
	f := newFixture(t)

	resp, body := postJSON(t, f.server.URL+"/api/v1/tokenize", `{"expression": "f(x)"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	tokens, ok := body["tokens"].([]interface{})
	require.True(t, ok)
	require.GreaterOrEqual(t, len(tokens), 4)
	first := tokens[0].(map[string]interface{})
	assert.Equal(t, "f", first["text"])
}

func TestHandler_MethodAndRoutes(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/api/v1/convert")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(f.server.URL + "/nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(f.server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	var info InfoResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.Equal(t, "sexpr", info.Name)
	assert.Contains(t, info.Endpoints, "GET /ws")
}

func TestHandler_Health(t *testing.T) {
	f := newFixture(t)

	resp, err := http.Get(f.server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var report health.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.Equal(t, health.StatusHealthy, report.Status)
	require.Len(t, report.Checks, 2)
	assert.Equal(t, "engine", report.Checks[0].Name)

	f.registry.RegisterFunc("broken", func(ctx context.Context) health.CheckResult {
		return health.CheckResult{Name: "broken", Status: health.StatusUnhealthy}
	})
	resp2, err := http.Get(f.server.URL + "/healthz")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp2.StatusCode)
}

func dialWS(t *testing.T, f *fixture) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

type wsReply struct {
	Type    string          `json:"type"`
	ID      string          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg interface{}) wsReply {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
	var reply wsReply
	require.NoError(t, conn.ReadJSON(&reply))
	return reply
}

func TestWebSocket_Convert(t *testing.T) {
	f := newFixture(t)
	conn := dialWS(t, f)

	reply := roundTrip(t, conn, map[string]interface{}{
		"type":    "convert",
		"id":      "m-1",
		"payload": map[string]string{"expression": "x * (y + 1)"},
	})
	assert.Equal(t, "result", reply.Type)
	assert.Equal(t, "m-1", reply.ID)

	var result service.Reply
	require.NoError(t, json.Unmarshal(reply.Payload, &result))
	assert.True(t, result.OK)
	assert.Equal(t, "( * x ( + y 1 ) )", result.SExpr)

	reply = roundTrip(t, conn, map[string]interface{}{
		"type":    "convert",
		"payload": map[string]string{"expression": "(1 2)"},
	})
	assert.Equal(t, "result", reply.Type)
	require.NoError(t, json.Unmarshal(reply.Payload, &result))
	assert.False(t, result.OK)
	require.NotNil(t, result.Error)
	assert.Equal(t, "UNEXPECTED_TOKEN", result.Error.Kind)
	assert.Equal(t, 3, result.Error.Start)

	entries, err := f.history.List(context.Background(), store.Filter{Source: store.SourceWebSocket})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.NotEmpty(t, e.RequestID)
	}
}

func TestWebSocket_OtherMessages(t *testing.T) {
	f := newFixture(t)
	conn := dialWS(t, f)

	reply := roundTrip(t, conn, map[string]string{"type": "ping", "id": "p"})
	assert.Equal(t, "pong", reply.Type)
	assert.Equal(t, "p", reply.ID)

	reply = roundTrip(t, conn, map[string]interface{}{
		"type":    "tokenize",
		"payload": map[string]string{"expression": "-1"},
	})
	assert.Equal(t, "tokens", reply.Type)

	reply = roundTrip(t, conn, map[string]string{"type": "shout"})
	assert.Equal(t, "error", reply.Type)
	var errPayload WSErrorPayload
	require.NoError(t, json.Unmarshal(reply.Payload, &errPayload))
	assert.Equal(t, "unknown_type", errPayload.Code)

	reply = roundTrip(t, conn, map[string]interface{}{
		"type":    "convert",
		"payload": map[string]string{"expression": " "},
	})
	assert.Equal(t, "error", reply.Type)
	require.NoError(t, json.Unmarshal(reply.Payload, &errPayload))
	assert.Equal(t, "invalid_input", errPayload.Code)

	reply = roundTrip(t, conn, map[string]interface{}{
		"type":    "convert",
		"payload": "not an object",
	})
	assert.Equal(t, "error", reply.Type)
	require.NoError(t, json.Unmarshal(reply.Payload, &errPayload))
	assert.Equal(t, "invalid_payload", errPayload.Code)
}
