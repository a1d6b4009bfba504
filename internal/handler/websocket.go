package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	mdwerror "github.com/msto63/sexpr/foundation/core/error"
	"github.com/msto63/sexpr/internal/service"
	"github.com/msto63/sexpr/internal/store"
	"github.com/msto63/sexpr/pkg/core/logging"
)

const (
	readTimeout  = 120 * time.Second
	writeTimeout = 10 * time.Second
)

// WebSocket upgrader with permissive settings for local development
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler converts expressions sent over a websocket connection
type WebSocketHandler struct {
	converter *service.Converter
	logger    *logging.Logger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(converter *service.Converter) *WebSocketHandler {
	return &WebSocketHandler{
		converter: converter,
		logger:    logging.New("websocket"),
	}
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string          `json:"type"` // "convert", "tokenize", "ping"
	ID      string          `json:"id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// WSConvertPayload carries the expression of convert and tokenize messages
type WSConvertPayload struct {
	Expression string `json:"expression"`
}

// WSResponse represents a WebSocket response
type WSResponse struct {
	Type    string      `json:"type"` // "result", "tokens", "error", "pong"
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// WSErrorPayload represents an error payload
type WSErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeHTTP handles WebSocket upgrade and connections
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("WebSocket upgrade failed", "error", err)
		return
	}
	h.handleConnection(r.Context(), conn)
}

// handleConnection answers messages in order until the peer disconnects
func (h *WebSocketHandler) handleConnection(ctx context.Context, conn *websocket.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	h.logger.Debug("WebSocket connection established", "remote", remote)

	conn.SetReadLimit(maxBodyBytes)
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		var msg WSMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket read error", "remote", remote, "error", err)
			} else {
				h.logger.Debug("WebSocket connection closed", "remote", remote)
			}
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		if err := h.send(conn, h.dispatch(ctx, msg)); err != nil {
			h.logger.Warn("WebSocket send error", "remote", remote, "error", err)
			return
		}
	}
}

func (h *WebSocketHandler) dispatch(ctx context.Context, msg WSMessage) WSResponse {
	switch msg.Type {
	case "ping":
		return WSResponse{Type: "pong", ID: msg.ID}

	case "convert", "tokenize":
		var payload WSConvertPayload
		if err := json.Unmarshal(msg.Payload, &payload); err != nil {
			return errorResponse(msg.ID, "invalid_payload", "Invalid "+msg.Type+" payload")
		}

		var (
			reply *service.Reply
			err   error
		)
		if msg.Type == "convert" {
			requestID := msg.ID
			if requestID == "" {
				requestID = uuid.NewString()
			}
			reply, err = h.converter.Convert(ctx, store.SourceWebSocket, requestID, payload.Expression)
		} else {
			reply, err = h.converter.Tokenize(ctx, payload.Expression)
		}
		if err != nil {
			return serviceErrorResponse(msg.ID, err)
		}

		respType := "result"
		if msg.Type == "tokenize" {
			respType = "tokens"
		}
		return WSResponse{Type: respType, ID: msg.ID, Payload: reply}

	default:
		return errorResponse(msg.ID, "unknown_type", "Unknown message type: "+msg.Type)
	}
}

func (h *WebSocketHandler) send(conn *websocket.Conn, resp WSResponse) error {
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	return conn.WriteJSON(resp)
}

func errorResponse(id, code, message string) WSResponse {
	return WSResponse{
		Type: "error",
		ID:   id,
		Payload: WSErrorPayload{
			Code:    code,
			Message: message,
		},
	}
}

func serviceErrorResponse(id string, err error) WSResponse {
	message := err.Error()
	var merr *mdwerror.Error
	if errors.As(err, &merr) {
		message = merr.Message()
	}
	return errorResponse(id, strings.ToLower(string(mdwerror.GetCode(err))), message)
}
