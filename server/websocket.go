package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mobile-next/gesturekit/types"
	"github.com/mobile-next/gesturekit/utils"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10

	gestureNotificationMethod = "gesture"
)

type wsConnection struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	mu       sync.Mutex
	sessions map[string]struct{}
}

type connKey struct{}

func withConnection(ctx context.Context, c *wsConnection) context.Context {
	return context.WithValue(ctx, connKey{}, c)
}

// connectionFromContext returns the websocket a request arrived on, or nil for HTTP
func connectionFromContext(ctx context.Context) *wsConnection {
	c, _ := ctx.Value(connKey{}).(*wsConnection)
	return c
}

func newUpgrader(enableCORS bool) *websocket.Upgrader {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	if enableCORS {
		upgrader.CheckOrigin = func(r *http.Request) bool {
			return true
		}
	} else {
		upgrader.CheckOrigin = isSameOrigin
	}

	return &upgrader
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := newUpgrader(s.opts.EnableCORS).Upgrade(w, r, nil)
	if err != nil {
		utils.Verbose("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	wsConn := &wsConnection{conn: conn, sessions: make(map[string]struct{})}
	defer s.closeOwnedSessions(wsConn)

	ctx, cancel := context.WithCancel(withConnection(r.Context(), wsConn))
	defer cancel()
	go wsConn.keepAlive(ctx)

	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			// connection closed or error
			utils.Verbose("WebSocket connection closed: %v", err)
			break
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

		if messageType != websocket.TextMessage {
			wsConn.sendError(nil, ErrCodeInvalidRequest, errTitleInvalidReq, errMsgTextOnly)
			continue
		}

		s.handleWSMessage(ctx, wsConn, message)
	}
}

// keepAlive pings the client so that dead peers are noticed by the read deadline
func (wsc *wsConnection) keepAlive(ctx context.Context) {
	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			wsc.writeMu.Lock()
			err := wsc.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait))
			wsc.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}

func (s *Server) closeOwnedSessions(wsc *wsConnection) {
	for _, id := range wsc.ownedSessions() {
		if err := s.sessions.Close(id); err == nil {
			utils.Verbose("Closed session %s with its connection", id)
		}
	}
}

func isSameOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}

	return originURL.Host == r.Host
}

func (s *Server) handleWSMessage(ctx context.Context, wsConn *wsConnection, message []byte) {
	var req JSONRPCRequest
	if err := json.Unmarshal(message, &req); err != nil {
		wsConn.sendError(nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
		return
	}

	if rpcErr := validateJSONRPCRequest(req); rpcErr != nil {
		wsConn.sendError(req.ID, rpcErr.code, rpcErr.message, rpcErr.data)
		return
	}

	utils.Verbose("WebSocket Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	result, err := s.Execute(ctx, req.Method, req.Params)
	if err != nil {
		utils.Verbose("Error executing method %s: %v", req.Method, err)
		rpcErr := toRPCError(err)
		wsConn.sendError(req.ID, rpcErr.code, rpcErr.message, rpcErr.data)
		return
	}

	wsConn.sendResponse(req.ID, result)
}

func (wsc *wsConnection) own(sessionID string) {
	wsc.mu.Lock()
	defer wsc.mu.Unlock()
	wsc.sessions[sessionID] = struct{}{}
}

func (wsc *wsConnection) disown(sessionID string) {
	wsc.mu.Lock()
	defer wsc.mu.Unlock()
	delete(wsc.sessions, sessionID)
}

func (wsc *wsConnection) ownedSessions() []string {
	wsc.mu.Lock()
	defer wsc.mu.Unlock()
	ids := make([]string, 0, len(wsc.sessions))
	for id := range wsc.sessions {
		ids = append(ids, id)
	}
	return ids
}

// notifyGesture pushes a gesture notification; write errors surface on the read loop
func (wsc *wsConnection) notifyGesture(sessionID string, g types.Recognized) {
	_ = wsc.sendJSON(JSONRPCNotification{
		JSONRPC: "2.0",
		Method:  gestureNotificationMethod,
		Params:  GestureNotification{SessionID: sessionID, Gesture: g},
	})
}

func (wsc *wsConnection) sendResponse(id interface{}, result interface{}) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendError(id interface{}, code int, message string, data interface{}) error {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}
	return wsc.sendJSON(response)
}

func (wsc *wsConnection) sendJSON(v interface{}) error {
	wsc.writeMu.Lock()
	defer wsc.writeMu.Unlock()
	_ = wsc.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return wsc.conn.WriteJSON(v)
}
