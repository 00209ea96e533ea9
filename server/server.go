package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mobile-next/gesturekit/config"
	"github.com/mobile-next/gesturekit/gesture"
	"github.com/mobile-next/gesturekit/utils"
)

const (
	// Parse error: Invalid JSON was received by the server
	ErrCodeParseError = -32700

	// Invalid Request: The JSON sent is not a valid Request object
	ErrCodeInvalidRequest = -32600

	// Method not found: The method does not exist / is not available
	ErrCodeMethodNotFound = -32601

	// Server error: Internal JSON-RPC error
	ErrCodeServerError = -32000

	// Invalid params: Invalid method parameters
	ErrCodeInvalidParams = -32602

	// Internal error: Internal JSON-RPC error
	ErrCodeInternalError = -32603
)

const (
	errTitleParseError    = "Parse error"
	errTitleInvalidReq    = "Invalid Request"
	errTitleMethodNotFnd  = "Method not found"
	errTitleInvalidParams = "Invalid params"
	errTitleServerError   = "Server error"
	errTitleUnauthorized  = "Unauthorized"

	errMsgParseError     = "expecting jsonrpc payload"
	errMsgInvalidJSONRPC = "'jsonrpc' must be '2.0'"
	errMsgIDRequired     = "'id' field is required"
	errMsgMethodRequired = "'method' is required"
	errMsgTextOnly       = "only text messages accepted for requests"
)

// Server timeouts
const (
	ReadTimeout     = 10 * time.Second
	WriteTimeout    = 10 * time.Second
	IdleTimeout     = 120 * time.Second
	ShutdownTimeout = 5 * time.Second
)

var okResponse = map[string]interface{}{"status": "ok"}

type JSONRPCRequest struct {
	// these fields are all omitempty, so we can report back to client if they are missing
	JSONRPC string          `json:"jsonrpc,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC response
type JSONRPCResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   interface{} `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// JSONRPCNotification is a server-initiated message without an id
type JSONRPCNotification struct {
	JSONRPC string      `json:"jsonrpc"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params"`
}

// rpcError carries a specific JSON-RPC error code out of a handler
type rpcError struct {
	code    int
	message string
	data    interface{}
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("%s: %v", e.message, e.data)
}

func invalidParams(format string, args ...interface{}) error {
	return &rpcError{code: ErrCodeInvalidParams, message: errTitleInvalidParams, data: fmt.Sprintf(format, args...)}
}

// toRPCError maps a handler error onto a JSON-RPC error, defaulting to a server error
func toRPCError(err error) *rpcError {
	var rpcErr *rpcError
	if errors.As(err, &rpcErr) {
		return rpcErr
	}
	return &rpcError{code: ErrCodeServerError, message: errTitleServerError, data: err.Error()}
}

// Options configure a Server
type Options struct {
	Addr       string
	EnableCORS bool
	// AllowedOrigins restricts CORS to these origins; empty allows any origin
	AllowedOrigins []string
	// ConfigPath is watched and reapplied to every session when it changes
	ConfigPath   string
	SessionLimit int
	// AuthToken, when set, must be presented as a bearer token
	AuthToken string
	Registry  *gesture.Registry
}

// Server accepts pointer events over JSON-RPC and reports recognised gestures.
type Server struct {
	opts     Options
	sessions *SessionStore
	methods  map[string]HandlerFunc
	watcher  *config.Watcher

	mu         sync.RWMutex
	baseConfig gesture.Config

	shutdownOnce sync.Once
	shutdown     chan struct{}
}

func New(opts Options) (*Server, error) {
	sessions, err := NewSessionStore(opts.SessionLimit, opts.Registry)
	if err != nil {
		return nil, err
	}

	s := &Server{
		opts:       opts,
		sessions:   sessions,
		baseConfig: gesture.DefaultConfig(),
		shutdown:   make(chan struct{}),
	}
	s.methods = s.methodRegistry()

	if opts.ConfigPath != "" {
		watcher, err := config.NewWatcher(opts.ConfigPath, s.applyConfigFile)
		if err != nil {
			return nil, err
		}
		s.watcher = watcher
		s.baseConfig = s.baseConfig.Apply(watcher.Current().Gesture)
	}

	return s, nil
}

// applyConfigFile is called by the watcher after every successful reload
func (s *Server) applyConfigFile(f *config.File) {
	base := gesture.DefaultConfig().Apply(f.Gesture)
	s.mu.Lock()
	s.baseConfig = base
	s.mu.Unlock()

	if err := s.sessions.Rebase(base); err != nil {
		utils.Error("Failed to apply reloaded config: %v", err)
		return
	}
	utils.Info("Applied reloaded config to %d sessions", s.sessions.Len())
}

// BaseConfig is the configuration new sessions start from
func (s *Server) BaseConfig() gesture.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.baseConfig
}

func (s *Server) Sessions() *SessionStore {
	return s.sessions
}

// Shutdown asks a running ListenAndServe to stop. It is safe to call more than once.
func (s *Server) Shutdown() {
	s.shutdownOnce.Do(func() {
		close(s.shutdown)
	})
}

// corsMiddleware handles CORS preflight requests and adds CORS headers to responses.
func corsMiddleware(allowed []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if len(allowed) > 0 {
			origin = ""
			requested := r.Header.Get("Origin")
			for _, o := range allowed {
				if o == requested {
					origin = requested
					break
				}
			}
		}

		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler returns the HTTP handler serving /, /rpc and /ws
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", sendBanner)
	mux.Handle("/rpc", authMiddleware(s.opts.AuthToken, http.HandlerFunc(s.handleJSONRPC)))
	mux.Handle("/ws", authMiddleware(s.opts.AuthToken, http.HandlerFunc(s.handleWebSocket)))

	var handler http.Handler = mux
	if s.opts.EnableCORS {
		handler = corsMiddleware(s.opts.AllowedOrigins, mux)
	}
	return handler
}

// normalizeAddr turns a bare port into ":port"
func normalizeAddr(addr string) (string, error) {
	// if host is missing, default to all interfaces
	if !strings.Contains(addr, ":") {
		port, err := strconv.Atoi(addr)
		if err != nil {
			return "", fmt.Errorf("invalid port: %v", err)
		}
		addr = fmt.Sprintf(":%d", port)
	}
	return addr, nil
}

// ListenAndServe serves until ctx is cancelled, Shutdown is called or a
// client invokes server.shutdown. Live sessions are closed on the way out.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr, err := normalizeAddr(s.opts.Addr)
	if err != nil {
		return err
	}

	if s.watcher != nil {
		if err := s.watcher.Start(); err != nil {
			return err
		}
		defer s.watcher.Close()
	}
	defer s.sessions.CloseAll()

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  ReadTimeout,
		WriteTimeout: WriteTimeout,
		IdleTimeout:  IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		utils.Info("Starting server on http://%s...", httpServer.Addr)
		serveErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	case <-s.shutdown:
		utils.Info("Shutdown requested")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// StartServer builds a server from opts and serves until it is shut down
func StartServer(opts Options) error {
	s, err := New(opts)
	if err != nil {
		return err
	}
	return s.ListenAndServe(context.Background())
}

func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req JSONRPCRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendJSONRPCError(w, nil, ErrCodeParseError, errTitleParseError, errMsgParseError)
		return
	}

	if rpcErr := validateJSONRPCRequest(req); rpcErr != nil {
		sendJSONRPCError(w, req.ID, rpcErr.code, rpcErr.message, rpcErr.data)
		return
	}

	utils.Verbose("Request ID: %v, Method: %s, Params: %s", req.ID, req.Method, string(req.Params))

	result, err := s.Execute(r.Context(), req.Method, req.Params)
	if err != nil {
		utils.Verbose("Error executing method %s: %v", req.Method, err)
		rpcErr := toRPCError(err)
		sendJSONRPCError(w, req.ID, rpcErr.code, rpcErr.message, rpcErr.data)
		return
	}

	sendJSONRPCResponse(w, req.ID, result)
}

// validateJSONRPCRequest checks the envelope fields shared by /rpc and /ws
func validateJSONRPCRequest(req JSONRPCRequest) *rpcError {
	if req.JSONRPC != "2.0" {
		return &rpcError{code: ErrCodeInvalidRequest, message: errTitleInvalidReq, data: errMsgInvalidJSONRPC}
	}
	if req.ID == nil {
		return &rpcError{code: ErrCodeInvalidRequest, message: errTitleInvalidReq, data: errMsgIDRequired}
	}
	if req.Method == "" {
		return &rpcError{code: ErrCodeInvalidRequest, message: errTitleInvalidReq, data: errMsgMethodRequired}
	}
	return nil
}

func sendJSONRPCResponse(w http.ResponseWriter, id interface{}, result interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Result:  result,
		ID:      id,
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

func sendJSONRPCError(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	sendJSONRPCErrorBody(w, id, code, message, data)
}

// sendJSONRPCErrorBody writes the error without touching headers, for callers that already set a status
func sendJSONRPCErrorBody(w http.ResponseWriter, id interface{}, code int, message string, data interface{}) {
	response := JSONRPCResponse{
		JSONRPC: "2.0",
		Error: map[string]interface{}{
			"code":    code,
			"message": message,
			"data":    data,
		},
		ID: id,
	}
	_ = json.NewEncoder(w).Encode(response)
}

func sendBanner(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(okResponse)
}
