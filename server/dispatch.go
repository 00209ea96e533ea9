package server

import (
	"context"
	"encoding/json"
	"fmt"
)

// HandlerFunc is the signature for JSON-RPC method handlers
type HandlerFunc func(ctx context.Context, params json.RawMessage) (interface{}, error)

// methodRegistry returns a map of method names to handler functions.
// It is shared by the HTTP and websocket transports.
func (s *Server) methodRegistry() map[string]HandlerFunc {
	return map[string]HandlerFunc{
		"session_create":  s.handleSessionCreate,
		"session_close":   s.handleSessionClose,
		"session_config":  s.handleSessionConfig,
		"session_events":  s.handleSessionEvents,
		"session_poll":    s.handleSessionPoll,
		"recognize":       s.handleRecognize,
		"synthesize":      s.handleSynthesize,
		"config_get":      s.handleConfigGet,
		"server.shutdown": s.handleShutdown,
	}
}

// Methods lists the registered method names
func (s *Server) Methods() []string {
	names := make([]string, 0, len(s.methods))
	for name := range s.methods {
		names = append(names, name)
	}
	return names
}

// Execute dispatches a method call using the registry.
// This is the main entry point for embedded clients.
func (s *Server) Execute(ctx context.Context, method string, params json.RawMessage) (interface{}, error) {
	handler, exists := s.methods[method]
	if !exists {
		return nil, &rpcError{
			code:    ErrCodeMethodNotFound,
			message: errTitleMethodNotFnd,
			data:    fmt.Sprintf("Method '%s' not found", method),
		}
	}

	return handler(ctx, params)
}
