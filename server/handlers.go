package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mobile-next/gesturekit/commands"
	"github.com/mobile-next/gesturekit/gesture"
	"github.com/mobile-next/gesturekit/trace"
	"github.com/mobile-next/gesturekit/types"
	"github.com/mobile-next/gesturekit/utils"
)

type SessionCreateParams struct {
	Config       *gesture.ConfigPatch `json:"config,omitempty"`
	TouchPrimary bool                 `json:"touchPrimary,omitempty"`
}

type SessionCreateResult struct {
	SessionID string         `json:"sessionId"`
	Config    gesture.Config `json:"config"`
}

type SessionParams struct {
	SessionID string `json:"sessionId"`
}

type SessionConfigParams struct {
	SessionID string              `json:"sessionId"`
	Config    gesture.ConfigPatch `json:"config"`
}

type SessionEventsParams struct {
	SessionID string          `json:"sessionId"`
	Events    []gesture.Event `json:"events"`
}

type SessionPollResult struct {
	SessionID string             `json:"sessionId"`
	Gestures  []types.Recognized `json:"gestures"`
}

type RecognizeParams struct {
	Trace  json.RawMessage      `json:"trace"`
	Config *gesture.ConfigPatch `json:"config,omitempty"`
}

// GestureNotification is pushed to websocket clients for every gesture of their sessions
type GestureNotification struct {
	SessionID string           `json:"sessionId"`
	Gesture   types.Recognized `json:"gesture"`
}

func decodeParams(params json.RawMessage, v interface{}, fields string) error {
	if len(params) == 0 {
		return invalidParams("'params' is required with fields: %s", fields)
	}
	if err := json.Unmarshal(params, v); err != nil {
		return invalidParams("invalid parameters: %v. Expected fields: %s", err, fields)
	}
	return nil
}

func (s *Server) sessionFromParams(params json.RawMessage, fields string) (*Session, error) {
	var p SessionParams
	if err := decodeParams(params, &p, fields); err != nil {
		return nil, err
	}
	if p.SessionID == "" {
		return nil, invalidParams("'sessionId' is required")
	}
	return s.sessions.Get(p.SessionID)
}

func (s *Server) handleSessionCreate(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p SessionCreateParams
	if len(params) > 0 {
		if err := json.Unmarshal(params, &p); err != nil {
			return nil, invalidParams("invalid parameters: %v. Expected fields: config, touchPrimary", err)
		}
	}

	base := s.BaseConfig()
	var overrides gesture.ConfigPatch
	if p.Config != nil {
		overrides = *p.Config
	}
	if err := base.Apply(overrides).Validate(); err != nil {
		return nil, invalidParams("%v", err)
	}

	conn := connectionFromContext(ctx)
	var notify Notifier
	if conn != nil {
		notify = conn.notifyGesture
	}

	session, err := s.sessions.Create(base, overrides, p.TouchPrimary, notify)
	if err != nil {
		return nil, err
	}
	if conn != nil {
		conn.own(session.ID)
	}

	return SessionCreateResult{SessionID: session.ID, Config: session.Config()}, nil
}

func (s *Server) handleSessionClose(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p SessionParams
	if err := decodeParams(params, &p, "sessionId"); err != nil {
		return nil, err
	}
	if p.SessionID == "" {
		return nil, invalidParams("'sessionId' is required")
	}
	if err := s.sessions.Close(p.SessionID); err != nil {
		return nil, err
	}
	if conn := connectionFromContext(ctx); conn != nil {
		conn.disown(p.SessionID)
	}
	return okResponse, nil
}

func (s *Server) handleSessionConfig(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p SessionConfigParams
	if err := decodeParams(params, &p, "sessionId, config"); err != nil {
		return nil, err
	}
	session, err := s.sessions.Get(p.SessionID)
	if err != nil {
		return nil, err
	}
	if err := session.UpdateConfig(p.Config); err != nil {
		return nil, invalidParams("%v", err)
	}
	return session.Config(), nil
}

func (s *Server) handleSessionEvents(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p SessionEventsParams
	if err := decodeParams(params, &p, "sessionId, events"); err != nil {
		return nil, err
	}
	session, err := s.sessions.Get(p.SessionID)
	if err != nil {
		return nil, err
	}

	n, err := session.Dispatch(ctx, p.Events)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, invalidParams("%v", err)
	}
	return map[string]interface{}{"dispatched": n}, nil
}

func (s *Server) handleSessionPoll(ctx context.Context, params json.RawMessage) (interface{}, error) {
	session, err := s.sessionFromParams(params, "sessionId")
	if err != nil {
		return nil, err
	}
	return SessionPollResult{SessionID: session.ID, Gestures: session.Poll()}, nil
}

func (s *Server) handleRecognize(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p RecognizeParams
	if err := decodeParams(params, &p, "trace, config"); err != nil {
		return nil, err
	}
	if len(p.Trace) == 0 {
		return nil, invalidParams("'trace' is required")
	}

	tr, err := trace.Parse(p.Trace, trace.FormatJSON)
	if err != nil {
		return nil, invalidParams("%v", err)
	}

	// start from the server's base config rather than the bare defaults
	overrides := s.BaseConfig().Patch()
	if tr.Config != nil {
		overrides = overrides.Merge(*tr.Config)
	}
	if p.Config != nil {
		overrides = overrides.Merge(*p.Config)
	}
	tr.Config = nil

	response := commands.RecognizeCommand(ctx, commands.RecognizeRequest{Trace: tr, Overrides: &overrides})
	if response.Status == "error" {
		return nil, fmt.Errorf("%s", response.Error)
	}
	return response.Data, nil
}

func (s *Server) handleSynthesize(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var req commands.SynthesizeRequest
	if err := decodeParams(params, &req, "kind, x, y, x2, y2, duration, fromDistance, toDistance, recognize"); err != nil {
		return nil, err
	}
	if req.Recognize {
		patch := s.BaseConfig().Patch()
		if req.Config != nil {
			patch = patch.Merge(*req.Config)
		}
		req.Config = &patch
	}

	response := commands.SynthesizeCommand(ctx, req)
	if response.Status == "error" {
		return nil, invalidParams("%s", response.Error)
	}
	return response.Data, nil
}

func (s *Server) handleConfigGet(ctx context.Context, params json.RawMessage) (interface{}, error) {
	return s.BaseConfig(), nil
}

func (s *Server) handleShutdown(ctx context.Context, params json.RawMessage) (interface{}, error) {
	utils.Info("Received server.shutdown")
	s.Shutdown()
	return okResponse, nil
}
