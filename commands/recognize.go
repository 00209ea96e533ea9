package commands

import (
	"context"
	"fmt"

	"github.com/mobile-next/gesturekit/config"
	"github.com/mobile-next/gesturekit/gesture"
	"github.com/mobile-next/gesturekit/input"
	"github.com/mobile-next/gesturekit/trace"
	"github.com/mobile-next/gesturekit/types"
	"github.com/mobile-next/gesturekit/utils"
)

// RecognizeRequest selects a trace either by path or inline. Thresholds are
// layered as defaults, then ConfigPath, then the trace's own config, then Overrides.
type RecognizeRequest struct {
	TracePath  string               `json:"tracePath,omitempty"`
	Trace      *trace.Trace         `json:"trace,omitempty"`
	ConfigPath string               `json:"configPath,omitempty"`
	Overrides  *gesture.ConfigPatch `json:"config,omitempty"`
}

type RecognizeResponse struct {
	Config   gesture.Config     `json:"config"`
	Gestures []types.Recognized `json:"gestures"`
}

// RecognizeCommand replays a trace through a gesture manager on a virtual clock
func RecognizeCommand(ctx context.Context, req RecognizeRequest) *CommandResponse {
	tr := req.Trace
	if tr == nil {
		if req.TracePath == "" {
			return NewErrorResponse(fmt.Errorf("either a trace or a trace path is required"))
		}
		loaded, err := trace.Load(req.TracePath)
		if err != nil {
			return NewErrorResponse(fmt.Errorf("error loading trace: %w", err))
		}
		tr = loaded
	}

	cfg, err := config.Effective(req.ConfigPath)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error loading config: %w", err))
	}
	cfg = tr.EffectiveConfig(cfg)
	if req.Overrides != nil {
		cfg = cfg.Apply(*req.Overrides)
	}

	events, err := tr.Timeline(input.Epoch)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error converting trace: %w", err))
	}
	utils.Verbose("Recognizing %d events", len(events))

	gestures, err := input.Recognize(ctx, cfg, events)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error recognizing gestures: %w", err))
	}
	if gestures == nil {
		gestures = []types.Recognized{}
	}

	return NewSuccessResponse(RecognizeResponse{
		Config:   cfg,
		Gestures: gestures,
	})
}
