// Package trace reads and writes recorded gesture input.
//
// A trace holds raw pointer events, W3C pointer actions, or both, plus an
// optional config patch applied on top of the defaults when it is replayed.
package trace

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mobile-next/gesturekit/gesture"
	"github.com/mobile-next/gesturekit/input"
	"github.com/mobile-next/gesturekit/types"
	"github.com/mobile-next/gesturekit/utils"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// CurrentVersion is the only trace format version understood
const CurrentVersion = 1

// ActionGap separates the recorded events from the converted pointer actions
const ActionGap = time.Second

type Format string

const (
	FormatJSON  Format = "json"
	FormatPlist Format = "plist"
)

//go:embed schema.json
var schemaData []byte

const schemaURL = "gesturekit://trace.schema.json"

var traceSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaData)); err != nil {
		panic(fmt.Sprintf("add trace schema: %v", err))
	}
	return compiler.MustCompile(schemaURL)
}

// Event is a recorded pointer event, OffsetMs after the start of the trace.
type Event struct {
	OffsetMs int64             `json:"t"`
	Type     gesture.EventType `json:"type"`
	Touches  []gesture.Touch   `json:"touches,omitempty"`
	X        float64           `json:"x,omitempty"`
	Y        float64           `json:"y,omitempty"`
}

type Trace struct {
	Version     int                  `json:"version"`
	Name        string               `json:"name,omitempty"`
	Description string               `json:"description,omitempty"`
	Config      *gesture.ConfigPatch `json:"config,omitempty"`
	Pointers    []types.Pointer      `json:"pointers,omitempty"`
	Events      []Event              `json:"events,omitempty"`
}

// FormatForPath picks the format from the file extension
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".plist":
		return FormatPlist, nil
	default:
		return "", fmt.Errorf("unsupported trace file extension: %s", filepath.Ext(path))
	}
}

// Load reads and validates a trace file
func Load(path string) (*Trace, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read trace: %w", err)
	}

	t, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return t, nil
}

// Parse validates data against the trace schema and decodes it.
// Property lists are converted to JSON first so both formats share one schema.
func Parse(data []byte, format Format) (*Trace, error) {
	switch format {
	case FormatJSON:
	case FormatPlist:
		converted, err := utils.PlistToJSON(data)
		if err != nil {
			return nil, err
		}
		data = converted
	default:
		return nil, fmt.Errorf("unsupported trace format: %s", format)
	}

	var instance interface{}
	if err := json.Unmarshal(data, &instance); err != nil {
		return nil, fmt.Errorf("invalid trace json: %w", err)
	}
	if err := traceSchema.Validate(instance); err != nil {
		return nil, fmt.Errorf("trace does not match schema: %w", err)
	}

	var t Trace
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode trace: %w", err)
	}
	return &t, nil
}

// Save writes t as indented JSON
func Save(path string, t *Trace) error {
	if t.Version == 0 {
		t.Version = CurrentVersion
	}
	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode trace: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write trace: %w", err)
	}
	return nil
}

// FromEvents records events relative to the first one
func FromEvents(events []gesture.Event) *Trace {
	t := &Trace{Version: CurrentVersion}
	if len(events) == 0 {
		return t
	}

	start := events[0].Timestamp
	for _, ev := range events {
		offset := ev.Timestamp.Sub(start).Milliseconds()
		if offset < 0 {
			offset = 0
		}
		t.Events = append(t.Events, Event{
			OffsetMs: offset,
			Type:     ev.Type,
			Touches:  ev.Touches,
			X:        ev.X,
			Y:        ev.Y,
		})
	}
	return t
}

// EffectiveConfig returns base with the trace's patch applied
func (t *Trace) EffectiveConfig(base gesture.Config) gesture.Config {
	if t.Config == nil {
		return base
	}
	return base.Apply(*t.Config)
}

// Timeline returns the recorded events stamped from start, followed by the
// pointer actions converted to events. Actions begin ActionGap after the last
// recorded event.
func (t *Trace) Timeline(start time.Time) ([]gesture.Event, error) {
	events := make([]gesture.Event, 0, len(t.Events))
	actionStart := start
	for _, ev := range t.Events {
		at := start.Add(time.Duration(ev.OffsetMs) * time.Millisecond)
		events = append(events, gesture.Event{
			Type:      ev.Type,
			Touches:   ev.Touches,
			X:         ev.X,
			Y:         ev.Y,
			Timestamp: at,
		})
		if at.Add(ActionGap).After(actionStart) {
			actionStart = at.Add(ActionGap)
		}
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.Before(events[j].Timestamp)
	})

	if len(t.Pointers) > 0 {
		converted, err := input.ActionsToEvents(t.Pointers, actionStart)
		if err != nil {
			return nil, err
		}
		events = append(events, converted...)
	}
	return events, nil
}
