// Package config loads gesture thresholds and server settings from ini or toml files.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/mobile-next/gesturekit/gesture"
	"gopkg.in/ini.v1"
)

const (
	gestureSection = "gesture"
	serverSection  = "server"
)

// Server holds the optional [server] settings. Zero values mean "use the flag default".
type Server struct {
	Listen       string
	CORSOrigins  []string
	SessionLimit int
}

// File is the parsed content of a configuration file.
type File struct {
	Gesture gesture.ConfigPatch
	Server  Server
}

// Load reads path, choosing the parser from its extension
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var f *File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".cfg":
		f, err = ParseINI(data)
	case ".toml":
		f, err = ParseTOML(data)
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	if err := gesture.DefaultConfig().Apply(f.Gesture).Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return f, nil
}

// Effective returns the defaults with the file at path applied. An empty path yields the defaults.
func Effective(path string) (gesture.Config, error) {
	cfg := gesture.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	f, err := Load(path)
	if err != nil {
		return cfg, err
	}
	return cfg.Apply(f.Gesture), nil
}

// ParseDelay accepts a Go duration string ("300ms") or a bare integer of milliseconds
func ParseDelay(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid delay %q", s)
	}
	return d, nil
}

// ParseINI reads the [gesture] and [server] sections
func ParseINI(data []byte) (*File, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ini: %w", err)
	}

	f := &File{}
	sec := cfg.Section(gestureSection)

	floats := []struct {
		key string
		dst **float64
	}{
		{"swipe_threshold", &f.Gesture.SwipeThreshold},
		{"swipe_velocity_threshold", &f.Gesture.SwipeVelocityThreshold},
		{"tap_threshold", &f.Gesture.TapThreshold},
		{"pinch_threshold", &f.Gesture.PinchThreshold},
	}
	for _, fl := range floats {
		if !sec.HasKey(fl.key) {
			continue
		}
		v, err := sec.Key(fl.key).Float64()
		if err != nil {
			return nil, fmt.Errorf("[%s] %s: %w", gestureSection, fl.key, err)
		}
		*fl.dst = &v
	}

	delays := []struct {
		key string
		dst **time.Duration
	}{
		{"double_tap_delay", &f.Gesture.DoubleTapDelay},
		{"long_press_delay", &f.Gesture.LongPressDelay},
	}
	for _, dl := range delays {
		if !sec.HasKey(dl.key) {
			continue
		}
		d, err := ParseDelay(sec.Key(dl.key).String())
		if err != nil {
			return nil, fmt.Errorf("[%s] %s: %w", gestureSection, dl.key, err)
		}
		*dl.dst = &d
	}

	srv := cfg.Section(serverSection)
	f.Server.Listen = srv.Key("listen").String()
	if srv.HasKey("cors") {
		f.Server.CORSOrigins = srv.Key("cors").Strings(",")
	}
	if srv.HasKey("session_limit") {
		limit, err := srv.Key("session_limit").Int()
		if err != nil {
			return nil, fmt.Errorf("[%s] session_limit: %w", serverSection, err)
		}
		f.Server.SessionLimit = limit
	}

	return f, nil
}

// tomlDelay decodes either an integer of milliseconds or a duration string
type tomlDelay time.Duration

func (d *tomlDelay) UnmarshalTOML(v interface{}) error {
	switch value := v.(type) {
	case int64:
		*d = tomlDelay(time.Duration(value) * time.Millisecond)
	case string:
		parsed, err := ParseDelay(value)
		if err != nil {
			return err
		}
		*d = tomlDelay(parsed)
	default:
		return fmt.Errorf("invalid delay value %v", v)
	}
	return nil
}

type tomlFile struct {
	Gesture struct {
		SwipeThreshold         *float64   `toml:"swipe_threshold"`
		SwipeVelocityThreshold *float64   `toml:"swipe_velocity_threshold"`
		TapThreshold           *float64   `toml:"tap_threshold"`
		DoubleTapDelay         *tomlDelay `toml:"double_tap_delay"`
		LongPressDelay         *tomlDelay `toml:"long_press_delay"`
		PinchThreshold         *float64   `toml:"pinch_threshold"`
	} `toml:"gesture"`
	Server struct {
		Listen       string   `toml:"listen"`
		CORS         []string `toml:"cors"`
		SessionLimit int      `toml:"session_limit"`
	} `toml:"server"`
}

func (d *tomlDelay) duration() *time.Duration {
	if d == nil {
		return nil
	}
	v := time.Duration(*d)
	return &v
}

// ParseTOML reads the [gesture] and [server] tables
func ParseTOML(data []byte) (*File, error) {
	var raw tomlFile
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("failed to parse toml: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown config key: %s", undecoded[0])
	}

	g := raw.Gesture
	return &File{
		Gesture: gesture.ConfigPatch{
			SwipeThreshold:         g.SwipeThreshold,
			SwipeVelocityThreshold: g.SwipeVelocityThreshold,
			TapThreshold:           g.TapThreshold,
			DoubleTapDelay:         g.DoubleTapDelay.duration(),
			LongPressDelay:         g.LongPressDelay.duration(),
			PinchThreshold:         g.PinchThreshold,
		},
		Server: Server{
			Listen:       raw.Server.Listen,
			CORSOrigins:  raw.Server.CORS,
			SessionLimit: raw.Server.SessionLimit,
		},
	}, nil
}
