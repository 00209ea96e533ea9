package gesture

import (
	"encoding/json"
	"fmt"
	"time"
)

// Config holds the thresholds used to classify touch sequences.
type Config struct {
	// SwipeThreshold is the minimum travel in pixels for a swipe
	SwipeThreshold float64
	// SwipeVelocityThreshold is the minimum swipe speed in pixels per millisecond
	SwipeVelocityThreshold float64
	// TapThreshold is the maximum travel in pixels for a tap or long press
	TapThreshold float64
	DoubleTapDelay time.Duration
	LongPressDelay time.Duration
	// PinchThreshold is the scale change, in percent, between two pinch events
	PinchThreshold float64
}

const (
	DefaultSwipeThreshold         = 50
	DefaultSwipeVelocityThreshold = 0.3
	DefaultTapThreshold           = 10
	DefaultDoubleTapDelay         = 300 * time.Millisecond
	DefaultLongPressDelay         = 500 * time.Millisecond
	DefaultPinchThreshold         = 10
)

func DefaultConfig() Config {
	return Config{
		SwipeThreshold:         DefaultSwipeThreshold,
		SwipeVelocityThreshold: DefaultSwipeVelocityThreshold,
		TapThreshold:           DefaultTapThreshold,
		DoubleTapDelay:         DefaultDoubleTapDelay,
		LongPressDelay:         DefaultLongPressDelay,
		PinchThreshold:         DefaultPinchThreshold,
	}
}

// Validate reports the first threshold that is out of range
func (c Config) Validate() error {
	switch {
	case c.SwipeThreshold < 0:
		return fmt.Errorf("swipe threshold must be non-negative, got %v", c.SwipeThreshold)
	case c.SwipeVelocityThreshold < 0:
		return fmt.Errorf("swipe velocity threshold must be non-negative, got %v", c.SwipeVelocityThreshold)
	case c.TapThreshold < 0:
		return fmt.Errorf("tap threshold must be non-negative, got %v", c.TapThreshold)
	case c.DoubleTapDelay < 0:
		return fmt.Errorf("double tap delay must be non-negative, got %v", c.DoubleTapDelay)
	case c.LongPressDelay < 0:
		return fmt.Errorf("long press delay must be non-negative, got %v", c.LongPressDelay)
	case c.PinchThreshold < 0:
		return fmt.Errorf("pinch threshold must be non-negative, got %v", c.PinchThreshold)
	}
	return nil
}

// ConfigPatch is a partial Config. Nil fields leave the current value untouched.
type ConfigPatch struct {
	SwipeThreshold         *float64
	SwipeVelocityThreshold *float64
	TapThreshold           *float64
	DoubleTapDelay         *time.Duration
	LongPressDelay         *time.Duration
	PinchThreshold         *float64
}

// IsEmpty reports whether the patch changes nothing
func (p ConfigPatch) IsEmpty() bool {
	return p.SwipeThreshold == nil && p.SwipeVelocityThreshold == nil && p.TapThreshold == nil &&
		p.DoubleTapDelay == nil && p.LongPressDelay == nil && p.PinchThreshold == nil
}

// Merge returns p with every field set in other overriding it.
func (p ConfigPatch) Merge(other ConfigPatch) ConfigPatch {
	if other.SwipeThreshold != nil {
		p.SwipeThreshold = other.SwipeThreshold
	}
	if other.SwipeVelocityThreshold != nil {
		p.SwipeVelocityThreshold = other.SwipeVelocityThreshold
	}
	if other.TapThreshold != nil {
		p.TapThreshold = other.TapThreshold
	}
	if other.DoubleTapDelay != nil {
		p.DoubleTapDelay = other.DoubleTapDelay
	}
	if other.LongPressDelay != nil {
		p.LongPressDelay = other.LongPressDelay
	}
	if other.PinchThreshold != nil {
		p.PinchThreshold = other.PinchThreshold
	}
	return p
}

// Apply shallow-merges the patch into a copy of c.
func (c Config) Apply(p ConfigPatch) Config {
	if p.SwipeThreshold != nil {
		c.SwipeThreshold = *p.SwipeThreshold
	}
	if p.SwipeVelocityThreshold != nil {
		c.SwipeVelocityThreshold = *p.SwipeVelocityThreshold
	}
	if p.TapThreshold != nil {
		c.TapThreshold = *p.TapThreshold
	}
	if p.DoubleTapDelay != nil {
		c.DoubleTapDelay = *p.DoubleTapDelay
	}
	if p.LongPressDelay != nil {
		c.LongPressDelay = *p.LongPressDelay
	}
	if p.PinchThreshold != nil {
		c.PinchThreshold = *p.PinchThreshold
	}
	return c
}

// configJSON is the wire form shared by Config and ConfigPatch; delays are milliseconds.
type configJSON struct {
	SwipeThreshold         *float64 `json:"swipeThreshold,omitempty"`
	SwipeVelocityThreshold *float64 `json:"swipeVelocityThreshold,omitempty"`
	TapThreshold           *float64 `json:"tapThreshold,omitempty"`
	DoubleTapDelay         *int64   `json:"doubleTapDelay,omitempty"`
	LongPressDelay         *int64   `json:"longPressDelay,omitempty"`
	PinchThreshold         *float64 `json:"pinchThreshold,omitempty"`
}

func millis(d *time.Duration) *int64 {
	if d == nil {
		return nil
	}
	ms := d.Milliseconds()
	return &ms
}

func fromMillis(ms *int64) *time.Duration {
	if ms == nil {
		return nil
	}
	d := time.Duration(*ms) * time.Millisecond
	return &d
}

func (p ConfigPatch) MarshalJSON() ([]byte, error) {
	return json.Marshal(configJSON{
		SwipeThreshold:         p.SwipeThreshold,
		SwipeVelocityThreshold: p.SwipeVelocityThreshold,
		TapThreshold:           p.TapThreshold,
		DoubleTapDelay:         millis(p.DoubleTapDelay),
		LongPressDelay:         millis(p.LongPressDelay),
		PinchThreshold:         p.PinchThreshold,
	})
}

func (p *ConfigPatch) UnmarshalJSON(data []byte) error {
	var raw configJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = ConfigPatch{
		SwipeThreshold:         raw.SwipeThreshold,
		SwipeVelocityThreshold: raw.SwipeVelocityThreshold,
		TapThreshold:           raw.TapThreshold,
		DoubleTapDelay:         fromMillis(raw.DoubleTapDelay),
		LongPressDelay:         fromMillis(raw.LongPressDelay),
		PinchThreshold:         raw.PinchThreshold,
	}
	return nil
}

// Patch returns a patch that sets every field to c's values
func (c Config) Patch() ConfigPatch {
	return ConfigPatch{
		SwipeThreshold:         &c.SwipeThreshold,
		SwipeVelocityThreshold: &c.SwipeVelocityThreshold,
		TapThreshold:           &c.TapThreshold,
		DoubleTapDelay:         &c.DoubleTapDelay,
		LongPressDelay:         &c.LongPressDelay,
		PinchThreshold:         &c.PinchThreshold,
	}
}

func (c Config) MarshalJSON() ([]byte, error) {
	return c.Patch().MarshalJSON()
}

func (c *Config) UnmarshalJSON(data []byte) error {
	var p ConfigPatch
	if err := p.UnmarshalJSON(data); err != nil {
		return err
	}
	*c = DefaultConfig().Apply(p)
	return nil
}
