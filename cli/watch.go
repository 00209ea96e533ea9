package cli

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/mobile-next/gesturekit/commands"
	"github.com/mobile-next/gesturekit/config"
	"github.com/mobile-next/gesturekit/gesture"
	"github.com/mobile-next/gesturekit/input"
	"github.com/mobile-next/gesturekit/trace"
	"github.com/mobile-next/gesturekit/types"
	"github.com/spf13/cobra"
)

const watchHeader = "gesturekit watch: drag with the left mouse button, q or Esc quits"

// eventLog forwards events to an element and keeps a copy for --record
type eventLog struct {
	mu      sync.Mutex
	target  *gesture.Element
	events  []gesture.Event
	enabled bool
}

func (l *eventLog) Dispatch(ev gesture.Event) int {
	if l.enabled {
		l.mu.Lock()
		l.events = append(l.events, ev)
		l.mu.Unlock()
	}
	return l.target.Dispatch(ev)
}

func (l *eventLog) snapshot() []gesture.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]gesture.Event(nil), l.events...)
}

// gestureView draws the most recent gestures below the header
type gestureView struct {
	mu     sync.Mutex
	screen tcell.Screen
	lines  []string
}

func (v *gestureView) add(g types.Recognized) {
	data, err := json.Marshal(g)
	if err != nil {
		return
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	_, height := v.screen.Size()
	v.lines = append(v.lines, string(data))
	if visible := height - 2; visible > 0 && len(v.lines) > visible {
		v.lines = v.lines[len(v.lines)-visible:]
	}
	v.drawLocked()
}

func (v *gestureView) draw() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.drawLocked()
}

func (v *gestureView) drawLocked() {
	v.screen.Clear()
	drawText(v.screen, 0, watchHeader, tcell.StyleDefault.Bold(true))
	for i, line := range v.lines {
		drawText(v.screen, i+2, line, tcell.StyleDefault)
	}
	v.screen.Show()
}

func drawText(screen tcell.Screen, row int, text string, style tcell.Style) {
	width, _ := screen.Size()
	col := 0
	for _, r := range text {
		if col >= width {
			return
		}
		screen.SetContent(col, row, r, nil, style)
		col++
	}
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Recognize gestures made with the terminal mouse",
	Long: `Opens a full-screen terminal view and recognizes gestures made by dragging with the mouse.
Each terminal cell stands for --cell-width by --cell-height pixels. Recognized gestures are shown live
and printed as JSON lines on exit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Effective(configPath)
		if err != nil {
			return err
		}
		overrides, err := thresholdOverrides(cmd.Flags())
		if err != nil {
			return err
		}
		cfg = cfg.Apply(overrides)

		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to open terminal: %w", err)
		}
		if err := screen.Init(); err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}

		view := &gestureView{screen: screen}
		recorder := input.NewRecorder(nil, view.add)
		element := gesture.NewElement()
		manager := gesture.NewManager(cfg)
		detach := manager.Attach(element, recorder.Handlers())
		if registry := commands.GetRegistry(); registry != nil {
			registry.Register("watch", manager)
			defer registry.Unregister("watch")
		}

		events := &eventLog{target: element, enabled: watchRecordPath != ""}
		source := input.NewTerminalSource(screen, events, input.WithCellSize(watchCellWidth, watchCellHeight))

		view.draw()
		runErr := source.Run(cmd.Context())
		detach()
		screen.Fini()

		for _, g := range recorder.Gestures() {
			data, err := json.Marshal(g)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
		}

		if watchRecordPath != "" {
			if err := trace.Save(watchRecordPath, trace.FromEvents(events.snapshot())); err != nil {
				return err
			}
		}
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&configPath, "config", "", "gesture config file (.ini or .toml)")
	watchCmd.Flags().Float64Var(&watchCellWidth, "cell-width", input.DefaultCellWidth, "pixels per terminal column")
	watchCmd.Flags().Float64Var(&watchCellHeight, "cell-height", input.DefaultCellHeight, "pixels per terminal row")
	watchCmd.Flags().StringVar(&watchRecordPath, "record", "", "save the mouse events as a trace file")
	addThresholdFlags(watchCmd.Flags())
}
