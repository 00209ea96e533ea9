package cli

import (
	"fmt"
	"time"

	"github.com/mobile-next/gesturekit/commands"
	"github.com/mobile-next/gesturekit/gesture"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize [trace]",
	Short: "Recognize gestures in a recorded trace",
	Long: `Replays a .json or .plist trace through the gesture recognizer on a virtual clock and prints the gestures found.
Thresholds come from the defaults, then --config, then the trace itself, then the threshold flags.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides, err := thresholdOverrides(cmd.Flags())
		if err != nil {
			response := commands.NewErrorResponse(err)
			printJson(response)
			return err
		}

		req := commands.RecognizeRequest{
			TracePath:  args[0],
			ConfigPath: configPath,
		}
		if !overrides.IsEmpty() {
			req.Overrides = &overrides
		}

		response := commands.RecognizeCommand(cmd.Context(), req)
		printJson(response)
		if response.Status == "error" {
			return fmt.Errorf("%s", response.Error)
		}
		return nil
	},
}

// addThresholdFlags registers one flag per gesture threshold
func addThresholdFlags(flags *pflag.FlagSet) {
	defaults := gesture.DefaultConfig()
	flags.Float64("swipe-threshold", defaults.SwipeThreshold, "minimum swipe distance in pixels")
	flags.Float64("swipe-velocity", defaults.SwipeVelocityThreshold, "minimum swipe velocity in pixels per millisecond")
	flags.Float64("tap-threshold", defaults.TapThreshold, "maximum tap movement in pixels")
	flags.Duration("double-tap-delay", defaults.DoubleTapDelay, "maximum gap between the taps of a double tap")
	flags.Duration("long-press-delay", defaults.LongPressDelay, "hold time before a long press fires")
	flags.Float64("pinch-threshold", defaults.PinchThreshold, "scale change in percent between pinch events")
}

// thresholdOverrides returns a patch holding only the threshold flags that were set explicitly
func thresholdOverrides(flags *pflag.FlagSet) (gesture.ConfigPatch, error) {
	var patch gesture.ConfigPatch

	floats := []struct {
		name string
		dst  **float64
	}{
		{"swipe-threshold", &patch.SwipeThreshold},
		{"swipe-velocity", &patch.SwipeVelocityThreshold},
		{"tap-threshold", &patch.TapThreshold},
		{"pinch-threshold", &patch.PinchThreshold},
	}
	for _, f := range floats {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetFloat64(f.name)
		if err != nil {
			return patch, err
		}
		*f.dst = &v
	}

	durations := []struct {
		name string
		dst  **time.Duration
	}{
		{"double-tap-delay", &patch.DoubleTapDelay},
		{"long-press-delay", &patch.LongPressDelay},
	}
	for _, d := range durations {
		if !flags.Changed(d.name) {
			continue
		}
		v, err := flags.GetDuration(d.name)
		if err != nil {
			return patch, err
		}
		*d.dst = &v
	}

	return patch, nil
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().StringVar(&configPath, "config", "", "gesture config file (.ini or .toml)")
	addThresholdFlags(recognizeCmd.Flags())
}
