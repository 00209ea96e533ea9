package cli

import (
	"fmt"

	"github.com/mobile-next/gesturekit/commands"
	"github.com/mobile-next/gesturekit/trace"
	"github.com/mobile-next/gesturekit/types"
	"github.com/spf13/cobra"
)

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Synthesize W3C pointer actions for a gesture",
	Long: `Builds the pointer action sequence for a gesture, prints it and optionally saves it as a trace.
With --recognize the actions are also run through the recognizer.`,
}

// runSynth executes req and saves the actions when --output is set
func runSynth(cmd *cobra.Command, req commands.SynthesizeRequest) error {
	req.Duration = synthDuration
	req.Recognize = synthRecognize

	response := commands.SynthesizeCommand(cmd.Context(), req)
	if response.Status == "ok" && synthOutput != "" {
		data := response.Data.(commands.SynthesizeResponse)
		tr := &trace.Trace{
			Version:  trace.CurrentVersion,
			Name:     req.Kind,
			Pointers: data.Actions,
		}
		if err := trace.Save(synthOutput, tr); err != nil {
			response = commands.NewErrorResponse(err)
		}
	}

	printJson(response)
	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}

// singlePointCmd builds a subcommand for gestures that take one "x,y" argument
func singlePointCmd(kind, short string) *cobra.Command {
	return &cobra.Command{
		Use:   kind + " [x,y]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, y, err := parseCoords(args[0])
			if err != nil {
				response := commands.NewErrorResponse(err)
				printJson(response)
				return err
			}
			return runSynth(cmd, commands.SynthesizeRequest{Kind: kind, X: x, Y: y})
		},
	}
}

var synthSwipeCmd = &cobra.Command{
	Use:   "swipe [x1,y1] [x2,y2]",
	Short: "Swipe from one point to another",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		x1, y1, err := parseCoords(args[0])
		if err != nil {
			printJson(commands.NewErrorResponse(err))
			return err
		}
		x2, y2, err := parseCoords(args[1])
		if err != nil {
			printJson(commands.NewErrorResponse(err))
			return err
		}
		return runSynth(cmd, commands.SynthesizeRequest{Kind: types.GestureSwipe, X: x1, Y: y1, X2: x2, Y2: y2})
	},
}

var synthPinchCmd = &cobra.Command{
	Use:   "pinch [cx,cy] [from] [to]",
	Short: "Pinch two fingers around a center",
	Long:  `Moves two fingers placed horizontally around cx,cy from 'from' to 'to' pixels apart. A larger 'to' zooms in.`,
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cx, cy, err := parseCoords(args[0])
		if err != nil {
			printJson(commands.NewErrorResponse(err))
			return err
		}
		from, err := parsePositive("from", args[1])
		if err != nil {
			printJson(commands.NewErrorResponse(err))
			return err
		}
		to, err := parsePositive("to", args[2])
		if err != nil {
			printJson(commands.NewErrorResponse(err))
			return err
		}
		return runSynth(cmd, commands.SynthesizeRequest{
			Kind: types.GesturePinch, X: cx, Y: cy, FromDistance: from, ToDistance: to,
		})
	},
}

func init() {
	rootCmd.AddCommand(synthCmd)

	synthCmd.AddCommand(
		singlePointCmd(types.GestureTap, "Tap once at the given coordinates"),
		singlePointCmd(types.GestureDoubleTap, "Tap twice at the given coordinates; --duration is the gap in ms"),
		singlePointCmd(types.GestureLongPress, "Press and hold at the given coordinates; --duration is the hold in ms"),
		synthSwipeCmd,
		synthPinchCmd,
	)

	synthCmd.PersistentFlags().IntVar(&synthDuration, "duration", 0, "gesture duration in milliseconds (0 uses the gesture default)")
	synthCmd.PersistentFlags().StringVarP(&synthOutput, "output", "o", "", "save the actions as a trace file")
	synthCmd.PersistentFlags().BoolVar(&synthRecognize, "recognize", false, "also report the gestures the actions are recognized as")
}
