package cli

import (
	"fmt"

	"github.com/mobile-next/gesturekit/commands"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Gesture configuration commands",
}

var configShowCmd = &cobra.Command{
	Use:   "show [path]",
	Short: "Show the effective gesture thresholds",
	Long:  `Prints the thresholds in effect after applying the optional .ini or .toml file to the defaults. Delays are in milliseconds.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := ""
		if len(args) == 1 {
			path = args[0]
		}

		response := commands.ConfigCommand(path)
		printJson(response)
		if response.Status == "error" {
			return fmt.Errorf("%s", response.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}
