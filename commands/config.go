package commands

import (
	"fmt"

	"github.com/mobile-next/gesturekit/config"
)

// ConfigCommand reports the thresholds in effect after applying the file at path to the defaults
func ConfigCommand(path string) *CommandResponse {
	cfg, err := config.Effective(path)
	if err != nil {
		return NewErrorResponse(fmt.Errorf("error loading config: %w", err))
	}
	return NewSuccessResponse(cfg)
}
