package commands

import (
	"github.com/mobile-next/gesturekit/gesture"
)

// CommandResponse represents a standardized response format for all commands
type CommandResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// NewSuccessResponse creates a success response
func NewSuccessResponse(data interface{}) *CommandResponse {
	return &CommandResponse{
		Status: "ok",
		Data:   data,
	}
}

// NewErrorResponse creates an error response
func NewErrorResponse(err error) *CommandResponse {
	return &CommandResponse{
		Status: "error",
		Error:  err.Error(),
	}
}

// managerRegistry holds every live gesture manager so that they can be
// detached on SIGINT/SIGTERM.
var managerRegistry *gesture.Registry

// SetRegistry sets the global manager registry. Call it once at startup.
func SetRegistry(registry *gesture.Registry) {
	managerRegistry = registry
}

// GetRegistry returns the current manager registry, or nil before SetRegistry
func GetRegistry() *gesture.Registry {
	return managerRegistry
}
