package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mobile-next/gesturekit/cli"
	"github.com/mobile-next/gesturekit/commands"
	"github.com/mobile-next/gesturekit/gesture"
)

func main() {
	// create manager registry for cleanup tracking
	registry := gesture.NewRegistry()
	commands.SetRegistry(registry)

	// setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// run command in goroutine
	done := make(chan error, 1)
	go func() {
		done <- cli.Execute()
	}()

	// wait for command completion or signal
	select {
	case <-sigChan:
		// detach every live manager so pending timers never fire
		registry.CleanupAll()
		os.Exit(0)
	case err := <-done:
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
}
