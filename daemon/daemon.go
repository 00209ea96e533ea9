package daemon

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mobile-next/gesturekit/server"
	"github.com/mobile-next/gesturekit/utils"
	"github.com/sevlyar/go-daemon"
)

const (
	// DaemonEnvVar is the environment variable that marks a daemon child process
	DaemonEnvVar = "GESTUREKIT_DAEMON_CHILD"

	// shutdownRequestID is the JSON-RPC request ID for shutdown commands
	shutdownRequestID = 1
)

// childContext describes the detached server process. The server logs through
// logrus to stderr, so no log or pid file is kept. The child keeps the working
// directory so relative --config paths still resolve.
func childContext() *daemon.Context {
	workDir, err := os.Getwd()
	if err != nil {
		workDir = "/"
	}
	return &daemon.Context{
		WorkDir: workDir,
		Umask:   027,
		Args:    os.Args,
		Env:     append(os.Environ(), DaemonEnvVar+"=1"),
	}
}

// Daemonize re-executes the current command in the background. The parent
// receives the child's process; in the child itself the process is nil.
func Daemonize() (*os.Process, error) {
	child, err := childContext().Reborn()
	if err != nil {
		return nil, fmt.Errorf("failed to daemonize: %w", err)
	}
	return child, nil
}

// IsChild reports whether this process was started by Daemonize
func IsChild() bool {
	return os.Getenv(DaemonEnvVar) == "1"
}

// KillServer connects to the server and sends a shutdown command via JSON-RPC.
// token is sent as a bearer token when the server requires one.
func KillServer(addr, token string) error {
	// normalize address to match server's format
	host, port, err := utils.SplitListenAddr(addr)
	if err != nil {
		return err
	}
	if host == "" {
		host = "localhost"
	}

	// prepend http:// scheme
	addr = "http://" + net.JoinHostPort(host, strconv.Itoa(port))

	// create JSON-RPC request
	reqBody := server.JSONRPCRequest{
		JSONRPC: "2.0",
		Method:  "server.shutdown",
		ID:      shutdownRequestID,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	// send request
	client := &http.Client{Timeout: 10 * time.Second}
	req, err := http.NewRequest(http.MethodPost, addr+"/rpc", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		if strings.Contains(err.Error(), "connection refused") {
			return fmt.Errorf("server is not running on %s", addr)
		}
		return fmt.Errorf("failed to connect to server: %w", err)
	}

	defer resp.Body.Close()

	// check response
	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("server rejected the shutdown request, check 'gesturekit auth token show'")
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned error: %s", resp.Status)
	}

	var rpcResp server.JSONRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("server refused shutdown: %v", rpcResp.Error)
	}
	return nil
}
