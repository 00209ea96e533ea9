package cli

import (
	"fmt"

	"github.com/mobile-next/gesturekit/commands"
	"github.com/mobile-next/gesturekit/config"
	"github.com/mobile-next/gesturekit/daemon"
	"github.com/mobile-next/gesturekit/server"
	"github.com/mobile-next/gesturekit/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const defaultServerAddress = "localhost:12000"

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server management commands",
	Long:  `Commands for managing the gesturekit server.`,
}

// serverOptions combines the flags with the [server] section of --config. Flags win.
func serverOptions(cmd *cobra.Command) (server.Options, error) {
	flags := cmd.Flags()

	// GetBool/GetString/GetInt cannot fail for defined flags
	listenAddr, _ := flags.GetString("listen")
	enableCORS, _ := flags.GetBool("cors")
	sessionLimit, _ := flags.GetInt("session-limit")
	requireAuth, _ := flags.GetBool("auth")
	cfgPath, _ := flags.GetString("config")

	opts := server.Options{
		Addr:         listenAddr,
		EnableCORS:   enableCORS,
		ConfigPath:   cfgPath,
		SessionLimit: sessionLimit,
		Registry:     commands.GetRegistry(),
	}

	if cfgPath != "" {
		f, err := config.Load(cfgPath)
		if err != nil {
			return opts, err
		}
		if !flags.Changed("listen") && f.Server.Listen != "" {
			opts.Addr = f.Server.Listen
		}
		if !flags.Changed("session-limit") && f.Server.SessionLimit > 0 {
			opts.SessionLimit = f.Server.SessionLimit
		}
		if len(f.Server.CORSOrigins) > 0 {
			opts.AllowedOrigins = f.Server.CORSOrigins
			if !flags.Changed("cors") {
				opts.EnableCORS = true
			}
		}
	}

	if opts.Addr == "" {
		opts.Addr = defaultServerAddress
	}

	if requireAuth {
		token, err := storedToken()
		if err != nil {
			return opts, err
		}
		if token == "" {
			return opts, fmt.Errorf("--auth needs a token, run 'gesturekit auth token set' first")
		}
		opts.AuthToken = token
	}

	return opts, nil
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the gesturekit server",
	Long:  `Starts the gesturekit JSON-RPC server on /rpc and /ws.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := serverOptions(cmd)
		if err != nil {
			return err
		}

		isDaemon, _ := cmd.Flags().GetBool("daemon")

		if isDaemon && !daemon.IsChild() {
			if err := utils.CheckListenAddr(opts.Addr); err != nil {
				return err
			}

			_, err := daemon.Daemonize()
			if err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			fmt.Printf("Server daemon spawned, attempting to listen on %s\n", opts.Addr)
			return nil
		}

		return server.StartServer(opts)
	},
}

var serverKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the daemonized gesturekit server",
	Long:  `Connects to the server and sends a shutdown command via JSON-RPC.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// GetString cannot fail for defined flags
		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			addr = defaultServerAddress
		}

		token, err := storedToken()
		if err != nil {
			utils.Verbose("Sending shutdown without a token: %v", err)
		}

		if err := daemon.KillServer(addr, token); err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

func addServerStartFlags(flags *pflag.FlagSet) {
	flags.String("listen", "", fmt.Sprintf("Address to listen on (default: %s)", defaultServerAddress))
	flags.Bool("cors", false, "Enable CORS support")
	flags.BoolP("daemon", "d", false, "Run server in daemon mode (background)")
	flags.String("config", "", "Gesture config file (.ini or .toml), reloaded on change")
	flags.Int("session-limit", server.DefaultSessionLimit, "Maximum number of live sessions")
	flags.Bool("auth", false, "Require the bearer token stored with 'auth token set'")
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// add server subcommands
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverKillCmd)

	addServerStartFlags(serverStartCmd.Flags())

	// server kill flags
	serverKillCmd.Flags().String("listen", "", fmt.Sprintf("Address of server to kill (default: %s)", defaultServerAddress))
}
