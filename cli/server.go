package cli

import (
	"fmt"

	"github.com/mobile-next/windowthrottle/commands"
	"github.com/mobile-next/windowthrottle/daemon"
	"github.com/mobile-next/windowthrottle/server"
	"github.com/spf13/cobra"
)

const defaultServerAddress = "localhost:12000"

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server management commands",
	Long:  `Commands for managing the windowthrottle server.`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the windowthrottle server",
	Long:  `Starts the JSON-RPC server. Clients create sessions, report raw events and subscribe to notifications over WebSocket.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		addr := resolveListenAddress(listenAddr, cfg.Listen)
		cors := enableCORS || cfg.CORS

		if runDaemon && !daemon.IsChild() {
			_, err := daemon.Daemonize()
			if err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			fmt.Printf("Server daemon spawned, attempting to listen on %s\n", addr)
			return nil
		}

		store, err := commands.NewSessionStore(commands.StoreConfig{
			MaxSessions:   cfg.MaxSessions,
			FrameInterval: cfg.FrameInterval,
			Defaults:      cfg.Throttle,
		})
		if err != nil {
			return err
		}
		commands.SetSessionStore(store)
		defer store.CloseAll()

		return server.StartServer(addr, cors)
	},
}

var serverKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the daemonized windowthrottle server",
	Long:  `Connects to the server and sends a shutdown command via JSON-RPC.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// GetString cannot fail for defined flags
		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			addr = defaultServerAddress
		}

		err := daemon.KillServer(addr)
		if err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

// resolveListenAddress prefers the flag, then the config file, then the default
func resolveListenAddress(flagValue, configValue string) string {
	if flagValue != "" {
		return flagValue
	}
	if configValue != "" {
		return configValue
	}
	return defaultServerAddress
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// add server subcommands
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverKillCmd)

	// server start flags
	serverStartCmd.Flags().StringVar(&listenAddr, "listen", "", "Address to listen on (e.g., 'localhost:12000' or '0.0.0.0:13000')")
	serverStartCmd.Flags().BoolVar(&enableCORS, "cors", false, "Enable CORS support")
	serverStartCmd.Flags().BoolVarP(&runDaemon, "daemon", "d", false, "Run server in daemon mode (background)")
	serverStartCmd.Flags().StringVar(&configPath, "config", "", "Path to an ini file with [throttle] and [server] sections")

	// server kill flags
	serverKillCmd.Flags().String("listen", "", fmt.Sprintf("Address of server to kill (default: %s)", defaultServerAddress))
}
