package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/toontrek/internal/config"
	"github.com/vovakirdan/toontrek/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the toontrek SSH server",
	Long: `Start an SSH server that allows users to connect and play.

Each SSH connection gets its own session with a map picker menu and its
own game. Runs are stored per-server (all users share the same history),
recorded under the SSH user name.

Host key handling:
  - If --host-key is provided, uses that key file
  - Otherwise, auto-generates a key at ~/.toontrek/host_key

Examples:
  toontrek serve                           # Listen on :23234 with auto-generated key
  toontrek serve --ssh :2222               # Listen on port 2222
  toontrek serve --host-key ./my_host_key  # Use specific host key
  toontrek serve --db ./runs.db            # Use specific database

Users can connect with:
  ssh localhost -p 23234`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", ":23234", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 30, "Idle timeout in minutes before disconnecting")
	serveCmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom rules YAML")
	serveCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, classic")
}

func runServe(cmd *cobra.Command, _ []string) error {
	rules, err := loadRules()
	if err != nil {
		return err
	}

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = flagSSHAddr
	cfg.HostKeyPath = flagHostKey
	cfg.DBPath = env.DBPath
	cfg.IdleTimeout = time.Duration(flagIdleTimeout) * time.Minute
	cfg.Rules = rules
	cfg.Seed = flagSeed
	cfg.Logger = serverLogger()

	server, err := tui.NewSSHServer(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Starting toontrek SSH server on %s\n", server.Addr())
	fmt.Fprintln(out, "Connect with: ssh localhost -p 23234")
	fmt.Fprintln(out, "Press Ctrl+C to stop")

	return server.ListenAndServe()
}

// serverLogger reports sessions at info level unless asked otherwise.
func serverLogger() *log.Logger {
	l := logger.WithPrefix("toontrek-ssh")
	if flagLogLevel == "" && os.Getenv(config.EnvLogLevel) == "" {
		l.SetLevel(log.InfoLevel)
	}
	return l
}
