// toontrek is a Toontown text adventure for the terminal.
//
// Usage:
//
//	toontrek play [map]        - Play a map (menu when no map is given)
//	toontrek maps              - List available maps
//	toontrek maps show <map>   - Show every location and its tunnels
//	toontrek history           - Show recorded runs
//	toontrek serve             - Start SSH server for remote play
//
// Global flags:
//
//	--seed <value>       - Set RNG seed for reproducible hazard placement
//	--db <path>          - Set run ledger path (default: ~/.toontrek/runs.db)
//	--log-level <level>  - debug, info, warn or error (default: warn)
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/toontrek/internal/config"
	"github.com/vovakirdan/toontrek/internal/telemetry"
)

var (
	// Global flags
	flagSeed     int64
	flagDBPath   string
	flagLogLevel string

	// Set up before any subcommand runs
	env      config.Env
	logger   *log.Logger
	shutdown func(context.Context) error
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "toontrek",
	Short: "Toontrek - walk the streets of Toontown in your terminal",
	Long: `Toontrek is a text adventure on the Toontown map. Walk between
playgrounds and streets, dodge bananas and black holes, and throw pies
at the cog that roams the map.

Available commands:
  play     - Play a map
  maps     - Show the available maps
  history  - View recorded runs
  serve    - Start SSH server for remote play

Examples:
  toontrek play
  toontrek play toontown --difficulty hard
  toontrek play --plain < moves.txt
  toontrek maps show toontown
  toontrek serve --ssh :2222`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		return teardown(cmd.Context())
	},
}

func init() {
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to run ledger (default $"+config.EnvDBPath+" or "+config.DefaultDBPath+")")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (default $"+config.EnvLogLevel+" or warn)")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(mapsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

// setup reads the environment, builds the logger and starts tracing.
func setup(cmd *cobra.Command, _ []string) error {
	env = config.LoadEnv()
	if flagDBPath != "" {
		env.DBPath = flagDBPath
	}

	level := env.LogLevel
	if flagLogLevel != "" {
		lvl, err := log.ParseLevel(flagLogLevel)
		if err != nil {
			return fmt.Errorf("invalid --log-level: %w", err)
		}
		level = lvl
	}

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          "toontrek",
		Level:           level,
	})

	var err error
	shutdown, err = telemetry.Setup(cmd.Context(), env.OTLPEndpoint)
	if err != nil {
		// Tracing is optional; keep playing without it
		logger.Warn("tracing disabled", "error", err)
		shutdown = nil
	}
	return nil
}

// teardown flushes pending spans.
func teardown(ctx context.Context) error {
	if shutdown == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Warn("flushing traces failed", "error", err)
	}
	return nil
}
