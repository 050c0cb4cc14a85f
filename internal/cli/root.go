// Package cli is the operator surface for riskcore.
package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// RootConfig carries global flags into the subcommands.
type RootConfig struct {
	ConfigPath string
	EnvFile    string
	LogLevel   string
	JSONLogs   bool

	Logger zerolog.Logger
}

func NewRootCmd() *cobra.Command {
	rc := &RootConfig{}

	cmd := &cobra.Command{
		Use:           "riskcore",
		Short:         "Risk gating and position reconciliation for automated trading",
		Long: `riskcore sits between a strategy engine and a broker execution
gateway. Every signal passes a kill switch, an order-rate limit, a
position-size cap, and a daily-loss circuit breaker before it may
become an order; fills are reconciled into FIFO-averaged positions.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&rc.ConfigPath, "config", "", "Path to config file (YAML or JSON)")
	cmd.PersistentFlags().StringVar(&rc.EnvFile, "env-file", "", "Path to .env file with RISKCORE_* overrides")
	cmd.PersistentFlags().StringVar(&rc.LogLevel, "log-level", "info", "Log level: debug|info|warn|error")
	cmd.PersistentFlags().BoolVar(&rc.JSONLogs, "json-logs", false, "Emit JSON logs instead of console output")

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level, err := zerolog.ParseLevel(rc.LogLevel)
		if err != nil {
			return fmt.Errorf("bad --log-level %q: %w", rc.LogLevel, err)
		}

		if rc.JSONLogs {
			rc.Logger = zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
		} else {
			cw := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
			rc.Logger = zerolog.New(cw).Level(level).With().Timestamp().Logger()
		}
		return nil
	}

	cmd.AddCommand(
		newRunCmd(rc),
		newStatusCmd(rc),
		newResetCmd(rc),
		newConfigCmd(rc),
	)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("riskcore (dev)")
		},
	})

	return cmd
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
