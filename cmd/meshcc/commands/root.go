// Package commands implements the meshcc command tree.
package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/meshcc/meshcc-go/pkg/config"
)

var (
	// Global flags
	cfgFile     string
	logLevel    string
	protocolLog string
	simulate    bool

	// Set during PersistentPreRun
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "meshcc",
	Short: "Interview and control command-class nodes through a gateway",
	Long: `meshcc talks to nodes of a wireless mesh through a TCP or WebSocket
gateway. It interviews nodes to learn their command classes and versions,
reads and writes values, and records protocol captures for later analysis.

Use --simulate to run against a built-in demo device instead of a gateway.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// RootCmd returns the root command for tests.
func RootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "configuration file (YAML)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&protocolLog, "protocol-log", "", "write a protocol capture (.mlog) to this file")
	rootCmd.PersistentFlags().BoolVar(&simulate, "simulate", false, "use the built-in simulated gateway")
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	if cfgFile != "" {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return err
		}
	} else {
		cfg = config.Default()
	}

	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if protocolLog != "" {
		cfg.Logging.ProtocolLog = protocolLog
	}
	if simulate {
		cfg.Gateway.Transport = config.TransportSimulated
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger = newLogger(cmd.ErrOrStderr(), cfg.SlogLevel())
	return nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
