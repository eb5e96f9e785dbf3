// spinforge: combinatorial content engine.
//
// Enumerates spintax × location headline spaces and assembles articles
// from content blocks, as an MCP server or from the command line.
//
// Usage:
//
//	spinforge serve                    # Start MCP server (stdio transport)
//	spinforge seed --demo              # Load the demo campaign
//	spinforge count --campaign ID      # Count a headline space
//	spinforge generate --campaign ID   # Store one slice of headlines
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/HendryAvila/spinforge/internal/config"
	"github.com/HendryAvila/spinforge/internal/logging"
	spinserver "github.com/HendryAvila/spinforge/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// cli carries the state shared by every command after PersistentPreRunE.
type cli struct {
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "spinforge",
		Short: "Combinatorial spintax and location content engine",
		Long: `spinforge enumerates the Cartesian product of spintax alternatives and
location tables, stores the resulting headlines, and assembles articles
from reusable content blocks.

Run "spinforge serve" to expose it to an MCP host over stdio.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if c.logger != nil {
				_ = c.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $SPINFORGE_CONFIG or ~/.spinforge/config.yaml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		c.serveCmd(),
		c.generateCmd(),
		c.previewCmd(),
		c.countCmd(),
		c.assembleCmd(),
		c.seedCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) init() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.verbose {
		cfg.Logging.Level = "debug"
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.logger = logger
	return nil
}

// open builds the store and engine for one command.
func (c *cli) open() (*spinserver.App, error) {
	return spinserver.Open(c.cfg, c.logger)
}

func (c *cli) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, cleanup, err := spinserver.New(c.cfg, c.logger)
			defer cleanup()
			if err != nil {
				return fmt.Errorf("creating server: %w", err)
			}
			c.logger.Info("serving on stdio", zap.String("version", spinserver.Version))
			return server.ServeStdio(s)
		},
	}
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// The version needs no config or logger.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "spinforge v%s\n", spinserver.Version)
		},
	}
}

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
