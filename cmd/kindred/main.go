// Command kindred serves and queries the kinship resolution engine.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/scrypster/kindred/internal/config"
	"github.com/scrypster/kindred/internal/logging"
	"github.com/spf13/cobra"
)

// app carries state shared by every subcommand.
type app struct {
	configPath string
	jsonOutput bool

	cfg    *config.Config
	logger *slog.Logger
	out    io.Writer
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "kindred <command>",
		Short:         "Kinship resolution engine for family graphs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.Init(cfg.Log)
			a.out = cmd.OutOrStdout()
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.configPath, "config", os.Getenv("KINDRED_CONFIG"), "path to YAML config file")
	rootCmd.PersistentFlags().BoolVar(&a.jsonOutput, "json", false, "output as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "query", Title: "Queries:"},
		&cobra.Group{ID: "system", Title: "System:"},
	)

	cobra.EnableCommandSorting = false

	// Queries
	rootCmd.AddCommand(newPathCmd(a))
	rootCmd.AddCommand(newKinCmd(a))

	// System
	rootCmd.AddCommand(newServeCmd(a))
	rootCmd.AddCommand(newImportCmd(a))
	rootCmd.AddCommand(newBackupCmd(a))

	return rootCmd
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
