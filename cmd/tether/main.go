package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/tether/internal/cli"
	"github.com/example/tether/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "tether",
		Short:   "Tether - synchronization ledger for agent-produced artifacts",
		Version: version.String(),
		Long: `Tether is a CLI tool for recording agent output against tickets.
Artifact writes are idempotent, conversation threads are append-only,
and context bundles carry checksum receipts that continuity checks
verify against fresh rebuilds.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.TicketCmd())
	rootCmd.AddCommand(cli.ArtifactCmd())
	rootCmd.AddCommand(cli.MessageCmd())
	rootCmd.AddCommand(cli.BundleCmd())
	rootCmd.AddCommand(cli.CheckCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
