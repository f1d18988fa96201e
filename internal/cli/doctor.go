package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/tether/internal/config"
	"github.com/example/tether/internal/db"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the tether environment",
		Long: `Environment health check for tether.

Validates:
- Data directory (~/.tether/)
- Database reachability and schema version
- Project config (.tether/config.json)

Examples:
  tether doctor           # Run full health check
  tether doctor --quiet   # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			results := []CheckResult{
				checkDataDir(),
				checkDatabase(),
				checkSchemaVersion(),
				checkProjectConfig(),
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				fmt.Println()
				fmt.Println("Check              Status")
				fmt.Println("─────────────────────────")
				for _, r := range results {
					fmt.Printf("%-18s %s\n", r.Name, r.Status)
				}
				fmt.Println()

				hasDetails := false
				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						if !hasDetails {
							fmt.Println("Details:")
							hasDetails = true
						}
						fmt.Printf("\n%s:\n%s\n", r.Name, r.Details)
					}
				}

				if hasErrors {
					fmt.Println("\n⚠ Issues found. Run 'tether init' to initialize.")
				} else {
					fmt.Println("All checks passed.")
				}
			}

			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

// checkDataDir validates the ~/.tether directory exists
func checkDataDir() CheckResult {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return CheckResult{Name: "Data directory", Status: "✗", Details: "  Cannot get home directory"}
	}

	dataDir := filepath.Join(homeDir, ".tether")
	if _, err := os.Stat(dataDir); os.IsNotExist(err) {
		return CheckResult{Name: "Data directory", Status: "✗", Details: fmt.Sprintf("  %s does not exist", dataDir)}
	}
	return CheckResult{Name: "Data directory", Status: "✓"}
}

// checkDatabase validates the database opens and responds
func checkDatabase() CheckResult {
	database, err := db.GetDB()
	if err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: fmt.Sprintf("  %v", err)}
	}
	if err := database.Ping(); err != nil {
		return CheckResult{Name: "Database", Status: "✗", Details: fmt.Sprintf("  %v", err)}
	}
	return CheckResult{Name: "Database", Status: "✓"}
}

// checkSchemaVersion validates the schema is current
func checkSchemaVersion() CheckResult {
	current, err := db.CurrentSchemaVersion()
	if err != nil {
		return CheckResult{Name: "Schema version", Status: "✗", Details: fmt.Sprintf("  %v", err)}
	}
	latest := db.LatestSchemaVersion()
	if current < latest {
		return CheckResult{
			Name:    "Schema version",
			Status:  "⚠",
			Details: fmt.Sprintf("  Database at version %d, binary expects %d. Run 'tether init' to migrate.", current, latest),
		}
	}
	return CheckResult{Name: "Schema version", Status: "✓"}
}

// checkProjectConfig reports whether a project config is present
func checkProjectConfig() CheckResult {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return CheckResult{
			Name:    "Project config",
			Status:  "⚠",
			Details: "  No .tether/config.json in current directory. Commands will need explicit --repo flags.",
		}
	}
	if cfg.Repo == "" {
		return CheckResult{Name: "Project config", Status: "⚠", Details: "  Config exists but repo is empty"}
	}
	return CheckResult{Name: "Project config", Status: "✓"}
}
