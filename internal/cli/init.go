package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/tether/internal/config"
	"github.com/example/tether/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var repo string
	var category string
	var role string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the tether database and project config",
		Long:  `Initialize the tether database at ~/.tether/tether.db and write .tether/config.json in the current directory.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing tether database at %s\n", dbPath)

			if err := db.InitSchema(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}

			fmt.Println("✓ Database initialized successfully")

			if repo != "" {
				cfg := &config.Config{
					Version:       "1.0",
					Repo:          repo,
					AgentCategory: category,
					Role:          role,
				}
				if err := config.SaveConfig(".", cfg); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
				fmt.Println("✓ Config written to .tether/config.json")
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  tether ticket create \"My first ticket\"")
			fmt.Println("  tether doctor")

			return nil
		},
	}

	cmd.Flags().StringVarP(&repo, "repo", "r", "", "Repository name to write into .tether/config.json")
	cmd.Flags().StringVarP(&category, "category", "c", "", "Default agent category")
	cmd.Flags().StringVar(&role, "role", "", "Default bundle consumer role")

	return cmd
}
