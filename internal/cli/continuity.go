package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/tether/internal/core/continuity"
	"github.com/example/tether/internal/ports/primary"
	"github.com/example/tether/internal/wire"
)

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Produce context bundles and inspect receipts",
	Long:  "Assemble context bundles for a ticket and record checksum receipts",
}

var bundleProduceCmd = &cobra.Command{
	Use:   "produce [display-id]",
	Short: "Build a bundle and record its receipt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		repo, _ := cmd.Flags().GetString("repo")
		role, _ := cmd.Flags().GetString("role")

		repo = defaultRepo(repo)
		if repo == "" {
			return fmt.Errorf("no repo configured\nHint: Use --repo flag")
		}
		role = defaultRole(role)
		if role == "" {
			return fmt.Errorf("no role given\nHint: Use --role flag or set role in .tether/config.json")
		}

		ticket, err := wire.TicketService().GetTicketByDisplayID(ctx, repo, args[0])
		if err != nil {
			return fmt.Errorf("failed to get ticket: %w", err)
		}

		resp, err := wire.ContinuityService().ProduceBundle(ctx, primary.ProduceBundleRequest{
			Repo:     repo,
			TicketID: ticket.ID,
			Role:     role,
		})
		if err != nil {
			return fmt.Errorf("failed to produce bundle: %w", err)
		}

		fmt.Printf("✓ Produced bundle v%d for %s (%s)\n", resp.Version, ticket.DisplayID, role)
		fmt.Printf("  Receipt: %s\n", resp.ReceiptID)
		fmt.Printf("  Content: %s\n", resp.ContentChecksum)
		fmt.Printf("  Bundle:  %s\n", resp.BundleChecksum)
		return nil
	},
}

var bundleReceiptsCmd = &cobra.Command{
	Use:   "receipts",
	Short: "List bundle receipts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		repo, _ := cmd.Flags().GetString("repo")
		role, _ := cmd.Flags().GetString("role")
		limit, _ := cmd.Flags().GetInt("limit")

		receipts, err := wire.ContinuityService().ListReceipts(ctx, primary.ReceiptFilters{
			Repo:  defaultRepo(repo),
			Role:  role,
			Limit: limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list receipts: %w", err)
		}

		if len(receipts) == 0 {
			fmt.Println("No receipts found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTICKET\tROLE\tVERSION\tCREATED")
		fmt.Fprintln(w, "--\t------\t----\t-------\t-------")
		for _, r := range receipts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.TicketID, r.Role, r.Version, r.CreatedAt)
		}
		return w.Flush()
	},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run and inspect continuity checks",
	Long:  "Rebuild bundles against their receipts and verify checksums match",
}

var checkRunCmd = &cobra.Command{
	Use:   "run [display-id]",
	Short: "Verify a ticket's latest bundle receipt",
	Long: `Rebuild the bundle for the most recent receipt of (repo, ticket,
role) and compare checksums. Pass --receipt to verify a specific
receipt instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		repo, _ := cmd.Flags().GetString("repo")
		role, _ := cmd.Flags().GetString("role")
		receiptID, _ := cmd.Flags().GetString("receipt")

		req := primary.RunCheckRequest{ReceiptID: receiptID}
		if receiptID == "" {
			if len(args) == 0 {
				return fmt.Errorf("a ticket display id or --receipt is required")
			}
			repo = defaultRepo(repo)
			if repo == "" {
				return fmt.Errorf("no repo configured\nHint: Use --repo flag")
			}
			role = defaultRole(role)
			if role == "" {
				return fmt.Errorf("no role given\nHint: Use --role flag")
			}
			ticket, err := wire.TicketService().GetTicketByDisplayID(ctx, repo, args[0])
			if err != nil {
				return fmt.Errorf("failed to get ticket: %w", err)
			}
			req.Repo = repo
			req.TicketID = ticket.ID
			req.Role = role
		}

		run, err := wire.ContinuityService().RunCheck(ctx, req)
		if err != nil {
			return fmt.Errorf("failed to run check: %w", err)
		}

		fmt.Printf("%s  %s\n", formatVerdict(run.Verdict), run.ID)
		if run.FailureReason != "" {
			fmt.Printf("  Reason:   %s\n", run.FailureReason)
		}
		if run.ReceiptID != "" {
			fmt.Printf("  Receipt:  %s\n", run.ReceiptID)
			fmt.Printf("  Baseline: %s\n", run.BaselineChecksums.Content)
		}
		if run.RebuiltChecksums.Content != "" {
			fmt.Printf("  Rebuilt:  %s\n", run.RebuiltChecksums.Content)
		}
		return nil
	},
}

var checkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List prior check runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		repo, _ := cmd.Flags().GetString("repo")
		receiptID, _ := cmd.Flags().GetString("receipt")
		limit, _ := cmd.Flags().GetInt("limit")

		runs, err := wire.ContinuityService().ListChecks(ctx, primary.CheckFilters{
			ReceiptID: receiptID,
			Repo:      defaultRepo(repo),
			Limit:     limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list checks: %w", err)
		}

		if len(runs) == 0 {
			fmt.Println("No check runs found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "VERDICT\tREASON\tTICKET\tROLE\tCREATED")
		fmt.Fprintln(w, "-------\t------\t------\t----\t-------")
		for _, r := range runs {
			reason := r.FailureReason
			if reason == "" {
				reason = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", formatVerdict(r.Verdict), reason, r.TicketID, r.Role, r.CreatedAt)
		}
		return w.Flush()
	},
}

// formatVerdict colors PASS green and FAIL red.
func formatVerdict(verdict string) string {
	if verdict == continuity.VerdictPass {
		return color.New(color.FgGreen).Sprint(verdict)
	}
	return color.New(color.FgRed).Sprint(verdict)
}

func init() {
	bundleProduceCmd.Flags().StringP("repo", "r", "", "Repository name (defaults to config)")
	bundleProduceCmd.Flags().String("role", "", "Consuming role (defaults to config)")

	bundleReceiptsCmd.Flags().StringP("repo", "r", "", "Filter by repository (defaults to config)")
	bundleReceiptsCmd.Flags().String("role", "", "Filter by role")
	bundleReceiptsCmd.Flags().IntP("limit", "n", 0, "Limit results")

	checkRunCmd.Flags().StringP("repo", "r", "", "Repository name (defaults to config)")
	checkRunCmd.Flags().String("role", "", "Consuming role (defaults to config)")
	checkRunCmd.Flags().String("receipt", "", "Verify a specific receipt id")

	checkListCmd.Flags().StringP("repo", "r", "", "Filter by repository (defaults to config)")
	checkListCmd.Flags().String("receipt", "", "Filter by receipt id")
	checkListCmd.Flags().IntP("limit", "n", 0, "Limit results")

	bundleCmd.AddCommand(bundleProduceCmd)
	bundleCmd.AddCommand(bundleReceiptsCmd)
	checkCmd.AddCommand(checkRunCmd)
	checkCmd.AddCommand(checkListCmd)
}

// BundleCmd returns the bundle command
func BundleCmd() *cobra.Command {
	return bundleCmd
}

// CheckCmd returns the check command
func CheckCmd() *cobra.Command {
	return checkCmd
}
