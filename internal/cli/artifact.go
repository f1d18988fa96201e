package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/tether/internal/ports/primary"
	"github.com/example/tether/internal/wire"
)

var artifactCmd = &cobra.Command{
	Use:   "artifact",
	Short: "Manage artifacts (agent-produced output)",
	Long:  "Idempotently write, list, and show artifacts attached to tickets",
}

var artifactPutCmd = &cobra.Command{
	Use:   "put [display-id]",
	Short: "Idempotently write an artifact under a ticket",
	Long: `Write an artifact under its canonical identity (ticket, agent
category, artifact type). Repeating the same write is a no-op; a
changed body updates the stored row in place. Use --append to add to
the stored body instead of replacing it.

Body is read from --body, or from stdin when --body is omitted.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		repo, _ := cmd.Flags().GetString("repo")
		category, _ := cmd.Flags().GetString("category")
		artifactType, _ := cmd.Flags().GetString("type")
		title, _ := cmd.Flags().GetString("title")
		body, _ := cmd.Flags().GetString("body")
		appendMode, _ := cmd.Flags().GetBool("append")

		repo = defaultRepo(repo)
		if repo == "" {
			return fmt.Errorf("no repo configured\nHint: Use --repo flag")
		}
		category = defaultCategory(category)
		if category == "" {
			return fmt.Errorf("no agent category configured\nHint: Use --category flag or set agent_category in .tether/config.json")
		}

		if body == "" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read body from stdin: %w", err)
			}
			body = string(data)
		}

		ticket, err := wire.TicketService().GetTicketByDisplayID(ctx, repo, args[0])
		if err != nil {
			return fmt.Errorf("failed to get ticket: %w", err)
		}

		writeMode := primary.WriteModeReplace
		if appendMode {
			writeMode = primary.WriteModeAppend
		}

		resp, err := wire.ArtifactService().UpsertArtifact(ctx, primary.UpsertArtifactRequest{
			TicketID:      ticket.ID,
			AgentCategory: category,
			ArtifactType:  artifactType,
			Title:         title,
			Body:          body,
			WriteMode:     writeMode,
		})
		if err != nil {
			return fmt.Errorf("failed to write artifact: %w", err)
		}

		switch resp.Action {
		case primary.ActionInserted:
			fmt.Printf("✓ Created artifact %s\n", resp.ArtifactID)
		case primary.ActionUpdated:
			fmt.Printf("✓ Updated artifact %s\n", resp.ArtifactID)
		case primary.ActionNoop:
			fmt.Printf("✓ Artifact %s already up to date\n", resp.ArtifactID)
		}
		return nil
	},
}

var artifactListCmd = &cobra.Command{
	Use:   "list [display-id]",
	Short: "List artifacts attached to a ticket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		repo, _ := cmd.Flags().GetString("repo")

		repo = defaultRepo(repo)
		if repo == "" {
			return fmt.Errorf("no repo configured\nHint: Use --repo flag")
		}

		ticket, err := wire.TicketService().GetTicketByDisplayID(ctx, repo, args[0])
		if err != nil {
			return fmt.Errorf("failed to get ticket: %w", err)
		}

		artifacts, err := wire.ArtifactService().ListArtifacts(ctx, ticket.ID)
		if err != nil {
			return fmt.Errorf("failed to list artifacts: %w", err)
		}

		if len(artifacts) == 0 {
			fmt.Println("No artifacts found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tCATEGORY\tTYPE\tTITLE\tUPDATED")
		fmt.Fprintln(w, "--\t--------\t----\t-----\t-------")
		for _, a := range artifacts {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", a.ID, a.AgentCategory, a.ArtifactType, a.Title, a.UpdatedAt)
		}
		return w.Flush()
	},
}

var artifactShowCmd = &cobra.Command{
	Use:   "show [artifact-id]",
	Short: "Show an artifact's content",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		artifact, err := wire.ArtifactService().GetArtifact(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get artifact: %w", err)
		}

		fmt.Printf("%s (%s/%s)\n", artifact.Title, artifact.AgentCategory, artifact.ArtifactType)
		fmt.Printf("  Ticket:  %s\n", artifact.TicketID)
		fmt.Printf("  Updated: %s\n", artifact.UpdatedAt)
		fmt.Printf("\n%s\n", artifact.Body)
		return nil
	},
}

func init() {
	artifactPutCmd.Flags().StringP("repo", "r", "", "Repository name (defaults to config)")
	artifactPutCmd.Flags().StringP("category", "c", "", "Agent category (defaults to config)")
	artifactPutCmd.Flags().StringP("type", "t", "", "Artifact type (plan, worklog, decision_log, verification_report, qa_report, review)")
	artifactPutCmd.Flags().String("title", "", "Artifact title")
	artifactPutCmd.Flags().StringP("body", "b", "", "Artifact body (defaults to stdin)")
	artifactPutCmd.Flags().Bool("append", false, "Append to the stored body instead of replacing it")

	artifactListCmd.Flags().StringP("repo", "r", "", "Repository name (defaults to config)")

	artifactCmd.AddCommand(artifactPutCmd)
	artifactCmd.AddCommand(artifactListCmd)
	artifactCmd.AddCommand(artifactShowCmd)
}

// ArtifactCmd returns the artifact command
func ArtifactCmd() *cobra.Command {
	return artifactCmd
}
