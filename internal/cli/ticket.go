package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/example/tether/internal/ports/primary"
	"github.com/example/tether/internal/wire"
)

var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Manage tickets (units of work)",
	Long:  "Create, list, show, and move tickets in the tether ledger",
}

var ticketCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new ticket",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		title := args[0]
		repo, _ := cmd.Flags().GetString("repo")
		body, _ := cmd.Flags().GetString("body")

		repo = defaultRepo(repo)
		if repo == "" {
			return fmt.Errorf("no repo configured\nHint: Use --repo flag or run 'tether init --repo <name>' first")
		}

		resp, err := wire.TicketService().CreateTicket(ctx, primary.CreateTicketRequest{
			Repo:  repo,
			Title: title,
			Body:  body,
		})
		if err != nil {
			return fmt.Errorf("failed to create ticket: %w", err)
		}

		fmt.Printf("✓ Created ticket %s: %s\n", resp.DisplayID, title)
		fmt.Printf("  ID: %s\n", resp.TicketID)
		return nil
	},
}

var ticketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tickets",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		repo, _ := cmd.Flags().GetString("repo")
		column, _ := cmd.Flags().GetString("column")
		limit, _ := cmd.Flags().GetInt("limit")

		tickets, err := wire.TicketService().ListTickets(ctx, primary.TicketFilters{
			Repo:   defaultRepo(repo),
			Column: column,
			Limit:  limit,
		})
		if err != nil {
			return fmt.Errorf("failed to list tickets: %w", err)
		}

		if len(tickets) == 0 {
			fmt.Println("No tickets found")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DISPLAY\tTITLE\tCOLUMN\tREPO")
		fmt.Fprintln(w, "-------\t-----\t------\t----")
		for _, t := range tickets {
			pinnedMark := ""
			if t.Pinned {
				pinnedMark = " [pinned]"
			}
			fmt.Fprintf(w, "%s\t%s%s\t%s\t%s\n", t.DisplayID, t.Title, pinnedMark, t.ColumnName, t.Repo)
		}
		return w.Flush()
	},
}

var ticketShowCmd = &cobra.Command{
	Use:   "show [display-id]",
	Short: "Show ticket details",
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

		fmt.Printf("%s: %s\n", ticket.DisplayID, ticket.Title)
		fmt.Printf("  ID:     %s\n", ticket.ID)
		fmt.Printf("  Repo:   %s\n", ticket.Repo)
		fmt.Printf("  Column: %s\n", ticket.ColumnName)
		if ticket.Body != "" {
			fmt.Printf("\n%s\n", ticket.Body)
		}

		artifacts, err := wire.ArtifactService().ListArtifacts(ctx, ticket.ID)
		if err != nil {
			return fmt.Errorf("failed to list artifacts: %w", err)
		}
		if len(artifacts) > 0 {
			fmt.Println("\nArtifacts:")
			for _, a := range artifacts {
				fmt.Printf("  - %s/%s: %s\n", a.AgentCategory, a.ArtifactType, a.Title)
			}
		}
		return nil
	},
}

var ticketMoveCmd = &cobra.Command{
	Use:   "move [display-id] [column]",
	Short: "Move a ticket to a workflow column",
	Args:  cobra.ExactArgs(2),
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

		if err := wire.TicketService().MoveTicket(ctx, ticket.ID, args[1]); err != nil {
			return fmt.Errorf("failed to move ticket: %w", err)
		}

		fmt.Printf("✓ Ticket %s moved to %s\n", ticket.DisplayID, args[1])
		return nil
	},
}

func init() {
	ticketCreateCmd.Flags().StringP("repo", "r", "", "Repository name (defaults to config)")
	ticketCreateCmd.Flags().StringP("body", "b", "", "Ticket body")

	ticketListCmd.Flags().StringP("repo", "r", "", "Filter by repository (defaults to config)")
	ticketListCmd.Flags().StringP("column", "c", "", "Filter by column (backlog, in_progress, review, done)")
	ticketListCmd.Flags().IntP("limit", "n", 0, "Limit results")

	ticketShowCmd.Flags().StringP("repo", "r", "", "Repository name (defaults to config)")
	ticketMoveCmd.Flags().StringP("repo", "r", "", "Repository name (defaults to config)")

	ticketCmd.AddCommand(ticketCreateCmd)
	ticketCmd.AddCommand(ticketListCmd)
	ticketCmd.AddCommand(ticketShowCmd)
	ticketCmd.AddCommand(ticketMoveCmd)
}

// TicketCmd returns the ticket command
func TicketCmd() *cobra.Command {
	return ticketCmd
}
