package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/tether/internal/ports/primary"
	"github.com/example/tether/internal/wire"
)

var messageCmd = &cobra.Command{
	Use:   "message",
	Short: "Manage conversation messages",
	Long:  "Append to and inspect append-only conversation threads",
}

var messageAppendCmd = &cobra.Command{
	Use:   "append [thread] [content]",
	Short: "Append one turn to a thread",
	Long: `Append a message at an explicit sequence number. Replaying the
same (project, thread, seq) is a safe no-op. Omit --seq to claim the
next free slot.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		project, _ := cmd.Flags().GetString("project")
		role, _ := cmd.Flags().GetString("role")
		seq, _ := cmd.Flags().GetInt("seq")

		project = defaultProject(project)
		if project == "" {
			return fmt.Errorf("no project configured\nHint: Use --project flag or set repo in .tether/config.json")
		}
		if role == "" {
			role = defaultCategory("")
		}
		if role == "" {
			return fmt.Errorf("no role given\nHint: Use --role flag")
		}

		if seq == 0 {
			next, err := wire.MessageService().NextSequence(ctx, project, args[0])
			if err != nil {
				return fmt.Errorf("failed to get next sequence: %w", err)
			}
			seq = next
		}

		resp, err := wire.MessageService().AppendMessage(ctx, primary.AppendMessageRequest{
			Project: project,
			Thread:  args[0],
			Seq:     seq,
			Role:    role,
			Content: args[1],
		})
		if err != nil {
			return fmt.Errorf("failed to append message: %w", err)
		}

		if resp.Outcome == primary.OutcomeDuplicate {
			fmt.Printf("✓ Seq %d already occupied, append ignored\n", seq)
			return nil
		}
		fmt.Printf("✓ Appended message at seq %d\n", seq)
		return nil
	},
}

var messageHistoryCmd = &cobra.Command{
	Use:   "history [thread]",
	Short: "Show a thread's messages in sequence order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		project, _ := cmd.Flags().GetString("project")

		project = defaultProject(project)
		if project == "" {
			return fmt.Errorf("no project configured\nHint: Use --project flag")
		}

		messages, err := wire.MessageService().ThreadHistory(ctx, project, args[0])
		if err != nil {
			return fmt.Errorf("failed to get thread history: %w", err)
		}

		if len(messages) == 0 {
			fmt.Println("No messages found")
			return nil
		}

		for _, m := range messages {
			fmt.Printf("[%s] %s: %s\n", strconv.Itoa(m.Seq), m.Role, m.Content)
		}

		gaps, err := wire.MessageService().DetectGaps(ctx, project, args[0])
		if err != nil {
			return fmt.Errorf("failed to detect gaps: %w", err)
		}
		if len(gaps) > 0 {
			fmt.Printf("\n⚠ Missing sequence numbers: %v\n", gaps)
		}
		return nil
	},
}

var messageNextSeqCmd = &cobra.Command{
	Use:   "next-seq [thread]",
	Short: "Print the next free sequence number for a thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		project, _ := cmd.Flags().GetString("project")

		project = defaultProject(project)
		if project == "" {
			return fmt.Errorf("no project configured\nHint: Use --project flag")
		}

		next, err := wire.MessageService().NextSequence(ctx, project, args[0])
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}
		fmt.Println(next)
		return nil
	},
}

func init() {
	messageAppendCmd.Flags().StringP("project", "p", "", "Project namespace (defaults to config)")
	messageAppendCmd.Flags().String("role", "", "Sender role (defaults to agent category in config)")
	messageAppendCmd.Flags().Int("seq", 0, "Explicit sequence number (defaults to next free)")

	messageHistoryCmd.Flags().StringP("project", "p", "", "Project namespace (defaults to config)")
	messageNextSeqCmd.Flags().StringP("project", "p", "", "Project namespace (defaults to config)")

	messageCmd.AddCommand(messageAppendCmd)
	messageCmd.AddCommand(messageHistoryCmd)
	messageCmd.AddCommand(messageNextSeqCmd)
}

// MessageCmd returns the message command
func MessageCmd() *cobra.Command {
	return messageCmd
}
