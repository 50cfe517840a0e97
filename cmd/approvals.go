package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osaleh/aidesk/internal/api"
)

var approvalsCmd = &cobra.Command{
	Use:   "approvals",
	Short: "Review AI actions awaiting human approval",
}

var approvalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending approvals",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		if err := env.requireAuth(); err != nil {
			return err
		}

		items, err := env.syncManager().Pending.Get(cmd.Context())
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Println("Queue is clear. No pending approvals.")
			return nil
		}

		fmt.Printf("%d item(s) pending\n\n", len(items))
		for _, item := range items {
			printApproval(item)
		}
		return nil
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <id>",
	Short: "Approve a proposed action so the agent executes it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decideApproval(cmd, args[0], api.ApprovalApproved)
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <id>",
	Short: "Reject a proposed action",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return decideApproval(cmd, args[0], api.ApprovalRejected)
	},
}

func decideApproval(cmd *cobra.Command, id string, status api.ApprovalStatus) error {
	env, err := newAppEnv()
	if err != nil {
		return err
	}
	if err := env.requireAuth(); err != nil {
		return err
	}

	m := env.syncManager()
	item, err := m.DecideApproval(cmd.Context(), id, status)
	if err != nil {
		if api.IsConflict(err) {
			return fmt.Errorf("approval %s was already decided by another operator", id)
		}
		return err
	}

	fmt.Printf("Approval %s is now %s.\n", item.ID, item.Status)
	return nil
}

func printApproval(item api.ApprovalItem) {
	fmt.Printf("ID:         %s\n", item.ID)
	fmt.Printf("Intent:     %s (confidence rule %.1f%%)\n",
		item.WorkflowRule.IntentName, item.WorkflowRule.MinConfidence*100)
	fmt.Printf("Incoming:   %q\n", item.ProposedAction.OriginalText)
	fmt.Printf("AI reply:   %q\n", item.ProposedAction.ReplyText)
	fmt.Println()
}

func init() {
	approvalsCmd.AddCommand(approvalsListCmd)
	approvalsCmd.AddCommand(approveCmd)
	approvalsCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(approvalsCmd)
}
