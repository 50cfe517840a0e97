package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osaleh/aidesk/internal/api"
)

var (
	simulateFrom string
	simulateText string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Feed a synthetic inbound message through the agent",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		if err := env.requireAuth(); err != nil {
			return err
		}

		result, err := env.client.SimulateMessage(cmd.Context(), api.SimulateRequest{
			From: simulateFrom,
			Text: simulateText,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Intent:     %s", result.Analysis.Intent)
		if result.Analysis.Confidence > 0 {
			fmt.Printf(" (%.0f%% confidence)", result.Analysis.Confidence*100)
		}
		fmt.Println()
		if result.NeedsApproval {
			fmt.Println("Outcome:    queued for approval (see `aidesk approvals list`)")
		} else {
			fmt.Println("Outcome:    handled automatically")
		}
		return nil
	},
}

func init() {
	simulateCmd.Flags().StringVar(&simulateFrom, "from", "", "sender phone number, e.g. 923001234567")
	simulateCmd.Flags().StringVar(&simulateText, "text", "", "message text")
	_ = simulateCmd.MarkFlagRequired("from")
	_ = simulateCmd.MarkFlagRequired("text")
	rootCmd.AddCommand(simulateCmd)
}
