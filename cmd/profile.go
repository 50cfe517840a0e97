package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/osaleh/aidesk/internal/api"
)

var (
	profileKnowledge    string
	profileInstructions string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage the AI knowledge base and behavior rules",
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current business profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}
		if err := env.requireAuth(); err != nil {
			return err
		}

		profile, err := env.syncManager().Profile.Get(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println("Knowledge base:")
		fmt.Printf("  %s\n\n", orEmpty(profile.KnowledgeBase))
		fmt.Println("AI instructions:")
		fmt.Printf("  %s\n", orEmpty(profile.AIInstructions))
		return nil
	},
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update knowledge base and/or AI instructions",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("knowledge-base") && !cmd.Flags().Changed("instructions") {
			return fmt.Errorf("nothing to update: pass --knowledge-base and/or --instructions")
		}

		env, err := newAppEnv()
		if err != nil {
			return err
		}
		if err := env.requireAuth(); err != nil {
			return err
		}

		var update api.ProfileUpdate
		if cmd.Flags().Changed("knowledge-base") {
			update.KnowledgeBase = &profileKnowledge
		}
		if cmd.Flags().Changed("instructions") {
			update.AIInstructions = &profileInstructions
		}

		m := env.syncManager()
		if _, err := m.SaveProfile(cmd.Context(), update); err != nil {
			return err
		}

		// Read back through the cache so the printed copy is the
		// backend-confirmed one, not our local draft.
		profile, err := m.Profile.Get(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println("Profile updated.")
		fmt.Printf("Knowledge base:  %s\n", orEmpty(profile.KnowledgeBase))
		fmt.Printf("AI instructions: %s\n", orEmpty(profile.AIInstructions))
		return nil
	},
}

func orEmpty(s string) string {
	if s == "" {
		return "(empty)"
	}
	return s
}

func init() {
	profileSetCmd.Flags().StringVar(&profileKnowledge, "knowledge-base", "", "business knowledge the agent answers from")
	profileSetCmd.Flags().StringVar(&profileInstructions, "instructions", "", "behavior rules for the agent")
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileSetCmd)
	rootCmd.AddCommand(profileCmd)
}
