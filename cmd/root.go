package cmd

import (
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "aidesk",
	Short: "Operator console for your AI business-communication agent",
	Long: `aidesk is the operator console for an AI-driven business-communication
agent. It shows live engagement metrics, lets you review and approve
AI-proposed replies before they are sent, and manages the knowledge
base the agent answers from.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", ".aidesk.yml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
