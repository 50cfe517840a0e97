package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:   "theme [dark|light]",
	Short: "Show or set the console theme preference",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}

		if len(args) == 0 {
			fmt.Println(env.creds.Theme())
			return nil
		}

		theme := args[0]
		if theme != "dark" && theme != "light" {
			return fmt.Errorf("theme must be dark or light, got %q", theme)
		}
		if err := env.creds.SetTheme(theme); err != nil {
			return err
		}
		fmt.Printf("Theme set to %s.\n", theme)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(themeCmd)
}
