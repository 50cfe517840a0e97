package cmd

import (
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/osaleh/aidesk/internal/api"
)

var (
	signupName     string
	signupBusiness string
	signupEmail    string
)

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a company account",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}

		req := api.SignupRequest{
			Name:         signupName,
			BusinessName: signupBusiness,
			Email:        signupEmail,
		}
		if req.Name == "" {
			if req.Name, err = promptText("Your name"); err != nil {
				return err
			}
		}
		if req.BusinessName == "" {
			if req.BusinessName, err = promptText("Business name"); err != nil {
				return err
			}
		}
		if req.Email == "" {
			if req.Email, err = promptEmail(); err != nil {
				return err
			}
		}
		if req.Password, err = promptPassword("Password (min 6 characters)"); err != nil {
			return err
		}

		if err := env.session.Signup(cmd.Context(), req); err != nil {
			return fmt.Errorf("signup failed: %w", err)
		}

		user, _ := env.session.User()
		fmt.Printf("Account created. Logged in as %s (%s)\n", user.Email, user.BusinessName)
		return nil
	},
}

func promptText(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Validate: func(input string) error {
			if input == "" {
				return fmt.Errorf("must not be empty")
			}
			return nil
		},
	}
	value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("%s prompt: %w", label, err)
	}
	return value, nil
}

func init() {
	signupCmd.Flags().StringVar(&signupName, "name", "", "operator name")
	signupCmd.Flags().StringVar(&signupBusiness, "business", "", "business name")
	signupCmd.Flags().StringVar(&signupEmail, "email", "", "operator email")
	rootCmd.AddCommand(signupCmd)
}
