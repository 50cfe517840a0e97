package cmd

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var loginEmail string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the operator console",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newAppEnv()
		if err != nil {
			return err
		}

		email := loginEmail
		if email == "" {
			email, err = promptEmail()
			if err != nil {
				return err
			}
		}

		password, err := promptPassword("Password")
		if err != nil {
			return err
		}

		if err := env.session.Login(cmd.Context(), email, password); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		user, _ := env.session.User()
		fmt.Printf("Logged in as %s (%s)\n", user.Email, user.BusinessName)
		return nil
	},
}

func promptEmail() (string, error) {
	prompt := promptui.Prompt{
		Label: "Email",
		Validate: func(input string) error {
			if !strings.Contains(input, "@") {
				return fmt.Errorf("must be an email address")
			}
			return nil
		},
	}
	email, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("email prompt: %w", err)
	}
	return strings.TrimSpace(email), nil
}

func promptPassword(label string) (string, error) {
	prompt := promptui.Prompt{
		Label: label,
		Mask:  '*',
		Validate: func(input string) error {
			if input == "" {
				return fmt.Errorf("must not be empty")
			}
			return nil
		},
	}
	password, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("password prompt: %w", err)
	}
	return password, nil
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "operator email (prompted if omitted)")
	rootCmd.AddCommand(loginCmd)
}
