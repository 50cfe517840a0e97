package config

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard and returns the
// resulting Config. It also saves the config to path.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to aidesk! Let's connect your operator console.")
	fmt.Println()

	cfg := DefaultConfig()

	urlPrompt := promptui.Prompt{
		Label:   "Backend URL",
		Default: cfg.BackendURL,
		Validate: func(input string) error {
			u, err := url.Parse(input)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
				return fmt.Errorf("must be a valid http(s) URL")
			}
			return nil
		},
	}
	backendURL, err := urlPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("backend URL prompt: %w", err)
	}
	cfg.BackendURL = backendURL

	timeoutPrompt := promptui.Prompt{
		Label:   "Request timeout (seconds)",
		Default: strconv.Itoa(cfg.TimeoutSeconds),
		Validate: func(input string) error {
			n, err := strconv.Atoi(input)
			if err != nil || n <= 0 {
				return fmt.Errorf("must be a positive integer")
			}
			return nil
		},
	}
	timeoutStr, err := timeoutPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("timeout prompt: %w", err)
	}
	cfg.TimeoutSeconds, _ = strconv.Atoi(timeoutStr)

	if err := cfg.Save(path); err != nil {
		return nil, err
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	fmt.Println("Next step: aidesk login")
	return cfg, nil
}
