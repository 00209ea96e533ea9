package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

const keyringService = "gesturekit"
const keyringUser = "server"

// storedToken returns the server token from the OS keyring, or "" when none is stored
func storedToken() (string, error) {
	token, err := keyring.Get(keyringService, keyringUser)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token from keyring: %w", err)
	}
	return token, nil
}

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Commands for managing the bearer token that protects the gesturekit server.`,
}

var authTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the server token",
}

var authTokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store the server token in the OS keyring",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		token := strings.TrimSpace(args[0])
		if token == "" {
			return fmt.Errorf("token must not be empty")
		}
		if err := keyring.Set(keyringService, keyringUser, token); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}

		fmt.Println("Token stored.")
		return nil
	},
}

var authTokenShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display the stored server token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := storedToken()
		if err != nil {
			return err
		}
		if token == "" {
			return fmt.Errorf("no token found for gesturekit")
		}

		fmt.Println(token)
		return nil
	},
}

var authTokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the stored server token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := keyring.Delete(keyringService, keyringUser); err != nil {
			fmt.Println("No token was stored")
			return nil
		}

		fmt.Println("Token removed.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authTokenCmd)
	authTokenCmd.AddCommand(authTokenSetCmd, authTokenShowCmd, authTokenClearCmd)
}
