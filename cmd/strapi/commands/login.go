package commands

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// ErrIdentifierRequired is returned when no identifier is supplied.
var ErrIdentifierRequired = errors.New("identifier is required")

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		identifier string
		password   string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to the content API",
		Long:  "Authenticate with the users-permissions local provider and persist the returned token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if identifier == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Email or username: ")
				identifier, _ = reader.ReadString('\n')
				identifier = strings.TrimSpace(identifier)
			}

			if identifier == "" {
				return ErrIdentifierRequired
			}

			if password == "" {
				fmt.Print("Password: ")

				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}

				password = string(bytePassword)

				fmt.Println()
			}

			client, err := CreateClient()
			if err != nil {
				return err
			}

			auth, err := client.Login(context.Background(), identifier, password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			config := loadConfig()
			config.Token = auth.JWT

			err = saveConfigStruct(config)
			if err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}

			if username, ok := auth.User["username"].(string); ok {
				cmd.Printf("Logged in as %s\n", username)
			} else {
				cmd.Println("Logged in")
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&identifier, "identifier", "u", "", "email or username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")

	return cmd
}
