package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"

	"github.com/snapmatch/client-engine/internal/core/service"
)

var loginPassword string

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Authenticate and store the session locally",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, err := newEngine(ctx)
		if err != nil {
			return err
		}

		email := args[0]
		if err := validator.New().Var(email, "required,email"); err != nil {
			return fmt.Errorf("%q is not a valid email address", email)
		}

		password := loginPassword
		if password == "" {
			fmt.Fprint(os.Stderr, "Password: ")
			line, err := bufio.NewReader(os.Stdin).ReadString('\n')
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimSpace(line)
		}
		if password == "" {
			return fmt.Errorf("password must not be empty")
		}

		id, err := eng.client.Login(ctx, email, password)
		if err != nil {
			return fmt.Errorf("login: %w", err)
		}
		eng.sessions.Save(ctx, id)

		fmt.Printf("Signed in as %s (%s)\n", id.DisplayName, id.Role)
		fmt.Printf("Home: %s\n", service.RoleHome(id.Role))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when omitted)")
	rootCmd.AddCommand(loginCmd)
}
