package cmd

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/snapmatch/client-engine/internal/core/service"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Verify the stored session against the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		eng, err := newEngine(ctx)
		if err != nil {
			return err
		}

		id, ok := eng.refresher.Refresh(ctx)
		if !ok {
			fmt.Println("Not signed in")
			fmt.Printf("Go to: %s\n", service.LoginPath)
			return nil
		}

		fmt.Printf("User:  %s <%s>\n", id.DisplayName, id.Email)
		fmt.Printf("Role:  %s\n", id.Role)
		fmt.Printf("Home:  %s\n", service.RoleHome(id.Role))
		if exp, ok := tokenExpiry(id.Token); ok {
			fmt.Printf("Token: expires %s\n", exp.Format(time.RFC3339))
		}
		return nil
	},
}

// tokenExpiry reads the exp claim without verifying the signature. Display
// hint only — the server stays authoritative on token validity.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}
