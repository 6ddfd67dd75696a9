package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authenticate with the desktop player",
	Long:  `Runs the authorization flow. Accept the request in the desktop player when prompted; the token is written to the token file.`,
	RunE:  runAuth,
}

var authClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the stored auth token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authMgr.Delete(); err != nil {
			return err
		}
		fmt.Println("Auth token deleted")
		return nil
	},
}

func init() {
	authCmd.AddCommand(authClearCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuth(cmd *cobra.Command, args []string) error {
	if err := client.Authenticate(context.Background()); err != nil {
		return err
	}
	fmt.Printf("Token saved to %s\n", tokenFile)
	return nil
}
