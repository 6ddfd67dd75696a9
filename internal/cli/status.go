package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show desktop player and auth status",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	result := struct {
		Reachable     bool   `json:"reachable"`
		AppName       string `json:"appName,omitempty"`
		AppVersion    string `json:"appVersion,omitempty"`
		Authenticated bool   `json:"authenticated"`
	}{
		Authenticated: authMgr.IsAuthenticated(),
	}

	info, err := client.AppInfo(ctx)
	if err == nil {
		result.Reachable = true
		result.AppName = info.Name
		result.AppVersion = info.Version
	}

	if jsonOut {
		return printJSON(result)
	}

	if !result.Reachable {
		fmt.Println("Desktop player: unreachable")
	} else {
		fmt.Printf("Desktop player: %s v%s\n", result.AppName, result.AppVersion)
	}
	if result.Authenticated {
		fmt.Println("Auth token:     present")
	} else {
		fmt.Println("Auth token:     missing")
	}
	return nil
}
