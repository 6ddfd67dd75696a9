// Package cli implements the debug CLI for poking the desktop player API
// directly, using the same stored auth token as the server.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/D4ryB3rry/YTM-Remote-Server/internal/domain/auth"
	"github.com/D4ryB3rry/YTM-Remote-Server/internal/infra/ytm"
)

var (
	ytmHost   string
	ytmPort   int
	tokenFile string
	jsonOut   bool

	authMgr *auth.Manager
	client  *ytm.Client
)

var rootCmd = &cobra.Command{
	Use:   "ytmdebug",
	Short: "Inspect and control the desktop music player",
	Long:  `ytmdebug talks to the desktop player's local remote-control API using the server's stored auth token.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initClient()
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&ytmHost, "host", "localhost", "desktop player host")
	rootCmd.PersistentFlags().IntVar(&ytmPort, "port", 9863, "desktop player API port")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", auth.DefaultTokenFile, "auth token file")
	rootCmd.PersistentFlags().BoolVarP(&jsonOut, "json", "j", false, "output as JSON")
}

func initClient() error {
	authMgr = auth.NewManager(tokenFile)
	if _, err := authMgr.Load(); err != nil {
		return fmt.Errorf("failed to load auth token: %w", err)
	}

	client = ytm.NewClient(authMgr,
		ytm.WithBaseURL(fmt.Sprintf("http://%s:%d", ytmHost, ytmPort)),
	)
	return nil
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
