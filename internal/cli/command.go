package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var commandCmd = &cobra.Command{
	Use:   "command <name> [json-data]",
	Short: "Send a playback command to the desktop player",
	Long: `Sends a playback command, optionally with a JSON argument.

Examples:
  ytmdebug command playPause
  ytmdebug command setVolume 50
  ytmdebug command changeVideo '{"videoId":"dQw4w9WgXcQ"}'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCommand,
}

func init() {
	rootCmd.AddCommand(commandCmd)
}

func runCommand(cmd *cobra.Command, args []string) error {
	var data any
	if len(args) == 2 {
		if err := json.Unmarshal([]byte(args[1]), &data); err != nil {
			// Not valid JSON, send as a bare string
			data = args[1]
		}
	}

	if err := client.SendCommand(context.Background(), args[0], data); err != nil {
		return err
	}

	if !jsonOut {
		fmt.Println("OK")
	}
	return nil
}
