package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var playlistsCmd = &cobra.Command{
	Use:   "playlists",
	Short: "List the user's playlists",
	RunE:  runPlaylists,
}

func init() {
	rootCmd.AddCommand(playlistsCmd)
}

func runPlaylists(cmd *cobra.Command, args []string) error {
	playlists, err := client.Playlists(context.Background())
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(playlists)
	}

	if len(playlists) == 0 {
		fmt.Println("No playlists")
		return nil
	}

	for _, p := range playlists {
		fmt.Printf("%-40s %4d tracks  %s\n", p.Title, p.VideoCount, p.ID)
	}
	return nil
}
