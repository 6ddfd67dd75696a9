package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/D4ryB3rry/YTM-Remote-Server/internal/domain/player"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Show the current player state",
	RunE:  runState,
}

func init() {
	rootCmd.AddCommand(stateCmd)
}

func runState(cmd *cobra.Command, args []string) error {
	state, err := client.PlayerState(context.Background())
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(state)
	}

	fmt.Printf("Track:    %s - %s\n", state.Video.Author, state.Video.Title)
	fmt.Printf("State:    %s\n", trackStateName(state.Player.TrackState))
	fmt.Printf("Progress: %s / %s\n",
		formatSeconds(state.Player.VideoProgress),
		formatSeconds(float64(state.Video.DurationSeconds)))
	fmt.Printf("Volume:   %d%%", state.Player.Volume)
	if state.Player.Muted {
		fmt.Print(" (muted)")
	}
	fmt.Println()

	if q := state.Player.Queue; q != nil {
		fmt.Printf("Queue:    %d items", len(q.Items))
		if q.SelectedItemIndex != nil {
			fmt.Printf(", position %d", *q.SelectedItemIndex+1)
		}
		fmt.Println()
	}
	return nil
}

func trackStateName(s player.TrackState) string {
	switch s {
	case player.TrackStatePlaying:
		return "playing"
	case player.TrackStatePaused:
		return "paused"
	case player.TrackStateBuffering:
		return "buffering"
	default:
		return fmt.Sprintf("unknown (%d)", int(s))
	}
}

func formatSeconds(s float64) string {
	d := time.Duration(s) * time.Second
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
