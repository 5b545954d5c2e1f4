package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/FloatingDust36/siyensyago/internal/ai"
	"github.com/FloatingDust36/siyensyago/internal/remote"
	"github.com/FloatingDust36/siyensyago/internal/types"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local state, AI reachability, and remote account status",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := setupApp(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer teardownApp()

		green := color.New(color.FgGreen).SprintFunc()
		red := color.New(color.FgRed).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		fmt.Printf("Config: %s\n\n", cfg.String())

		active := sessions.ListSessions(ctx)
		fmt.Printf("Sessions: %d active\n", len(active))

		all, err := discoveries.Discoveries(ctx)
		if err != nil {
			fmt.Printf("Museum:   %s (%v)\n", red("unreadable"), err)
		} else {
			pending := 0
			for _, d := range all {
				if d.SyncState != types.SyncStateSynced {
					pending++
				}
			}
			if pending > 0 {
				fmt.Printf("Museum:   %d saved, %s\n", len(all),
					yellow(fmt.Sprintf("%d pending sync", pending)))
			} else {
				fmt.Printf("Museum:   %d saved\n", len(all))
			}
		}

		if client, err := ai.NewClient(&ai.Config{Model: cfg.Model}); err != nil {
			fmt.Printf("AI:       %s (%v)\n", red("unavailable"), err)
		} else if err := client.HealthCheck(ctx); err != nil {
			fmt.Printf("AI:       %s (%v)\n", red("unhealthy"), err)
		} else {
			fmt.Printf("AI:       %s (%s)\n", green("ok"), client.Model())
		}

		profile, err := remoteStore.Profile(ctx)
		switch {
		case errors.Is(err, remote.ErrNotConfigured):
			fmt.Printf("Remote:   not configured\n")
		case err != nil:
			fmt.Printf("Remote:   %s (%v)\n", red("unreachable"), err)
		case profile == nil:
			fmt.Printf("Remote:   connected, no profile yet\n")
		default:
			fmt.Printf("Remote:   %s, %d XP, member since %s\n",
				green(profile.Username), profile.TotalXP,
				profile.CreatedAt.Format("2006-01-02"))
			if top, err := remoteStore.Leaderboard(ctx, 5); err == nil && len(top) > 0 {
				fmt.Println("\nLeaderboard:")
				for _, e := range top {
					fmt.Printf("  %d. %-16s %d XP\n", e.Rank, e.Username, e.TotalXP)
				}
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
