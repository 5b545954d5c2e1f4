package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage discovery sessions",
	Long:  `List, inspect, and clean up discovery sessions. Sessions expire on their own after the configured TTL; these commands let you look around and tidy up early.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active discovery sessions",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := setupApp(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer teardownApp()

		active := sessions.ListSessions(ctx)
		if len(active) == 0 {
			fmt.Println("No active sessions.")
			return
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Printf("%d active session(s):\n\n", len(active))
		for _, s := range active {
			stats := s.Stats(time.Now())
			fmt.Printf("  %s  %d/%d explored  expires in %s\n",
				cyan(s.SessionID), stats.ExploredCount, stats.TotalObjects,
				stats.TimeRemaining.Round(time.Minute))
			fmt.Printf("           %s\n", s.FullImageURI)
		}
	},
}

var sessionsStatsCmd = &cobra.Command{
	Use:   "stats <session-id>",
	Short: "Show exploration progress for a session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := setupApp(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer teardownApp()

		stats := sessions.SessionStats(ctx, args[0])
		if stats == nil {
			fmt.Fprintf(os.Stderr, "Error: session %s not found or expired\n", args[0])
			os.Exit(1)
		}

		fmt.Printf("Session %s\n", args[0])
		fmt.Printf("  Objects:    %d\n", stats.TotalObjects)
		fmt.Printf("  Explored:   %d\n", stats.ExploredCount)
		fmt.Printf("  Remaining:  %d\n", stats.UnexploredCount)
		fmt.Printf("  Progress:   %d%%\n", stats.CompletionPercentage)
		fmt.Printf("  Expires in: %s\n", stats.TimeRemaining.Round(time.Minute))
	},
}

var sessionsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired sessions from local storage",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := setupApp(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer teardownApp()

		removed, err := sessions.CleanupExpiredSessions(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cleanup failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Removed %d expired session(s).\n", color.GreenString("✓"), removed)
	},
}

var sessionsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete ALL sessions, active ones included",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := setupApp(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer teardownApp()

		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			fmt.Print("Delete all sessions? This cannot be undone. [y/N] ")
			var answer string
			fmt.Scanln(&answer)
			if answer != "y" && answer != "Y" {
				fmt.Println("Aborted.")
				return
			}
		}

		if err := sessions.ClearAllSessions(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s All sessions deleted.\n", color.GreenString("✓"))
	},
}

var sessionsRmCmd = &cobra.Command{
	Use:   "rm <session-id>",
	Short: "Delete one session",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := setupApp(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer teardownApp()

		if err := sessions.DeleteSession(ctx, args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Session %s deleted.\n", color.GreenString("✓"), args[0])
	},
}

func init() {
	sessionsClearCmd.Flags().Bool("yes", false, "skip the confirmation prompt")
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsStatsCmd)
	sessionsCmd.AddCommand(sessionsCleanupCmd)
	sessionsCmd.AddCommand(sessionsClearCmd)
	sessionsCmd.AddCommand(sessionsRmCmd)
	rootCmd.AddCommand(sessionsCmd)
}
