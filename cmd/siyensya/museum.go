package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/FloatingDust36/siyensyago/internal/types"
)

var museumCmd = &cobra.Command{
	Use:   "museum",
	Short: "Browse and manage your personal museum of saved discoveries",
	Long: `The museum is your permanent collection. Sessions expire after a day,
but a saved discovery stays until you remove it. When a remote account is
configured, saves are mirrored to it in the background; 'museum sync'
retries anything that did not make it across.`,
}

var museumListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved discoveries, newest first",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := setupApp(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer teardownApp()

		all, err := discoveries.Discoveries(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(all) == 0 {
			fmt.Println("Your museum is empty. Save a discovery from the explore shell.")
			return
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("%d discover(ies):\n\n", len(all))
		for _, d := range all {
			syncMark := ""
			if d.SyncState == types.SyncStatePending {
				syncMark = yellow(" [pending sync]")
			}
			fmt.Printf("  %s  %-20s %s  %s%s\n",
				cyan(d.ID[:8]), d.ObjectName, d.Category, d.DateSaved, syncMark)
		}
	},
}

var museumRmCmd = &cobra.Command{
	Use:   "rm <discovery-id>",
	Short: "Remove a discovery from the museum",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := setupApp(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer teardownApp()

		id, err := resolveDiscoveryID(ctx, args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := discoveries.RemoveDiscovery(ctx, id); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("%s Discovery removed.\n", color.GreenString("✓"))
	},
}

var museumSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Retry mirroring unsynced discoveries to the remote account",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := setupApp(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer teardownApp()

		synced, err := discoveries.SyncPending(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: sync failed: %v\n", err)
			os.Exit(1)
		}
		if synced == 0 {
			fmt.Println("Nothing to sync.")
			return
		}
		fmt.Printf("%s Synced %d discover(ies).\n", color.GreenString("✓"), synced)
	},
}

// resolveDiscoveryID accepts a full uuid or an unambiguous prefix, the way
// 'museum list' displays them.
func resolveDiscoveryID(ctx context.Context, ref string) (string, error) {
	all, err := discoveries.Discoveries(ctx)
	if err != nil {
		return "", err
	}
	var match string
	for _, d := range all {
		if d.ID == ref {
			return d.ID, nil
		}
		if len(ref) >= 4 && len(d.ID) >= len(ref) && d.ID[:len(ref)] == ref {
			if match != "" {
				return "", fmt.Errorf("ambiguous discovery id %q", ref)
			}
			match = d.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no discovery matching %q", ref)
	}
	return match, nil
}

func init() {
	museumCmd.AddCommand(museumListCmd)
	museumCmd.AddCommand(museumRmCmd)
	museumCmd.AddCommand(museumSyncCmd)
	rootCmd.AddCommand(museumCmd)
}
