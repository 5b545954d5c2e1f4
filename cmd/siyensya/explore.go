package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/FloatingDust36/siyensyago/internal/ai"
	"github.com/FloatingDust36/siyensyago/internal/batch"
	"github.com/FloatingDust36/siyensyago/internal/repl"
)

var exploreCmd = &cobra.Command{
	Use:   "explore [session-id]",
	Short: "Open the interactive explore shell for a discovery session",
	Long: `Open the interactive shell for a discovery session. With no argument
the most recent active session is used.

Inside the shell, 'list' shows the detected objects and 'show <id>' or
'batch all' walks you through the science behind them.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		if err := setupApp(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer teardownApp()

		var sessionID string
		if len(args) > 0 {
			sessionID = args[0]
		} else {
			active := sessions.ListSessions(ctx)
			if len(active) == 0 {
				fmt.Println("No active sessions. Run 'siyensya scan <image>' first.")
				return
			}
			sessionID = active[0].SessionID
		}

		if err := runExplore(ctx, sessionID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

// runExplore wires the analyzer, orchestrator, and shell for one session.
// Shared with 'scan --explore'.
func runExplore(ctx context.Context, sessionID string) error {
	client, err := ai.NewClient(&ai.Config{Model: cfg.Model})
	if err != nil {
		return err
	}

	orch, err := batch.NewOrchestrator(batch.Config{
		Sessions: sessions,
		Analyzer: client,
		Recorder: recorder,
	})
	if err != nil {
		return err
	}

	shell, err := repl.New(&repl.Config{
		Sessions:  sessions,
		Orch:      orch,
		Museum:    discoveries,
		SessionID: sessionID,
		Grade:     cfg.GradeLevel,
	})
	if err != nil {
		return err
	}
	return shell.Run(ctx)
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}
