// Package repl is the interactive explore shell: after a scan, the user
// walks a session's detected objects here, one analysis at a time, and
// saves the keepers to the museum.
package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/FloatingDust36/siyensyago/internal/batch"
	"github.com/FloatingDust36/siyensyago/internal/museum"
	"github.com/FloatingDust36/siyensyago/internal/session"
	"github.com/FloatingDust36/siyensyago/internal/types"
)

// REPL represents the interactive explore shell for one session
type REPL struct {
	sessions  *session.Manager
	orch      *batch.Orchestrator
	museum    *museum.Reconciler
	sessionID string
	grade     types.GradeLevel

	rl       *readline.Instance
	ctx      context.Context
	commands map[string]CommandHandler

	// step is the in-progress batch walk, nil outside batch mode
	step *batch.Step

	// lastResult/lastObject track the most recently displayed content so
	// `save` knows what to keep
	lastResult *types.AnalysisResult
	lastObject *types.DetectedObject
}

// CommandHandler handles a specific command
type CommandHandler func(args []string) error

// Config holds REPL configuration
type Config struct {
	Sessions  *session.Manager
	Orch      *batch.Orchestrator
	Museum    *museum.Reconciler
	SessionID string
	Grade     types.GradeLevel
}

// New creates an explore shell bound to one session
func New(cfg *Config) (*REPL, error) {
	if cfg.Sessions == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	if cfg.Orch == nil {
		return nil, fmt.Errorf("batch orchestrator is required")
	}
	if cfg.Museum == nil {
		return nil, fmt.Errorf("museum is required")
	}
	if cfg.SessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	r := &REPL{
		sessions:  cfg.Sessions,
		orch:      cfg.Orch,
		museum:    cfg.Museum,
		sessionID: cfg.SessionID,
		grade:     cfg.Grade,
		commands:  make(map[string]CommandHandler),
	}
	r.registerCommands()
	return r, nil
}

// Run starts the explore loop
func (r *REPL) Run(ctx context.Context) error {
	r.ctx = ctx

	if s := r.sessions.GetSession(ctx, r.sessionID); s == nil {
		return fmt.Errorf("session %s not found or expired", r.sessionID)
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("explore> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	r.printWelcome()

	for {
		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				fmt.Println("\nBalik ka ulit!")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := r.processInput(line); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Printf("%s %v\n", red("Error:"), err)
		}
	}
}

// processInput dispatches a single line of input
func (r *REPL) processInput(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	command := parts[0]
	args := parts[1:]

	if handler, ok := r.commands[command]; ok {
		return handler(args)
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Printf("%s Unknown command %q. Type 'help' for available commands.\n", yellow("Note:"), command)
	return nil
}

// registerCommands registers all built-in commands
func (r *REPL) registerCommands() {
	r.commands["help"] = r.cmdHelp
	r.commands["?"] = r.cmdHelp
	r.commands["list"] = r.cmdList
	r.commands["ls"] = r.cmdList
	r.commands["show"] = r.cmdShow
	r.commands["batch"] = r.cmdBatch
	r.commands["next"] = r.cmdNext
	r.commands["n"] = r.cmdNext
	r.commands["save"] = r.cmdSave
	r.commands["stats"] = r.cmdStats
	r.commands["exit"] = r.cmdExit
	r.commands["quit"] = r.cmdExit
}

// printWelcome prints the welcome message
func (r *REPL) printWelcome() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	s := r.sessions.GetSession(r.ctx, r.sessionID)
	fmt.Printf("\n%s\n", cyan("SiyensyaGo explore"))
	fmt.Printf("%d objects detected in this photo.\n", len(s.DetectedObjects))
	fmt.Println()
	fmt.Println("Type 'list' to see them, 'show <id>' to learn one,")
	fmt.Println("'batch all' to walk everything, 'help' for more.")
	fmt.Println()
}
