package repl

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/FloatingDust36/siyensyago/internal/museum"
	"github.com/FloatingDust36/siyensyago/internal/types"
)

// cmdHelp shows help information
func (r *REPL) cmdHelp(args []string) error {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("\n%s\n\n", cyan("Available Commands:"))

	commands := []struct {
		name string
		desc string
	}{
		{"list, ls", "List the session's detected objects"},
		{"show <id>", "Learn the science behind one object"},
		{"batch all | <id> <id> ...", "Walk a queue of objects in order"},
		{"next, n", "Advance to the next object in the batch"},
		{"save", "Save the last viewed object to your museum"},
		{"stats", "Show exploration progress"},
		{"help, ?", "Show this help message"},
		{"exit, quit", "Leave the explore shell"},
	}
	for _, cmd := range commands {
		fmt.Printf("  %-28s %s\n", green(cmd.name), cmd.desc)
	}
	fmt.Println()
	return nil
}

// cmdList lists the session's objects with their explored state
func (r *REPL) cmdList(args []string) error {
	s := r.sessions.GetSession(r.ctx, r.sessionID)
	if s == nil {
		return fmt.Errorf("session expired")
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Println()
	for _, obj := range s.DetectedObjects {
		mark := " "
		if s.IsExplored(obj.ID) {
			mark = green("✓")
		}
		fmt.Printf("  [%s] %-8s %-20s %s (%.0f%%)\n", mark, obj.ID, obj.Name, obj.Category, obj.Confidence)
	}
	fmt.Println()
	return nil
}

// cmdShow analyzes a single object and marks it explored
func (r *REPL) cmdShow(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: show <object-id>")
	}
	if r.step != nil {
		return fmt.Errorf("finish the batch first (or 'exit' and restart)")
	}

	s := r.sessions.GetSession(r.ctx, r.sessionID)
	if s == nil {
		return fmt.Errorf("session expired")
	}
	obj := findObject(s, args[0])
	if obj == nil {
		return fmt.Errorf("no object %q in this session", args[0])
	}

	// A single object is a batch of one
	step, err := r.orch.StartBatch(r.ctx, r.sessionID, []types.DetectedObject{*obj}, s.FullImageURI, r.grade, s.Context)
	if err != nil {
		return err
	}
	r.displayResult(*obj, step.Result)

	terminal, err := r.orch.AdvanceBatch(r.ctx, step)
	if err != nil {
		return err
	}
	if terminal.SessionComplete {
		r.printSessionComplete()
	}
	return nil
}

// cmdBatch starts a batch walk over the chosen objects
func (r *REPL) cmdBatch(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: batch all | batch <id> <id> ...")
	}
	if r.step != nil {
		return fmt.Errorf("a batch is already running; 'next' to continue")
	}

	s := r.sessions.GetSession(r.ctx, r.sessionID)
	if s == nil {
		return fmt.Errorf("session expired")
	}

	var queue []types.DetectedObject
	if len(args) == 1 && strings.EqualFold(args[0], "all") {
		queue = s.UnexploredObjects()
		if len(queue) == 0 {
			fmt.Println("Everything here is already explored.")
			return nil
		}
	} else {
		for _, id := range args {
			obj := findObject(s, id)
			if obj == nil {
				return fmt.Errorf("no object %q in this session", id)
			}
			queue = append(queue, *obj)
		}
	}

	step, err := r.orch.StartBatch(r.ctx, r.sessionID, queue, s.FullImageURI, r.grade, s.Context)
	if err != nil {
		return err
	}
	r.step = step
	r.displayResult(step.Current(), step.Result)
	fmt.Printf("(%d more in the queue; 'next' to continue, 'save' to keep this one)\n\n", step.Remaining())
	return nil
}

// cmdNext advances the running batch walk
func (r *REPL) cmdNext(args []string) error {
	if r.step == nil {
		return fmt.Errorf("no batch running; start one with 'batch'")
	}

	next, err := r.orch.AdvanceBatch(r.ctx, r.step)
	if err != nil {
		// Capability failure: drop back to the selection view, keeping what
		// was already explored
		r.step = nil
		return fmt.Errorf("batch stopped: %w (back to 'list')", err)
	}

	if next.BatchComplete {
		r.step = nil
		green := color.New(color.FgGreen, color.Bold).SprintFunc()
		fmt.Printf("\n%s Batch complete!\n\n", green("✓"))
		if next.SessionComplete {
			r.printSessionComplete()
		}
		return nil
	}

	r.step = next
	r.displayResult(next.Current(), next.Result)
	fmt.Printf("(%d more in the queue)\n\n", next.Remaining())
	return nil
}

// cmdSave saves the last viewed object to the museum
func (r *REPL) cmdSave(args []string) error {
	if r.lastResult == nil || r.lastObject == nil {
		return fmt.Errorf("nothing viewed yet; 'show' or 'batch' first")
	}

	s := r.sessions.GetSession(r.ctx, r.sessionID)
	if s == nil {
		return fmt.Errorf("session expired")
	}

	box := r.lastObject.BoundingBox
	d, err := r.museum.SaveDiscovery(r.ctx, museum.SaveInput{
		Result:       *r.lastResult,
		ImagePath:    s.FullImageURI,
		SessionID:    s.SessionID,
		FullImageURI: s.FullImageURI,
		BoundingBox:  &box,
	})
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s Saved %s to your museum (%s)\n\n", green("✓"), d.ObjectName, d.ID)
	return nil
}

// cmdStats shows exploration progress
func (r *REPL) cmdStats(args []string) error {
	stats := r.sessions.SessionStats(r.ctx, r.sessionID)
	if stats == nil {
		return fmt.Errorf("session expired")
	}

	fmt.Printf("\n  Explored:  %d/%d (%d%%)\n", stats.ExploredCount, stats.TotalObjects, stats.CompletionPercentage)
	fmt.Printf("  Expires in: %s\n\n", stats.TimeRemaining.Round(time.Second))
	return nil
}

// cmdExit leaves the explore shell. Run closes the readline instance when
// the io.EOF unwinds through it.
func (r *REPL) cmdExit(args []string) error {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("\n%s Balik ka ulit!\n", green("✓"))
	return io.EOF
}

// displayResult prints one analysis result and records it as the latest
// viewed content
func (r *REPL) displayResult(obj types.DetectedObject, result *types.AnalysisResult) {
	r.lastObject = &obj
	r.lastResult = result

	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	fmt.Printf("\n%s (%s)\n\n", cyan(result.ObjectName), result.Category)
	fmt.Printf("%s %s\n\n", yellow("Fun fact:"), result.FunFact)
	if result.ScienceInAction != "" {
		fmt.Printf("%s\n%s\n\n", yellow("The science in action:"), result.ScienceInAction)
	}
	if result.WhyItMatters != "" {
		fmt.Printf("%s\n%s\n\n", yellow("Why it matters to you:"), result.WhyItMatters)
	}
	if result.TryThis != "" {
		fmt.Printf("%s %s\n\n", yellow("Try this:"), result.TryThis)
	}
	if len(result.ExploreFurther) > 0 {
		fmt.Printf("%s %s\n\n", yellow("Explore further:"), strings.Join(result.ExploreFurther, ", "))
	}
}

// printSessionComplete celebrates a fully explored session
func (r *REPL) printSessionComplete() {
	green := color.New(color.FgGreen, color.Bold).SprintFunc()
	stats := r.sessions.SessionStats(r.ctx, r.sessionID)
	fmt.Printf("%s Session complete!", green("★"))
	if stats != nil {
		fmt.Printf(" All %d objects explored.", stats.TotalObjects)
	}
	fmt.Println()
	fmt.Println()
}

// findObject looks an object up by id, tolerating a bare index like "1"
// for "obj-1"
func findObject(s *types.DiscoverySession, id string) *types.DetectedObject {
	for i := range s.DetectedObjects {
		if s.DetectedObjects[i].ID == id || s.DetectedObjects[i].ID == "obj-"+id {
			return &s.DetectedObjects[i]
		}
	}
	return nil
}
