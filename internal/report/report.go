// Package report renders the end-of-run summary on the terminal.
package report

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"swarmsearch.ai/internal/sim/swarm"
)

func init() {
	// Force color output even when not connected to TTY.
	// Users can disable with NO_COLOR environment variable.
	if os.Getenv("NO_COLOR") == "" {
		color.NoColor = false
	}
}

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
	cyan   = color.New(color.FgCyan)
)

// PrintRun writes the final run summary from the last snapshot.
func PrintRun(runID string, snap swarm.Snapshot, cfg swarm.Config) {
	cyan.Printf("run %s finished after %d of %d ticks (%dx%d grid, seed %d)\n",
		runID, snap.Tick+1, cfg.StepBudget, cfg.GridW, cfg.GridH, cfg.Seed)

	for _, t := range snap.Targets {
		if tick, ok := snap.Located[t.ID]; ok {
			green.Printf("✓ target %d located at tick %d (true position %d,%d)\n", t.ID, tick, t.Pos.X, t.Pos.Y)
		} else {
			yellow.Printf("⚠ target %d never located within the step budget\n", t.ID)
		}
	}

	if snap.RatioValid {
		fmt.Printf("competitive ratio: %.2f\n", snap.Ratio)
	} else {
		yellow.Println("competitive ratio: undefined (nothing located)")
	}

	for _, a := range snap.Agents {
		tag := ""
		if a.Byzantine {
			tag = " [byzantine]"
		}
		fmt.Printf("agent %d%s: pos (%d,%d) traveled %d beliefs %d\n",
			a.ID, tag, a.Pos.X, a.Pos.Y, a.Traveled, len(a.Beliefs))
	}
}

// Fatal prints an error in red to stderr and exits.
func Fatal(format string, a ...any) {
	red.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
