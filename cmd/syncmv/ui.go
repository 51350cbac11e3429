package main

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"github.com/walteh/syncmv/pkg/transfer"
)

// 📢 renderer turns pipeline events into console output. Purely cosmetic:
// the pipeline never depends on it.
type renderer struct {
	processStart time.Time
	spinner      *pterm.SpinnerPrinter
}

// newRenderer creates a console renderer
func newRenderer(processStart time.Time) *renderer {
	return &renderer{processStart: processStart}
}

// consume renders events until the channel closes
func (r *renderer) consume(events <-chan transfer.Event) {
	for ev := range events {
		switch ev.Type {
		case transfer.EventFileStarted:
			pterm.Info.WithPrefix(pterm.Prefix{Text: "📄"}).
				Printfln("[%d/%d] %s", ev.Index, ev.Total, ev.Source)
		case transfer.EventFileCopied:
			r.spinner, _ = pterm.DefaultSpinner.Start("waiting for sync confirmation")
		case transfer.EventPollTick:
			if r.spinner != nil && ev.Poll != nil {
				r.spinner.UpdateText(fmt.Sprintf("status %q stable %d/%d (run time %s)",
					ev.Poll.RawStatus, ev.Poll.Stable, ev.Poll.Required,
					time.Since(r.processStart).Round(time.Second)))
			}
		case transfer.EventFileOutcome:
			r.stopSpinner()
			r.outcome(ev)
		}
	}
	r.stopSpinner()
}

// outcome renders a file's terminal state
func (r *renderer) outcome(ev transfer.Event) {
	switch ev.Outcome {
	case transfer.OutcomeDeleted:
		pterm.Success.WithPrefix(pterm.Prefix{Text: "🗑️"}).
			Printfln("moved %s", ev.Source)
	case transfer.OutcomePreserved:
		pterm.Warning.WithPrefix(pterm.Prefix{Text: "⏱️"}).
			Printfln("timed out, source preserved: %s", ev.Source)
	case transfer.OutcomeFailed:
		pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"}).
			Printfln("failed: %s (%v)", ev.Source, ev.Err)
	}
}

// summary prints the run totals
func (r *renderer) summary(sum transfer.Summary) {
	elapsed := time.Since(r.processStart).Round(time.Second)
	header := color.New(color.Bold, color.FgCyan).Sprint("syncmv")
	fmt.Printf("\n%s %s\n", header,
		color.New(color.Faint).Sprintf("• attempted %d, moved %d, preserved %d, failed %d, skipped %d in %s",
			sum.Attempted, sum.Deleted, sum.Preserved, sum.Failed, sum.Skipped, elapsed))
	if sum.Cancelled {
		pterm.Warning.Println("run stopped early by interrupt")
	}
}

// stopSpinner stops the confirmation spinner if one is running
func (r *renderer) stopSpinner() {
	if r.spinner != nil {
		_ = r.spinner.Stop()
		r.spinner = nil
	}
}
