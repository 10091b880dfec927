package main

import (
	"fmt"
	"io"

	"github.com/verte-zerg/notedrill/internal/midiio"
	"github.com/verte-zerg/notedrill/internal/stats"
)

// writeReport prints the archive report for non-interactive use.
func writeReport(w io.Writer, report stats.Report, window int) error {
	if err := stats.RenderSummary(w, report.Runs); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	if len(report.Runs) == 0 {
		return nil
	}
	if err := stats.RenderCurve(w, report.Runs, window); err != nil {
		return fmt.Errorf("failed to write curve: %w", err)
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := stats.RenderNoteTable(w, report.NotesAll, report.Confusions); err != nil {
		return fmt.Errorf("failed to write note table: %w", err)
	}
	return nil
}

func writeDevices(w io.Writer, ins, outs []midiio.Port) error {
	sections := []struct {
		title string
		ports []midiio.Port
	}{
		{"Input ports:", ins},
		{"Output ports:", outs},
	}
	for i, sec := range sections {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
		if _, err := fmt.Fprintln(w, sec.title); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		if len(sec.ports) == 0 {
			if _, err := fmt.Fprintln(w, "  (none)"); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
			continue
		}
		for _, p := range sec.ports {
			if _, err := fmt.Fprintf(w, "  %s\n", p.String()); err != nil {
				return fmt.Errorf("failed to write output: %w", err)
			}
		}
	}
	return nil
}
