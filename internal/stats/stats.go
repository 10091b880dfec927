// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/verte-zerg/notedrill/internal/drill"
	"github.com/verte-zerg/notedrill/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Accuracy returns correct / (correct + incorrect), 0 when nothing was answered.
func Accuracy(correct, incorrect int) float64 {
	den := correct + incorrect
	if den <= 0 {
		return 0
	}
	return float64(correct) / float64(den)
}

// RunMetrics computes accuracy and answers per minute for a run.
func RunMetrics(run model.RunAggregate) (accuracy, perMinute float64) {
	accuracy = Accuracy(run.Correct, run.Incorrect)
	minutes := run.Duration.Minutes()
	if minutes > 0 {
		perMinute = float64(run.Correct+run.Incorrect) / minutes
	}
	return accuracy, perMinute
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	if window <= 1 || len(values) == 0 {
		out := make([]float64, len(values))
		copy(out, values)
		return out
	}
	out := make([]float64, len(values))
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		if i >= window {
			sum -= values[i-window]
		}
		den := float64(i + 1)
		if i >= window {
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderWindow prints the rolling-window snapshot shown every few answers.
func RenderWindow(w io.Writer, s drill.WindowStats) error {
	lines := []string{
		fmt.Sprintf("=== Last %d Notes ===", s.Total),
		fmt.Sprintf("Correct: %d", s.Correct),
		fmt.Sprintf("Wrong: %d", s.Wrong()),
		fmt.Sprintf("Accuracy: %.1f%%", s.Accuracy()*100),
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSummary prints a summary block for runs.
func RenderSummary(w io.Writer, runs []model.RunAggregate) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs found.")
		return err
	}
	s := Summarize(runs)
	lines := []string{
		"Summary",
		fmt.Sprintf("Runs: %d", s.Runs),
		fmt.Sprintf("Attempts: %d", s.Attempts),
		fmt.Sprintf("Accuracy: %.2f%%", s.Accuracy*100),
		fmt.Sprintf("Best run: %.2f%%", s.BestAccuracy*100),
		fmt.Sprintf("Avg pace: %.1f answers/min", s.AvgPerMinute),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Summary aggregates headline numbers over runs.
type Summary struct {
	Runs         int
	Attempts     int
	Accuracy     float64
	BestAccuracy float64
	AvgPerMinute float64
}

// Summarize folds runs into a Summary. Accuracy is pooled over attempts.
func Summarize(runs []model.RunAggregate) Summary {
	var s Summary
	var correct, incorrect int
	var paceSum float64
	for _, r := range runs {
		acc, pace := RunMetrics(r)
		correct += r.Correct
		incorrect += r.Incorrect
		paceSum += pace
		if acc > s.BestAccuracy {
			s.BestAccuracy = acc
		}
	}
	s.Runs = len(runs)
	s.Attempts = correct + incorrect
	s.Accuracy = Accuracy(correct, incorrect)
	if len(runs) > 0 {
		s.AvgPerMinute = paceSum / float64(len(runs))
	}
	return s
}

// AccuracyCurve returns per-run accuracy in percent, smoothed over window runs.
func AccuracyCurve(runs []model.RunAggregate, window int) []float64 {
	accs := make([]float64, len(runs))
	for i, r := range runs {
		accs[i] = Accuracy(r.Correct, r.Incorrect) * 100
	}
	return MovingAverage(accs, window)
}

// RenderCurve prints the smoothed accuracy sparkline.
func RenderCurve(w io.Writer, runs []model.RunAggregate, window int) error {
	if len(runs) == 0 {
		return nil
	}
	curve := AccuracyCurve(runs, window)
	if _, err := fmt.Fprintf(w, "Accuracy (moving avg %d): %.1f%% → %.1f%%\n", window, curve[0], curve[len(curve)-1]); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "[%s]\n", Sparkline(curve))
	return err
}

// NoteRows formats aggregates for table display, weakest first.
func NoteRows(aggs []model.NoteAggregate, confusions map[string]map[string]int) [][]string {
	sorted := HardestNotes(aggs, 0)
	rows := make([][]string, 0, len(sorted))
	for _, agg := range sorted {
		rows = append(rows, []string{
			agg.Note,
			fmt.Sprintf("%.2f%%", Accuracy(agg.Correct, agg.Incorrect)*100),
			fmt.Sprintf("%d", agg.Correct),
			fmt.Sprintf("%d", agg.Incorrect),
			TopConfusion(confusions[agg.Note]),
		})
	}
	return rows
}

// NoteHeaders are the column titles matching NoteRows.
var NoteHeaders = []string{"Note", "Accuracy", "Correct", "Wrong", "Confused with"}

// RenderNoteTable prints per-note aggregates.
func RenderNoteTable(w io.Writer, aggs []model.NoteAggregate, confusions map[string]map[string]int) error {
	if len(aggs) == 0 {
		_, err := fmt.Fprintln(w, "No note stats found.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Per-Note"); err != nil {
		return err
	}
	rightAlign := map[int]bool{1: true, 2: true, 3: true}
	for _, line := range formatTable(NoteHeaders, NoteRows(aggs, confusions), rightAlign) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
