package statsui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/notedrill/internal/model"
	"github.com/verte-zerg/notedrill/internal/stats"
)

func fixedLoader(report stats.Report, calls *[]model.StatsConfig) Loader {
	return func(_ context.Context, cfg model.StatsConfig) (stats.Report, error) {
		if calls != nil {
			*calls = append(*calls, cfg)
		}
		return report, nil
	}
}

func sampleReport() stats.Report {
	ended := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	return stats.Report{
		Runs: []model.RunAggregate{
			{ID: 1, RunID: "a", EndedAt: ended, Correct: 8, Incorrect: 2, Duration: time.Minute},
			{ID: 2, RunID: "b", EndedAt: ended.Add(time.Hour), Correct: 9, Incorrect: 1, Duration: time.Minute},
		},
		NotesAll: []model.NoteAggregate{
			{Note: "C4", MIDI: 60, Correct: 9, Incorrect: 0},
			{Note: "F4", MIDI: 65, Correct: 8, Incorrect: 3},
		},
		NotesWindow: []model.NoteAggregate{
			{Note: "F4", MIDI: 65, Correct: 4, Incorrect: 2},
		},
		Confusions: map[string]map[string]int{"F4": {"E4": 3}},
	}
}

func sized(m *Model) *Model {
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return next.(*Model)
}

func TestOverviewShowsSummary(t *testing.T) {
	m := sized(NewModel(fixedLoader(sampleReport(), nil), model.StatsConfig{CurveWindow: 5}))
	view := m.View()
	for _, want := range []string{"Runs", "Attempts", "85.0%", "Hardest recently: F4"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q, got:\n%s", want, view)
		}
	}
}

func TestNotesTabListsWeakestFirst(t *testing.T) {
	m := sized(NewModel(fixedLoader(sampleReport(), nil), model.StatsConfig{CurveWindow: 5}))
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(*Model)
	if m.activeTab != tabNotes {
		t.Fatalf("expected notes tab, got %d", m.activeTab)
	}
	rows := m.noteTable.Rows()
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "F4" {
		t.Fatalf("expected weakest note first, got %q", rows[0][0])
	}
	if rows[0][4] != "E4 ×3" {
		t.Fatalf("unexpected confusion cell %q", rows[0][4])
	}
}

func TestCurveWindowKeysReload(t *testing.T) {
	var calls []model.StatsConfig
	m := sized(NewModel(fixedLoader(sampleReport(), &calls), model.StatsConfig{CurveWindow: 5}))
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("=")})
	m = next.(*Model)
	if m.cfg.CurveWindow != 10 {
		t.Fatalf("expected window 10, got %d", m.cfg.CurveWindow)
	}
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("-")})
	m = next.(*Model)
	if m.cfg.CurveWindow != 5 {
		t.Fatalf("expected window 5, got %d", m.cfg.CurveWindow)
	}
	if len(calls) != 3 {
		t.Fatalf("expected 3 loads, got %d", len(calls))
	}
}

func TestFilterAppliesSettings(t *testing.T) {
	var calls []model.StatsConfig
	m := sized(NewModel(fixedLoader(sampleReport(), &calls), model.StatsConfig{CurveWindow: 5}))
	m.startFilter()
	m.filterInputs[0].SetValue("2026-02-01")
	m.filterInputs[1].SetValue("3")
	m.filterInputs[2].SetValue("7")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(*Model)
	if m.filterMode {
		t.Fatalf("expected filter mode to close")
	}
	last := calls[len(calls)-1]
	if last.Since == nil || last.Since.Format("2006-01-02") != "2026-02-01" {
		t.Fatalf("unexpected since %v", last.Since)
	}
	if last.Last != 3 || last.CurveWindow != 7 {
		t.Fatalf("unexpected config %+v", last)
	}
}

func TestFilterRejectsBadWindow(t *testing.T) {
	m := sized(NewModel(fixedLoader(sampleReport(), nil), model.StatsConfig{CurveWindow: 5}))
	m.startFilter()
	m.filterInputs[2].SetValue("0")
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(*Model)
	if !m.filterMode {
		t.Fatalf("expected filter mode to stay open")
	}
	if m.filterError == "" {
		t.Fatalf("expected filter error")
	}
}

func TestLoadErrorIsShown(t *testing.T) {
	load := func(context.Context, model.StatsConfig) (stats.Report, error) {
		return stats.Report{}, errors.New("db locked")
	}
	m := sized(NewModel(load, model.StatsConfig{CurveWindow: 5}))
	if !strings.Contains(m.View(), "db locked") {
		t.Fatalf("expected error in view")
	}
}

func TestEmptyArchive(t *testing.T) {
	m := sized(NewModel(fixedLoader(stats.Report{}, nil), model.StatsConfig{CurveWindow: 5}))
	if !strings.Contains(m.View(), "No runs found.") {
		t.Fatalf("expected empty message")
	}
}

func TestFitLinesPadsAndTruncates(t *testing.T) {
	got := fitLines("ab\ncd\nef", 3, 2)
	if got != "ab \ncd " {
		t.Fatalf("unexpected %q", got)
	}
}
