package stats

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/notedrill/internal/model"
	"github.com/verte-zerg/notedrill/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open(filepath.Join(dir, "notedrill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Minute)
		end := start.Add(30 * time.Second)
		run := model.RunStats{
			RunID:     fmt.Sprintf("run-%d", i),
			StartedAt: start,
			EndedAt:   end,
			Scale:     "C4,D4",
			Input:     "keyboard",
			Correct:   2,
			Incorrect: 1,
		}
		attempts := []model.AttemptRow{
			{Seq: 1, Target: "C4", TargetMIDI: 60, Attempted: "D4", At: start},
			{Seq: 2, Target: "C4", TargetMIDI: 60, Attempted: "C4", Correct: true, At: start},
			{Seq: 3, Target: "D4", TargetMIDI: 62, Attempted: "D4", Correct: true, At: start},
		}
		id, err := st.InsertRun(ctx, run, attempts)
		if err != nil {
			t.Fatalf("insert run: %v", err)
		}
		ids = append(ids, id)
	}

	report, err := BuildReport(ctx, st, model.StatsConfig{Last: 2, CurveWindow: 1})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(report.Runs))
	}
	if report.Runs[0].ID != ids[1] || report.Runs[1].ID != ids[2] {
		t.Fatalf("unexpected run ids: %+v", report.Runs)
	}
	if len(report.WindowRunIDs) != 1 || report.WindowRunIDs[0] != ids[2] {
		t.Fatalf("unexpected window run ids: %v", report.WindowRunIDs)
	}
	if len(report.NotesAll) != 2 || report.NotesAll[0].Incorrect != 2 {
		t.Fatalf("unexpected note aggregates: %+v", report.NotesAll)
	}
	if len(report.NotesWindow) != 2 || report.NotesWindow[0].Incorrect != 1 {
		t.Fatalf("unexpected window aggregates: %+v", report.NotesWindow)
	}
	if report.Confusions["C4"]["D4"] != 2 {
		t.Fatalf("unexpected confusions: %v", report.Confusions)
	}
}
