package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/verte-zerg/notedrill/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "notedrill.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestInsertAndListRuns(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	attempts := []model.AttemptRow{
		{Seq: 1, Target: "C4", TargetMIDI: 60, Attempted: "D4", Correct: false, At: start.Add(time.Second)},
		{Seq: 2, Target: "C4", TargetMIDI: 60, Attempted: "C4", Correct: true, At: start.Add(2 * time.Second)},
		{Seq: 3, Target: "G4", TargetMIDI: 67, Attempted: "G4", Correct: true, At: start.Add(3 * time.Second)},
	}
	run := model.RunStats{
		RunID:     "run-1",
		StartedAt: start,
		EndedAt:   start.Add(time.Minute),
		Scale:     "C4,D4,E4,F4,G4,A4,B4",
		Input:     "keyboard",
		Correct:   2,
		Incorrect: 1,
	}
	id, err := st.InsertRun(ctx, run, attempts)
	if err != nil {
		t.Fatalf("insert run: %v", err)
	}

	runs, err := st.ListRuns(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	want := []model.RunAggregate{{
		ID:        id,
		RunID:     "run-1",
		EndedAt:   start.Add(time.Minute),
		Correct:   2,
		Incorrect: 1,
		Duration:  time.Minute,
	}}
	if diff := cmp.Diff(want, runs); diff != "" {
		t.Fatalf("runs mismatch (-want +got):\n%s", diff)
	}

	aggs, err := st.ListNoteAggregates(ctx, []int64{id})
	if err != nil {
		t.Fatalf("list note aggregates: %v", err)
	}
	wantAggs := []model.NoteAggregate{
		{Note: "C4", MIDI: 60, Correct: 1, Incorrect: 1},
		{Note: "G4", MIDI: 67, Correct: 1, Incorrect: 0},
	}
	if diff := cmp.Diff(wantAggs, aggs); diff != "" {
		t.Fatalf("aggregates mismatch (-want +got):\n%s", diff)
	}

	confusions, err := st.ListConfusions(ctx, []int64{id})
	if err != nil {
		t.Fatalf("list confusions: %v", err)
	}
	if confusions["C4"]["D4"] != 1 || len(confusions) != 1 {
		t.Fatalf("unexpected confusions: %v", confusions)
	}
}

func TestListRunsSince(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		end := base.AddDate(0, 0, i)
		run := model.RunStats{
			RunID:     "run-" + end.Format("0102"),
			StartedAt: end.Add(-time.Minute),
			EndedAt:   end,
			Scale:     "C4",
			Input:     "plain",
		}
		if _, err := st.InsertRun(ctx, run, nil); err != nil {
			t.Fatalf("insert run: %v", err)
		}
	}
	since := base.AddDate(0, 0, 1)
	runs, err := st.ListRuns(ctx, model.StatsConfig{Since: &since})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs since %s, got %d", since, len(runs))
	}
	if !runs[0].EndedAt.Before(runs[1].EndedAt) {
		t.Fatalf("runs not ordered oldest first: %+v", runs)
	}
}

func TestDuplicateRunIDRollsBack(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()
	run := model.RunStats{RunID: "dup", StartedAt: time.Unix(0, 0), EndedAt: time.Unix(60, 0), Scale: "C4", Input: "plain"}
	if _, err := st.InsertRun(ctx, run, nil); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if _, err := st.InsertRun(ctx, run, nil); err == nil {
		t.Fatalf("expected unique constraint error")
	}
	runs, err := st.ListRuns(ctx, model.StatsConfig{})
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
}

func TestEmptyIDsQueries(t *testing.T) {
	st := openTestStore(t)
	aggs, err := st.ListNoteAggregates(context.Background(), nil)
	if err != nil || aggs != nil {
		t.Fatalf("expected nil aggregates, got %v, %v", aggs, err)
	}
	conf, err := st.ListConfusions(context.Background(), nil)
	if err != nil || len(conf) != 0 {
		t.Fatalf("expected empty confusions, got %v, %v", conf, err)
	}
}
