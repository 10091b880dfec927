package stats

import (
	"context"

	"github.com/verte-zerg/notedrill/internal/model"
	"github.com/verte-zerg/notedrill/internal/store"
)

// Report contains precomputed data for stats rendering.
type Report struct {
	Runs         []model.RunAggregate
	WindowRunIDs []int64
	NotesAll     []model.NoteAggregate
	NotesWindow  []model.NoteAggregate
	Confusions   map[string]map[string]int
}

// BuildReport loads and prepares data for stats rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.StatsConfig) (Report, error) {
	runs, err := st.ListRuns(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(runs) > cfg.Last {
		runs = runs[len(runs)-cfg.Last:]
	}

	allIDs := runIDs(runs)
	windowIDs := allIDs
	if cfg.CurveWindow > 0 && len(allIDs) > cfg.CurveWindow {
		windowIDs = allIDs[len(allIDs)-cfg.CurveWindow:]
	}
	notesAll, err := st.ListNoteAggregates(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}
	notesWindow, err := st.ListNoteAggregates(ctx, windowIDs)
	if err != nil {
		return Report{}, err
	}
	confusions, err := st.ListConfusions(ctx, allIDs)
	if err != nil {
		return Report{}, err
	}

	return Report{
		Runs:         runs,
		WindowRunIDs: windowIDs,
		NotesAll:     notesAll,
		NotesWindow:  notesWindow,
		Confusions:   confusions,
	}, nil
}

func runIDs(runs []model.RunAggregate) []int64 {
	ids := make([]int64, len(runs))
	for i, r := range runs {
		ids[i] = r.ID
	}
	return ids
}
