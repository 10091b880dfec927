package stats

import (
	"fmt"
	"sort"

	"github.com/verte-zerg/notedrill/internal/model"
)

// HardestNotes orders aggregates by lowest accuracy, then by pitch, and
// keeps the first top entries (all when top <= 0).
func HardestNotes(aggs []model.NoteAggregate, top int) []model.NoteAggregate {
	out := make([]model.NoteAggregate, len(aggs))
	copy(out, aggs)
	sort.SliceStable(out, func(i, j int) bool {
		ai := noteAccuracy(out[i])
		aj := noteAccuracy(out[j])
		if ai == aj {
			return out[i].MIDI < out[j].MIDI
		}
		return ai < aj
	})
	if top > 0 && top < len(out) {
		out = out[:top]
	}
	return out
}

func noteAccuracy(agg model.NoteAggregate) float64 {
	if agg.Correct+agg.Incorrect == 0 {
		return 1.0
	}
	return Accuracy(agg.Correct, agg.Incorrect)
}

// TopConfusion names the most frequent wrong answer, e.g. "D4 ×3".
func TopConfusion(counts map[string]int) string {
	if len(counts) == 0 {
		return "-"
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] == counts[names[j]] {
			return names[i] < names[j]
		}
		return counts[names[i]] > counts[names[j]]
	})
	return fmt.Sprintf("%s ×%d", names[0], counts[names[0]])
}
