package analysis

import (
	"math"

	"github.com/san-kum/creepersim/internal/creeper"
)

// GaitStats summarises the step events of one run.
type GaitStats struct {
	Steps       int
	Alignments  int
	PerGroup    []int
	Cadence     float64 // group steps per second
	MeanGap     float64 // mean seconds between group steps
	MinGap      float64
	Alternation float64 // share of consecutive steps made by different groups
	Balance     float64 // min/max steps per group, 1 is perfectly even
}

// Gait computes GaitStats for a run with the given group count and duration.
func Gait(events []creeper.StepEvent, groups int, duration float64) GaitStats {
	g := GaitStats{PerGroup: make([]int, groups), MinGap: math.Inf(1)}

	last, lastTime := creeper.NoGroup, 0.0
	switches, pairs := 0, 0
	gapSum := 0.0
	for _, ev := range events {
		if ev.Group == creeper.NoGroup {
			g.Alignments++
			continue
		}
		if ev.Group >= 0 && ev.Group < groups {
			g.PerGroup[ev.Group]++
		}
		if g.Steps > 0 {
			pairs++
			if ev.Group != last {
				switches++
			}
			gap := ev.Time - lastTime
			gapSum += gap
			g.MinGap = math.Min(g.MinGap, gap)
		}
		g.Steps++
		last, lastTime = ev.Group, ev.Time
	}

	if duration > 0 {
		g.Cadence = float64(g.Steps) / duration
	}
	if pairs > 0 {
		g.MeanGap = gapSum / float64(pairs)
		g.Alternation = float64(switches) / float64(pairs)
	} else {
		g.MinGap = 0
		g.Alternation = 1
	}

	lo, hi := math.MaxInt, 0
	for _, n := range g.PerGroup {
		lo, hi = min(lo, n), max(hi, n)
	}
	if hi > 0 {
		g.Balance = float64(lo) / float64(hi)
	}
	return g
}
