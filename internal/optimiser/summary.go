package optimiser

import (
	"fmt"
	"strings"
)

// PathSummary renders a path as text: the scores and the point and
// measure span of every activation.
func (o *Optimiser) PathSummary(path Path) string {
	set := o.song.points
	baseScore := set.RangeScore(0, set.Len())

	var b strings.Builder
	fmt.Fprintf(&b, "Activations: %v\n", len(path.Activations))
	fmt.Fprintf(&b, "Base score: %v\n", baseScore)
	fmt.Fprintf(&b, "Score boost: %v\n", path.ScoreBoost)
	fmt.Fprintf(&b, "Total score: %v", baseScore+path.ScoreBoost)

	for i, act := range path.Activations {
		start := set.Points[act.ActStart].Position
		end := set.Points[act.ActEnd].Position
		fmt.Fprintf(&b, "\nActivation %v: points %v-%v, beats %.3f-%.3f, measures %.3f-%.3f",
			i+1, act.ActStart, act.ActEnd,
			float64(start.Beat), float64(end.Beat),
			float64(start.Measure), float64(end.Measure))
	}

	return b.String()
}
