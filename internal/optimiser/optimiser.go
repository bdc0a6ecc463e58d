package optimiser

import (
	"sort"

	"git.lost.host/meutraa/spopt/internal/sp"
	"git.lost.host/meutraa/spopt/internal/timebase"
)

// Path is an ordered set of activations and the extra score they earn
// over never activating. A path returned by OptimalPath also has the
// song's solo boosts included in ScoreBoost.
type Path struct {
	Activations []Activation
	ScoreBoost  int
}

// CacheKey identifies a subproblem: the best path whose first
// activation is at Point or later, the previous activation having ended
// at Position. Two keys with the same point but distinct beats are
// distinct subproblems.
type CacheKey struct {
	Point    int
	Position timebase.Position
}

type nextAct struct {
	act Activation
	key CacheKey
}

// CacheValue is a solved subproblem: the best path from its key and the
// branches that were considered for it.
type CacheValue struct {
	path             Path
	possibleNextActs []nextAct
}

type cache struct {
	paths       map[CacheKey]CacheValue
	byPoint     map[int][]CacheKey
	fullSPPaths map[int]CacheValue
}

// Optimiser explores partial paths over a processed song with memoised
// subproblems and produces the optimal Star Power path.
type Optimiser struct {
	song                *ProcessedSong
	totalSoloBoost      int
	nextCandidatePoints []int
}

func NewOptimiser(song *ProcessedSong) *Optimiser {
	o := Optimiser{song: song}
	for _, boost := range song.points.SoloBoosts {
		o.totalSoloBoost += boost.Value
	}
	o.buildNextCandidatePoints()
	return &o
}

// buildNextCandidatePoints marks the only points an activation can
// usefully start on: a non hold point that grants SP, or the first non
// hold point after one. SP cannot first reach the activation minimum
// anywhere else.
func (o *Optimiser) buildNextCandidatePoints() {
	pts := o.song.points.Points
	n := len(pts)
	isCandidate := make([]bool, n)
	pending := false
	for i := 0; i < n; i++ {
		if pending && !pts[i].IsHoldPoint {
			isCandidate[i] = true
			pending = false
		}
		if pts[i].IsSPGrantingNote {
			isCandidate[i] = true
			pending = true
		}
	}

	o.nextCandidatePoints = make([]int, n)
	next := n
	for i := n - 1; i >= 0; i-- {
		if isCandidate[i] {
			next = i
		}
		o.nextCandidatePoints[i] = next
	}
}

func (o *Optimiser) nextCandidatePoint(point int) int {
	if point >= len(o.nextCandidatePoints) {
		return len(o.nextCandidatePoints)
	}
	return o.nextCandidatePoints[point]
}

// actEndLowerBound returns the earliest point worth trying as an
// activation end: anything before it is covered outright by the minimum
// SP and would come back as surplus.
func (o *Optimiser) actEndLowerBound(point int, pos timebase.Measure, spBarAmount float64) int {
	endPos := pos + timebase.Measure(spBarAmount*sp.MeasuresPerBar)
	pts := o.song.points.Points
	i := sort.Search(len(pts), func(i int) bool {
		return pts[i].HitWindowEnd.Measure > endPos
	})
	if i > 0 {
		i--
	}
	if i < point {
		i = point
	}
	return i
}

// OptimalPath returns the best Star Power path for the song.
func (o *Optimiser) OptimalPath() Path {
	c := cache{
		paths:       map[CacheKey]CacheValue{},
		byPoint:     map[int][]CacheKey{},
		fullSPPaths: map[int]CacheValue{},
	}
	key := CacheKey{Point: 0, Position: timebase.Position{}}
	path := o.findBestSubpaths(key, &c, false).path
	path.ScoreBoost += o.totalSoloBoost
	return path
}

func (o *Optimiser) findBestSubpaths(key CacheKey, c *cache, hasFullSP bool) CacheValue {
	if hasFullSP {
		if v, ok := c.fullSPPaths[key.Point]; ok {
			return v
		}
	} else if v, ok := c.paths[key]; ok {
		return v
	} else if v, ok := o.tryPreviousBestSubpaths(key, c); ok {
		c.paths[key] = v
		c.byPoint[key.Point] = append(c.byPoint[key.Point], key)
		return v
	}

	branches := []nextAct{}
	n := o.song.points.Len()
	for s := o.nextCandidatePoint(key.Point); s < n; s = o.nextCandidatePoint(s + 1) {
		spBar := sp.SpBar{Min: 1.0, Max: 1.0}
		if !hasFullSP {
			spBar = o.song.TotalAvailableSP(key.Position.Beat, key.Point, s)
		}
		if !spBar.FullEnoughToActivate() {
			continue
		}

		if !hasFullSP && spBar.Min == 1.0 && spBar.Max == 1.0 {
			// Every later start also sees a full bar, so the rest of
			// the search is the position independent full SP
			// subproblem.
			fullKey := CacheKey{Point: s, Position: o.song.points.Points[s].HitWindowStart}
			sub := o.findBestSubpaths(fullKey, c, true)
			branches = append(branches, sub.possibleNextActs...)
			break
		}

		minSP := spBar.Min
		if minSP < sp.MinimumAmount {
			minSP = sp.MinimumAmount
		}
		for e := o.actEndLowerBound(s, key.Position.Measure, minSP); e < n; e++ {
			candidate := ActivationCandidate{
				ActStart:                s,
				ActEnd:                  e,
				EarliestActivationPoint: key.Position,
				SpBar:                   spBar,
			}
			result := o.song.IsCandidateValid(candidate)
			if result.Validity == InsufficientSP {
				break
			}
			if result.Validity == SurplusSP {
				continue
			}
			nextKey := CacheKey{
				Point:    o.song.points.NextNonHoldPoint(e + 1),
				Position: result.EndingPosition,
			}
			branches = append(branches, nextAct{Activation{s, e}, nextKey})
		}
	}

	best := Path{Activations: []Activation{}}
	for _, b := range branches {
		sub := o.findBestSubpaths(b.key, c, false)
		boost := o.song.points.RangeScore(b.act.ActStart, b.act.ActEnd+1) + sub.path.ScoreBoost
		candidate := Path{
			Activations: append([]Activation{b.act}, sub.path.Activations...),
			ScoreBoost:  boost,
		}
		if betterPath(candidate, best) {
			best = candidate
		}
	}

	value := CacheValue{path: best, possibleNextActs: branches}
	if hasFullSP {
		c.fullSPPaths[key.Point] = value
	} else {
		c.paths[key] = value
		c.byPoint[key.Point] = append(c.byPoint[key.Point], key)
	}
	return value
}

// tryPreviousBestSubpaths reuses a subproblem already solved for the
// same point at a later position, valid when every candidate start sees
// the same SP bar from both positions.
func (o *Optimiser) tryPreviousBestSubpaths(key CacheKey, c *cache) (CacheValue, bool) {
	n := o.song.points.Len()
	for _, prev := range c.byPoint[key.Point] {
		if prev.Position.Beat < key.Position.Beat {
			continue
		}
		usable := true
		for s := o.nextCandidatePoint(key.Point); s < n; s = o.nextCandidatePoint(s + 1) {
			ours := o.song.TotalAvailableSP(key.Position.Beat, key.Point, s)
			theirs := o.song.TotalAvailableSP(prev.Position.Beat, prev.Point, s)
			if ours != theirs {
				usable = false
				break
			}
			if ours.Min == 1.0 && ours.Max == 1.0 {
				// From here on both enumerations collapse into the
				// same full SP subproblem.
				break
			}
		}
		if usable {
			return c.paths[prev], true
		}
	}
	return CacheValue{}, false
}

// betterPath orders paths by score boost, then fewer activations, then
// earlier activation starts, so the optimiser output is stable.
func betterPath(a, b Path) bool {
	if a.ScoreBoost != b.ScoreBoost {
		return a.ScoreBoost > b.ScoreBoost
	}
	if len(a.Activations) != len(b.Activations) {
		return len(a.Activations) < len(b.Activations)
	}
	for i := range a.Activations {
		if a.Activations[i].ActStart != b.Activations[i].ActStart {
			return a.Activations[i].ActStart < b.Activations[i].ActStart
		}
	}
	return false
}
