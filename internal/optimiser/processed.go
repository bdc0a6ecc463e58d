package optimiser

import (
	"math"

	"git.lost.host/meutraa/spopt/internal/chart"
	"git.lost.host/meutraa/spopt/internal/points"
	"git.lost.host/meutraa/spopt/internal/sp"
	"git.lost.host/meutraa/spopt/internal/timebase"
)

// ProcessedSong bundles the timebase, point set and SP data of a track,
// all built from the same sync track, and validates activations against
// them.
type ProcessedSong struct {
	converter *timebase.Converter
	points    *points.PointSet
	spData    *sp.Data
}

func NewProcessedSong(track chart.NoteTrack, resolution float64, syncTrack chart.SyncTrack,
	instrument chart.Instrument, earlyWhammy, squeeze float64, lazyWhammy timebase.Second) *ProcessedSong {
	syncTrack = chart.NewSyncTrack(syncTrack.TimeSigs, syncTrack.BPMs)
	converter := timebase.NewConverter(syncTrack, resolution)

	var set *points.PointSet
	switch instrument {
	case chart.GHL:
		set = points.NewGHL(track, resolution, converter, squeeze)
	case chart.Drums:
		set = points.NewDrums(track, resolution, converter, squeeze)
	default:
		set = points.NewGuitar(track, resolution, converter, squeeze)
	}

	return &ProcessedSong{
		converter: converter,
		points:    set,
		spData:    sp.NewData(track, syncTrack, resolution, converter, earlyWhammy, lazyWhammy),
	}
}

func (s *ProcessedSong) Converter() *timebase.Converter { return s.converter }
func (s *ProcessedSong) Points() *points.PointSet       { return s.points }
func (s *ProcessedSong) SpData() *sp.Data               { return s.spData }

// ActivationCandidate is a potential activation interval to validate.
type ActivationCandidate struct {
	ActStart                int
	ActEnd                  int
	EarliestActivationPoint timebase.Position
	SpBar                   sp.SpBar
}

// Activation is a validated interval of points covered by one SP
// activation. Both ends are inclusive: ActEnd is the last point covered.
type Activation struct {
	ActStart int
	ActEnd   int
}

// ActValidity says if an activation is valid, and if not whether the
// problem is too little or too much Star Power.
type ActValidity int

const (
	Success ActValidity = iota
	InsufficientSP
	SurplusSP
)

// ActResult reports the validity of a candidate and, on success, the
// earliest position the activation can end.
type ActResult struct {
	EndingPosition timebase.Position
	Validity       ActValidity
}

// NegInfPosition sits before every real position, used when no forced
// whammy applies.
func NegInfPosition() timebase.Position {
	return timebase.Position{Beat: timebase.Beat(math.Inf(-1)), Measure: timebase.Measure(math.Inf(-1))}
}

// AdjustedHitWindowStart scales the front end of a point's hit window
// by squeeze, in second space.
func (s *ProcessedSong) AdjustedHitWindowStart(point int, squeeze float64) timebase.Position {
	p := &s.points.Points[point]
	front := s.converter.BeatsToSeconds(p.HitWindowStart.Beat)
	mid := s.converter.BeatsToSeconds(p.Position.Beat)
	beat := s.converter.SecondsToBeats(front + (mid-front)*timebase.Second(1.0-squeeze))
	return s.converter.Position(beat)
}

// AdjustedHitWindowEnd scales the back end of a point's hit window by
// squeeze, in second space.
func (s *ProcessedSong) AdjustedHitWindowEnd(point int, squeeze float64) timebase.Position {
	p := &s.points.Points[point]
	back := s.converter.BeatsToSeconds(p.HitWindowEnd.Beat)
	mid := s.converter.BeatsToSeconds(p.Position.Beat)
	beat := s.converter.SecondsToBeats(back - (back-mid)*timebase.Second(1.0-squeeze))
	return s.converter.Position(beat)
}

// TotalAvailableSP returns the minimum and maximum SP acquirable
// between two points. SP from the point actStart itself is not
// included. firstPoint exists to count SP granting notes the player
// could still hit at start, even if start is past their position.
func (s *ProcessedSong) TotalAvailableSP(start timebase.Beat, firstPoint, actStart int) sp.SpBar {
	return s.TotalAvailableSPWithWhammy(start, firstPoint, actStart, timebase.Beat(math.Inf(-1)))
}

// TotalAvailableSPWithWhammy also credits the minimum with the whammy
// the player is forced to provide until requiredWhammyEnd.
func (s *ProcessedSong) TotalAvailableSPWithWhammy(start timebase.Beat, firstPoint, actStart int,
	requiredWhammyEnd timebase.Beat) sp.SpBar {
	bar := sp.SpBar{}
	for p := firstPoint; p < actStart; p++ {
		pt := &s.points.Points[p]
		if pt.IsSPGrantingNote && pt.HitWindowEnd.Beat >= start {
			bar.AddPhrase()
		}
	}

	actStartBeat := s.points.Points[actStart].Position.Beat
	bar.Max += s.spData.AvailableWhammy(start, actStartBeat)
	if bar.Max > 1.0 {
		bar.Max = 1.0
	}

	whammyEnd := requiredWhammyEnd
	if whammyEnd > actStartBeat {
		whammyEnd = actStartBeat
	}
	if whammyEnd > start {
		bar.Min += s.spData.AvailableWhammy(start, whammyEnd)
		if bar.Min > 1.0 {
			bar.Min = 1.0
		}
	}

	return bar
}

// IsCandidateValid validates a candidate under the full hit window.
func (s *ProcessedSong) IsCandidateValid(a ActivationCandidate) ActResult {
	return s.IsRestrictedCandidateValid(a, 1.0, NegInfPosition())
}

// IsRestrictedCandidateValid validates that an activation over
// [ActStart, ActEnd] is feasible. The maximum SP branch decides
// feasibility, the minimum branch gives the earliest ending position
// and decides whether the candidate is dominated by a longer one.
func (s *ProcessedSong) IsRestrictedCandidateValid(a ActivationCandidate, squeeze float64,
	requiredWhammyEnd timebase.Position) ActResult {
	nullPosition := timebase.Position{}
	if !a.SpBar.FullEnoughToActivate() {
		return ActResult{nullPosition, InsufficientSP}
	}

	// The latest possible activation start, hitting ActStart at the
	// back of its window.
	current := s.AdjustedHitWindowEnd(a.ActStart, squeeze)
	if current.Beat < a.EarliestActivationPoint.Beat {
		current = a.EarliestActivationPoint
	}

	spBar := a.SpBar
	if spBar.Min < sp.MinimumAmount {
		spBar.Min = sp.MinimumAmount
	}
	// The worst case activated as far back as the earliest activation
	// point and has been draining since.
	spBar.Min -= float64(current.Measure-a.EarliestActivationPoint.Measure) / sp.MeasuresPerBar
	if spBar.Min < 0.0 {
		spBar.Min = 0.0
	}

	for p := a.ActStart + 1; p < a.ActEnd; p++ {
		if !s.points.Points[p].IsSPGrantingNote {
			continue
		}
		backEnd := s.AdjustedHitWindowEnd(p, squeeze)
		frontEnd := s.AdjustedHitWindowStart(p, squeeze)
		if backEnd.Beat < current.Beat {
			backEnd = current
		}
		if frontEnd.Beat < current.Beat {
			frontEnd = current
		}

		// Best case hits the phrase note as late as possible, unless SP
		// would run dry first, then exactly as late as SP allows.
		notePos := backEnd
		maxSP := s.spData.PropagateSPOverWhammyMax(current, notePos, spBar.Max)
		if maxSP < 0.0 {
			notePos = s.spData.ActivationEndPoint(current, backEnd, spBar.Max)
			if notePos.Beat < frontEnd.Beat {
				return ActResult{nullPosition, InsufficientSP}
			}
			maxSP = 0.0
		}
		minSP := s.spData.PropagateSPOverWhammyMin(current, notePos, spBar.Min, requiredWhammyEnd)

		maxSP += sp.PhraseAmount
		if maxSP > 1.0 {
			maxSP = 1.0
		}
		// The worst case only banks the phrase if it certainly reaches
		// the note.
		if minSP > 0.0 {
			minSP += sp.PhraseAmount
			if minSP > 1.0 {
				minSP = 1.0
			}
		}
		spBar = sp.SpBar{Min: minSP, Max: maxSP}
		current = notePos
	}

	endFront := s.AdjustedHitWindowStart(a.ActEnd, squeeze)
	if endFront.Beat < current.Beat {
		endFront = current
	}
	maxSP := s.spData.PropagateSPOverWhammyMax(current, endFront, spBar.Max)
	if maxSP < 0.0 {
		return ActResult{nullPosition, InsufficientSP}
	}
	minSP := s.spData.PropagateSPOverWhammyMin(current, endFront, spBar.Min, requiredWhammyEnd)
	if s.points.Points[a.ActEnd].IsSPGrantingNote && minSP > 0.0 {
		minSP += sp.PhraseAmount
	}
	if minSP > 1.0 {
		minSP = 1.0
	}

	endMeasure := endFront.Measure + timebase.Measure(minSP*sp.MeasuresPerBar)
	ending := timebase.Position{Beat: s.converter.MeasuresToBeats(endMeasure), Measure: endMeasure}

	if a.ActEnd+1 < s.points.Len() {
		nextBack := s.AdjustedHitWindowEnd(a.ActEnd+1, squeeze)
		if ending.Beat >= nextBack.Beat {
			return ActResult{ending, SurplusSP}
		}
	}
	return ActResult{ending, Success}
}
