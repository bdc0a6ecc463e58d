package points

import (
	"git.lost.host/meutraa/spopt/internal/chart"
	"git.lost.host/meutraa/spopt/internal/timebase"
)

const (
	noteValue     = 50
	soloNoteValue = 100
	// hitWindowSeconds is the front and back hit window at full squeeze.
	hitWindowSeconds = 0.07
)

// Point is one scoring event, either a note (or chord) hit or a tick of
// sustain.
type Point struct {
	Position         timebase.Position
	HitWindowStart   timebase.Position
	HitWindowEnd     timebase.Position
	Value            int
	BaseValue        int
	IsHoldPoint      bool
	IsSPGrantingNote bool
}

// SoloBoost is the flat score awarded when the solo ending at Position
// is played perfectly.
type SoloBoost struct {
	Position timebase.Position
	Value    int
}

// PointSet is the ordered scoring timeline of a track. Points are
// strictly non-decreasing in position.
type PointSet struct {
	Points     []Point
	SoloBoosts []SoloBoost

	nextNonHoldPoint   []int
	nextSPGrantingNote []int
	cumulativeScores   []int
}

// NewGuitar builds the point set for a five fret track.
func NewGuitar(track chart.NoteTrack, resolution float64, converter *timebase.Converter, squeeze float64) *PointSet {
	return build(track, resolution, converter, squeeze, true)
}

// NewGHL builds the point set for a six fret track. The scoring rules
// match five fret, only the lane codes differ.
func NewGHL(track chart.NoteTrack, resolution float64, converter *timebase.Converter, squeeze float64) *PointSet {
	return build(track, resolution, converter, squeeze, true)
}

// NewDrums builds the point set for a drum track. Drums have no
// sustains, every pad and cymbal is a plain note.
func NewDrums(track chart.NoteTrack, resolution float64, converter *timebase.Converter, squeeze float64) *PointSet {
	return build(track, resolution, converter, squeeze, false)
}

func build(track chart.NoteTrack, resolution float64, converter *timebase.Converter, squeeze float64, sustains bool) *PointSet {
	set := PointSet{}

	chordIndexes := []int{}
	chordTicks := []int{}

	notes := track.Notes
	for i := 0; i < len(notes); {
		j := i
		maxLength := 0
		for j < len(notes) && notes[j].Position == notes[i].Position {
			if notes[j].Length > maxLength {
				maxLength = notes[j].Length
			}
			j++
		}

		position := notes[i].Position
		beat := timebase.Beat(float64(position) / resolution)
		value := noteValue * (j - i)
		chordIndexes = append(chordIndexes, len(set.Points))
		chordTicks = append(chordTicks, position)
		set.Points = append(set.Points, Point{
			Position:       converter.Position(beat),
			HitWindowStart: hitWindow(converter, beat, -hitWindowSeconds*squeeze),
			HitWindowEnd:   hitWindow(converter, beat, hitWindowSeconds*squeeze),
			Value:          value,
			BaseValue:      value,
		})

		if sustains && maxLength > 0 {
			appendSustainPoints(&set, position, maxLength, resolution, converter)
		}
		i = j
	}

	// A phrase grants its SP on the last note inside it.
	for _, phrase := range track.SPPhrases {
		ender := -1
		for k, tick := range chordTicks {
			if phrase.Contains(tick) {
				ender = chordIndexes[k]
			} else if tick >= phrase.Position+phrase.Length {
				break
			}
		}
		if ender >= 0 {
			set.Points[ender].IsSPGrantingNote = true
		}
	}

	set.buildIndexes()
	set.buildSoloBoosts(track, resolution, converter)
	return &set
}

// appendSustainPoints emits the per tick-gap scoring points of a held
// note. The game samples a sustain every resolution/25 ticks, half a
// tick early, with the final sample clamped to the sustain end.
func appendSustainPoints(set *PointSet, position, length int, resolution float64, converter *timebase.Converter) {
	tickGap := int(resolution) / 25
	if tickGap < 1 {
		tickGap = 1
	}
	floatPos := float64(position)
	remaining := float64(length)
	end := float64(position + length)

	for remaining > 0 {
		floatPos += float64(tickGap)
		remaining -= float64(tickGap)
		pos := floatPos
		if pos > end {
			pos = end
		}
		beat := timebase.Beat((pos - 0.5) / resolution)
		p := converter.Position(beat)
		set.Points = append(set.Points, Point{
			Position:       p,
			HitWindowStart: p,
			HitWindowEnd:   p,
			Value:          1,
			BaseValue:      1,
			IsHoldPoint:    true,
		})
	}
}

func hitWindow(converter *timebase.Converter, beat timebase.Beat, offset float64) timebase.Position {
	second := converter.BeatsToSeconds(beat) + timebase.Second(offset)
	return converter.Position(converter.SecondsToBeats(second))
}

func (set *PointSet) buildIndexes() {
	n := len(set.Points)
	set.nextNonHoldPoint = make([]int, n)
	set.nextSPGrantingNote = make([]int, n)
	nextNonHold, nextSP := n, n
	for i := n - 1; i >= 0; i-- {
		if !set.Points[i].IsHoldPoint {
			nextNonHold = i
		}
		if set.Points[i].IsSPGrantingNote {
			nextSP = i
		}
		set.nextNonHoldPoint[i] = nextNonHold
		set.nextSPGrantingNote[i] = nextSP
	}

	set.cumulativeScores = make([]int, n+1)
	for i, p := range set.Points {
		set.cumulativeScores[i+1] = set.cumulativeScores[i] + p.Value
	}
}

func (set *PointSet) buildSoloBoosts(track chart.NoteTrack, resolution float64, converter *timebase.Converter) {
	soloStart := -1
	for _, event := range track.Events {
		switch event.Name {
		case "solo":
			soloStart = event.Position
		case "soloend":
			if soloStart < 0 {
				continue
			}
			boost := 0
			for _, note := range track.Notes {
				if note.Position >= soloStart && note.Position <= event.Position {
					boost += soloNoteValue
				}
			}
			beat := timebase.Beat(float64(event.Position) / resolution)
			set.SoloBoosts = append(set.SoloBoosts, SoloBoost{converter.Position(beat), boost})
			soloStart = -1
		}
	}
}

func (set *PointSet) Len() int { return len(set.Points) }

// NextNonHoldPoint returns the smallest index >= point that is not a
// hold point, or Len if none remains.
func (set *PointSet) NextNonHoldPoint(point int) int {
	if point >= len(set.Points) {
		return len(set.Points)
	}
	return set.nextNonHoldPoint[point]
}

// NextSPGrantingNote returns the smallest index >= point that grants
// SP, or Len if none remains.
func (set *PointSet) NextSPGrantingNote(point int) int {
	if point >= len(set.Points) {
		return len(set.Points)
	}
	return set.nextSPGrantingNote[point]
}

// RangeScore is the combined value of points at indexes [start, end).
func (set *PointSet) RangeScore(start, end int) int {
	return set.cumulativeScores[end] - set.cumulativeScores[start]
}
