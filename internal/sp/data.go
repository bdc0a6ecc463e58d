package sp

import (
	"sort"

	"git.lost.host/meutraa/spopt/internal/chart"
	"git.lost.host/meutraa/spopt/internal/timebase"
	"golang.org/x/exp/slices"
)

// BeatRate is the net SP change per whammied beat from a position on.
type BeatRate struct {
	Position      timebase.Beat
	NetSPGainRate float64
}

// WhammyRange is a span of beats during which whammy SP is obtainable.
type WhammyRange struct {
	Start timebase.Position
	End   timebase.Position
}

// Data tracks where whammy is available and how SP drains, used by the
// optimiser to account SP across an activation.
type Data struct {
	converter    *timebase.Converter
	beatRates    []BeatRate
	whammyRanges []WhammyRange
}

const earlyTimingWindow = 0.07

// NewData derives whammy ranges from the held phrase notes of a track.
// The range start is widened by the early timing window and shrunk by
// lazyWhammy, both applied in second space.
func NewData(track chart.NoteTrack, syncTrack chart.SyncTrack, resolution float64,
	converter *timebase.Converter, earlyWhammy float64, lazyWhammy timebase.Second) *Data {
	d := Data{
		converter: converter,
		beatRates: formBeatRates(syncTrack, resolution),
	}

	early := timebase.Second(earlyTimingWindow * earlyWhammy)

	type beatSpan struct{ start, end timebase.Beat }
	ranges := []beatSpan{}
	for _, note := range track.Notes {
		if note.Length == 0 {
			continue
		}
		inPhrase := false
		for _, p := range track.SPPhrases {
			if p.Contains(note.Position) {
				inPhrase = true
				break
			}
		}
		if !inPhrase {
			continue
		}

		beatStart := timebase.Beat(float64(note.Position) / resolution)
		secondStart := converter.BeatsToSeconds(beatStart)
		secondStart -= early
		secondStart += lazyWhammy
		beatStart = converter.SecondsToBeats(secondStart)
		beatEnd := timebase.Beat(float64(note.Position+note.Length) / resolution)
		if beatStart < beatEnd {
			ranges = append(ranges, beatSpan{beatStart, beatEnd})
		}
	}

	slices.SortFunc(ranges, func(a, b beatSpan) bool {
		if a.start != b.start {
			return a.start < b.start
		}
		return a.end < b.end
	})

	if 0 != len(ranges) {
		merged := []beatSpan{}
		pair := ranges[0]
		for _, r := range ranges[1:] {
			if r.start <= pair.end {
				if r.end > pair.end {
					pair.end = r.end
				}
			} else {
				merged = append(merged, pair)
				pair = r
			}
		}
		merged = append(merged, pair)

		for _, r := range merged {
			d.whammyRanges = append(d.whammyRanges, WhammyRange{
				Start: converter.Position(r.start),
				End:   converter.Position(r.end),
			})
		}
	}

	return &d
}

func formBeatRates(syncTrack chart.SyncTrack, resolution float64) []BeatRate {
	rates := make([]BeatRate, 0, len(syncTrack.TimeSigs))
	for _, ts := range syncTrack.TimeSigs {
		pos := timebase.Beat(float64(ts.Position) / resolution)
		measureRate := float64(ts.Numerator) * timebase.DefaultBeatRate / float64(ts.Denominator)
		rates = append(rates, BeatRate{pos, GainRate - 1.0/(MeasuresPerBar*measureRate)})
	}
	return rates
}

// IsInWhammyRanges reports whether a beat can be whammied.
func (d *Data) IsInWhammyRanges(beat timebase.Beat) bool {
	i := sort.Search(len(d.whammyRanges), func(i int) bool {
		return d.whammyRanges[i].End.Beat >= beat
	})
	if i == len(d.whammyRanges) {
		return false
	}
	return d.whammyRanges[i].Start.Beat <= beat
}

// AvailableWhammy is the SP obtainable from whammy across [start, end).
// The value is not clamped, callers clamp to a full bar.
func (d *Data) AvailableWhammy(start, end timebase.Beat) float64 {
	total := 0.0
	i := sort.Search(len(d.whammyRanges), func(i int) bool {
		return d.whammyRanges[i].End.Beat > start
	})
	for ; i < len(d.whammyRanges); i++ {
		r := d.whammyRanges[i]
		if r.Start.Beat >= end {
			break
		}
		whammyStart, whammyEnd := r.Start.Beat, r.End.Beat
		if start > whammyStart {
			whammyStart = start
		}
		if end < whammyEnd {
			whammyEnd = end
		}
		total += float64(whammyEnd-whammyStart) * GainRate
	}
	return total
}

// PropagateSPOverWhammyMax returns the SP available at end after
// propagating over [start, end) with every range fully whammied, or
// -1.0 if SP runs out inside a whammy range. The measure drain branches
// may return a plain negative value.
func (d *Data) PropagateSPOverWhammyMax(start, end timebase.Position, sp float64) float64 {
	i := sort.Search(len(d.whammyRanges), func(i int) bool {
		return d.whammyRanges[i].End.Beat > start.Beat
	})
	for i < len(d.whammyRanges) && d.whammyRanges[i].Start.Beat < end.Beat {
		r := d.whammyRanges[i]
		if r.Start.Beat > start.Beat {
			sp -= float64(r.Start.Measure-start.Measure) / MeasuresPerBar
			if sp < 0.0 {
				return sp
			}
			start = r.Start
		}
		rangeEnd := end.Beat
		if r.End.Beat < rangeEnd {
			rangeEnd = r.End.Beat
		}
		sp = d.propagateOverWhammyRange(start.Beat, rangeEnd, sp)
		if sp < 0.0 || r.End.Beat >= end.Beat {
			return sp
		}
		start = r.End
		i++
	}

	sp -= float64(end.Measure-start.Measure) / MeasuresPerBar
	return sp
}

// PropagateSPOverWhammyMin is the worst case counterpart: whammy is
// only mandatory until requiredWhammyEnd, after that SP simply drains.
// The result is clamped at 0.
func (d *Data) PropagateSPOverWhammyMin(start, end timebase.Position, sp float64,
	requiredWhammyEnd timebase.Position) float64 {
	if requiredWhammyEnd.Beat > start.Beat {
		whammyEnd := end
		if requiredWhammyEnd.Beat < end.Beat {
			whammyEnd = requiredWhammyEnd
		}
		sp = d.PropagateSPOverWhammyMax(start, whammyEnd, sp)
		start = requiredWhammyEnd
	}
	if start.Beat < end.Beat {
		sp -= float64(end.Measure-start.Measure) / MeasuresPerBar
	}

	if sp < 0.0 {
		sp = 0.0
	}
	return sp
}

// propagateOverWhammyRange advances SP across beat rate segments of a
// fully whammied range, clamping at a full bar and bailing out with
// -1.0 the moment SP goes negative.
func (d *Data) propagateOverWhammyRange(start, end timebase.Beat, sp float64) float64 {
	i := sort.Search(len(d.beatRates), func(i int) bool {
		return d.beatRates[i].Position >= start
	})
	if i > 0 {
		i--
	} else {
		subEnd := end
		if 0 != len(d.beatRates) && d.beatRates[0].Position < end {
			subEnd = d.beatRates[0].Position
		}
		sp += float64(subEnd-start) * defaultNetGainRate
		if sp > 1.0 {
			sp = 1.0
		}
		start = subEnd
	}
	for start < end {
		subEnd := end
		if i+1 < len(d.beatRates) && d.beatRates[i+1].Position < end {
			subEnd = d.beatRates[i+1].Position
		}
		sp += float64(subEnd-start) * d.beatRates[i].NetSPGainRate
		if sp < 0.0 {
			return -1.0
		}
		if sp > 1.0 {
			sp = 1.0
		}
		start = subEnd
		i++
	}
	return sp
}

// ActivationEndPoint returns how far an activation started at start
// with the given SP can reach, or end if end is reachable.
func (d *Data) ActivationEndPoint(start, end timebase.Position, sp float64) timebase.Position {
	i := sort.Search(len(d.whammyRanges), func(i int) bool {
		return d.whammyRanges[i].End.Beat > start.Beat
	})
	for i < len(d.whammyRanges) && d.whammyRanges[i].Start.Beat < end.Beat {
		r := d.whammyRanges[i]
		if r.Start.Beat > start.Beat {
			deduction := float64(r.Start.Measure-start.Measure) / MeasuresPerBar
			if sp < deduction {
				endMeas := start.Measure + timebase.Measure(sp*MeasuresPerBar)
				return timebase.Position{Beat: d.converter.MeasuresToBeats(endMeas), Measure: endMeas}
			}
			sp -= deduction
			start = r.Start
		}
		rangeEnd := end.Beat
		if r.End.Beat < rangeEnd {
			rangeEnd = r.End.Beat
		}
		newSP := d.propagateOverWhammyRange(start.Beat, rangeEnd, sp)
		if newSP < 0.0 {
			endBeat := d.whammyPropagationEndpoint(start.Beat, end.Beat, sp)
			return timebase.Position{Beat: endBeat, Measure: d.converter.BeatsToMeasures(endBeat)}
		}
		sp = newSP
		if r.End.Beat >= end.Beat {
			return end
		}
		start = r.End
		i++
	}

	deduction := float64(end.Measure-start.Measure) / MeasuresPerBar
	if sp < deduction {
		endMeas := start.Measure + timebase.Measure(sp*MeasuresPerBar)
		return timebase.Position{Beat: d.converter.MeasuresToBeats(endMeas), Measure: endMeas}
	}
	return end
}

// whammyPropagationEndpoint returns the beat whammy SP runs out at if
// all of [start, end) is whammied.
func (d *Data) whammyPropagationEndpoint(start, end timebase.Beat, sp float64) timebase.Beat {
	i := sort.Search(len(d.beatRates), func(i int) bool {
		return d.beatRates[i].Position >= start
	})
	if i > 0 {
		i--
	} else {
		subEnd := end
		if 0 != len(d.beatRates) && d.beatRates[0].Position < end {
			subEnd = d.beatRates[0].Position
		}
		sp += float64(subEnd-start) * defaultNetGainRate
		if sp > 1.0 {
			sp = 1.0
		}
		start = subEnd
	}
	for start < end {
		subEnd := end
		if i+1 < len(d.beatRates) && d.beatRates[i+1].Position < end {
			subEnd = d.beatRates[i+1].Position
		}
		gain := float64(subEnd-start) * d.beatRates[i].NetSPGainRate
		if sp+gain < 0.0 {
			return start + timebase.Beat(-sp/d.beatRates[i].NetSPGainRate)
		}
		sp += gain
		if sp > 1.0 {
			sp = 1.0
		}
		start = subEnd
		i++
	}
	return end
}
