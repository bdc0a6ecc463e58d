package timebase

import (
	"sort"

	"git.lost.host/meutraa/spopt/internal/chart"
)

const (
	// DefaultBeatRate is the beats per measure before the first time
	// signature, the pre-chart region is treated as 4/4.
	DefaultBeatRate = 4.0
	// DefaultBeatsPerSecond covers the region before the first tempo
	// anchor, 120 BPM.
	DefaultBeatsPerSecond = 2.0
)

type measureAnchor struct {
	measure Measure
	beat    Beat
}

type secondAnchor struct {
	beat   Beat
	second Second
}

// Converter translates between beat, measure and second positions under
// a piecewise-constant tempo and meter map.
type Converter struct {
	measureAnchors []measureAnchor
	lastBeatRate   float64

	secondAnchors      []secondAnchor
	lastBeatsPerSecond float64
}

func NewConverter(syncTrack chart.SyncTrack, resolution float64) *Converter {
	c := Converter{}

	lastTick := 0
	lastBeatRate := DefaultBeatRate
	lastMeasure := 0.0
	for _, ts := range syncTrack.TimeSigs {
		lastMeasure += float64(ts.Position-lastTick) / (resolution * lastBeatRate)
		beat := float64(ts.Position) / resolution
		c.measureAnchors = append(c.measureAnchors, measureAnchor{Measure(lastMeasure), Beat(beat)})
		lastBeatRate = float64(ts.Numerator) * DefaultBeatRate / float64(ts.Denominator)
		lastTick = ts.Position
	}
	c.lastBeatRate = lastBeatRate

	lastTick = 0
	lastSecond := 0.0
	lastBeatsPerSecond := DefaultBeatsPerSecond
	for _, bpm := range syncTrack.BPMs {
		// The ticks since the previous anchor ran at the tempo in force
		// before this change: seconds per tick is 1 / (resolution * bps)
		lastSecond += float64(bpm.Position-lastTick) / (resolution * lastBeatsPerSecond)
		beat := float64(bpm.Position) / resolution
		c.secondAnchors = append(c.secondAnchors, secondAnchor{Beat(beat), Second(lastSecond)})
		lastBeatsPerSecond = float64(bpm.MicroBPM) / 60000.0
		lastTick = bpm.Position
	}
	c.lastBeatsPerSecond = lastBeatsPerSecond

	return &c
}

func (c *Converter) BeatsToMeasures(beats Beat) Measure {
	i := sort.Search(len(c.measureAnchors), func(i int) bool {
		return c.measureAnchors[i].beat >= beats
	})
	if i == len(c.measureAnchors) {
		back := c.measureAnchors[i-1]
		return back.measure + (beats - back.beat).ToMeasure(c.lastBeatRate)
	}
	if i == 0 {
		front := c.measureAnchors[0]
		return front.measure - (front.beat - beats).ToMeasure(DefaultBeatRate)
	}
	prev, next := c.measureAnchors[i-1], c.measureAnchors[i]
	return prev.measure + Measure(float64(next.measure-prev.measure)*
		float64(beats-prev.beat)/float64(next.beat-prev.beat))
}

func (c *Converter) MeasuresToBeats(measures Measure) Beat {
	i := sort.Search(len(c.measureAnchors), func(i int) bool {
		return c.measureAnchors[i].measure >= measures
	})
	if i == len(c.measureAnchors) {
		back := c.measureAnchors[i-1]
		return back.beat + (measures - back.measure).ToBeat(c.lastBeatRate)
	}
	if i == 0 {
		front := c.measureAnchors[0]
		return front.beat - (front.measure - measures).ToBeat(DefaultBeatRate)
	}
	prev, next := c.measureAnchors[i-1], c.measureAnchors[i]
	return prev.beat + Beat(float64(next.beat-prev.beat)*
		float64(measures-prev.measure)/float64(next.measure-prev.measure))
}

func (c *Converter) BeatsToSeconds(beats Beat) Second {
	i := sort.Search(len(c.secondAnchors), func(i int) bool {
		return c.secondAnchors[i].beat >= beats
	})
	if i == len(c.secondAnchors) {
		back := c.secondAnchors[i-1]
		return back.second + Second(float64(beats-back.beat)/c.lastBeatsPerSecond)
	}
	if i == 0 {
		front := c.secondAnchors[0]
		return front.second - Second(float64(front.beat-beats)/DefaultBeatsPerSecond)
	}
	prev, next := c.secondAnchors[i-1], c.secondAnchors[i]
	return prev.second + Second(float64(next.second-prev.second)*
		float64(beats-prev.beat)/float64(next.beat-prev.beat))
}

func (c *Converter) SecondsToBeats(seconds Second) Beat {
	i := sort.Search(len(c.secondAnchors), func(i int) bool {
		return c.secondAnchors[i].second >= seconds
	})
	if i == len(c.secondAnchors) {
		back := c.secondAnchors[i-1]
		return back.beat + Beat(float64(seconds-back.second)*c.lastBeatsPerSecond)
	}
	if i == 0 {
		front := c.secondAnchors[0]
		return front.beat - Beat(float64(front.second-seconds)*DefaultBeatsPerSecond)
	}
	prev, next := c.secondAnchors[i-1], c.secondAnchors[i]
	return prev.beat + Beat(float64(next.beat-prev.beat)*
		float64(seconds-prev.second)/float64(next.second-prev.second))
}

// Position materialises the measure for a beat.
func (c *Converter) Position(beat Beat) Position {
	return Position{Beat: beat, Measure: c.BeatsToMeasures(beat)}
}
