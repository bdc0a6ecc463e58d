package chart

import (
	"errors"

	"golang.org/x/exp/slices"
)

// SongHeader is the [Song] metadata the optimiser cares about.
type SongHeader struct {
	Offset     float64
	Resolution float64
}

func NewSongHeader(offset, resolution float64) (SongHeader, error) {
	if resolution <= 0 {
		return SongHeader{}, errors.New("songs with resolution <= 0 are invalid")
	}
	return SongHeader{Offset: offset, Resolution: resolution}, nil
}

// TimeSignature at a tick. Denominator is already expanded from the
// chart-file power-of-two convention.
type TimeSignature struct {
	Position    int
	Numerator   int
	Denominator int
}

// BPM at a tick, in micro-BPM (BPM x 1000).
type BPM struct {
	Position int
	MicroBPM int
}

// SyncTrack holds the tempo and meter map for a chart.
type SyncTrack struct {
	TimeSigs []TimeSignature
	BPMs     []BPM
}

const (
	defaultMicroBPM = 120000
)

// NewSyncTrack fills in the chart-file defaults: a missing meter map is
// 4/4 from tick 0 and a missing tempo map is 120 BPM from tick 0.
func NewSyncTrack(timeSigs []TimeSignature, bpms []BPM) SyncTrack {
	if 0 == len(timeSigs) || timeSigs[0].Position != 0 {
		timeSigs = append([]TimeSignature{{0, 4, 4}}, timeSigs...)
	}
	if 0 == len(bpms) || bpms[0].Position != 0 {
		bpms = append([]BPM{{0, defaultMicroBPM}}, bpms...)
	}
	return SyncTrack{TimeSigs: timeSigs, BPMs: bpms}
}

// StarPower is a phrase span; the last note starting inside it grants SP
// on hit.
type StarPower struct {
	Position int
	Length   int
}

func (p StarPower) Contains(position int) bool {
	if position < p.Position {
		return false
	}
	return position < p.Position+p.Length
}

// ChartEvent is a track-local E event, e.g. solo and soloend.
type ChartEvent struct {
	Position int
	Name     string
}

// Section is a global [Events] section marker.
type Section struct {
	Position int
	Name     string
}

// Note is a single fret press, possibly sustained.
type Note struct {
	Position int
	Length   int
	Colour   NoteColour
	IsForced bool
	IsTap    bool
}

// NoteTrack is one difficulty's notes plus its SP phrases and events.
type NoteTrack struct {
	Notes     []Note
	SPPhrases []StarPower
	Events    []ChartEvent
}

// NewNoteTrack sorts the notes by (position, colour) and drops
// duplicates, matching the in-game handling of doubled chart entries.
func NewNoteTrack(notes []Note, spPhrases []StarPower, events []ChartEvent) NoteTrack {
	slices.SortStableFunc(notes, func(a, b Note) bool {
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.Colour < b.Colour
	})

	deduped := make([]Note, 0, len(notes))
	for i, n := range notes {
		if i > 0 && n.Position == notes[i-1].Position && n.Colour == notes[i-1].Colour {
			continue
		}
		deduped = append(deduped, n)
	}

	return NoteTrack{Notes: deduped, SPPhrases: spPhrases, Events: events}
}

// Chart is a fully parsed chart file.
type Chart struct {
	Header     SongHeader
	SyncTrack  SyncTrack
	Sections   []Section
	NoteTracks map[Difficulty]NoteTrack
}
