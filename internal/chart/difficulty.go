package chart

type Difficulty int

const (
	Easy Difficulty = iota
	Medium
	Hard
	Expert
)

var DifficultyMap = map[string]Difficulty{
	"easy":   Easy,
	"medium": Medium,
	"hard":   Hard,
	"expert": Expert,
}

// Instrument selects the point rules used to build a point set.
type Instrument int

const (
	Guitar Instrument = iota
	GHL
	Drums
)

var InstrumentMap = map[string]Instrument{
	"guitar": Guitar,
	"ghl":    GHL,
	"drums":  Drums,
}

// NoteColour is a five fret guitar colour.
type NoteColour int

const (
	Green NoteColour = iota
	Red
	Yellow
	Blue
	Orange
	Open
)
