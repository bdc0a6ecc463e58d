package sp

const (
	// GainRate is the SP gained by whammying for one beat in 4/4.
	GainRate = 1.0 / 30.0
	// MeasuresPerBar is how many measures of drain one full SP bar buys.
	MeasuresPerBar = 8.0
	// PhraseAmount is the SP granted by hitting a full phrase.
	PhraseAmount = 0.25
	// MinimumAmount is the fill level needed to activate.
	MinimumAmount = 0.5

	defaultNetGainRate = 1.0 / 480.0
)

// SpBar is the minimum and maximum SP possible at a given time.
// Invariant: 0 <= Min <= Max <= 1.
type SpBar struct {
	Min float64
	Max float64
}

func (b *SpBar) AddPhrase() {
	b.Min += PhraseAmount
	b.Max += PhraseAmount
	if b.Min > 1.0 {
		b.Min = 1.0
	}
	if b.Max > 1.0 {
		b.Max = 1.0
	}
}

func (b SpBar) FullEnoughToActivate() bool {
	return b.Max >= MinimumAmount
}
