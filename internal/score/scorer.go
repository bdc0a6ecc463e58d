package score

import (
	"git.lost.host/meutraa/spopt/internal/optimiser"
)

// Key identifies one optimisation run: the chart content and every
// parameter the result depends on.
type Key struct {
	Sum         string
	Difficulty  int
	Instrument  int
	Squeeze     float64
	EarlyWhammy float64
	LazyWhammy  float64
	Speed       int
}

// Cacher persists computed paths so a rerun with the same chart and
// parameters skips the search.
type Cacher interface {
	Init() error
	Deinit()

	// Save the computed path for this run
	Save(key Key, path optimiser.Path)

	// Load a previously computed path for this run
	Load(key Key) (optimiser.Path, bool)
}
