package config

import (
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	ChartPath  = kingpin.Arg("chart", "Chart file (.chart)").Required().ExistingFile()
	Difficulty = kingpin.Flag("difficulty", "Difficulty to optimise").
			Default("expert").Short('d').Enum("easy", "medium", "hard", "expert")
	Instrument = kingpin.Flag("instrument", "Instrument point rules").
			Default("guitar").Short('i').Enum("guitar", "ghl", "drums")
	squeezePercent = kingpin.Flag("squeeze", "Percent of the hit window usable").
			Default("100").Short('s').Uint()
	earlyWhammyPercent = kingpin.Flag("early-whammy", "Percent of the front hit window usable to whammy early").
				Default("100").Short('e').Uint()
	LazyWhammy = kingpin.Flag("lazy-whammy", "How long sustains are left unwhammied").
			Default("0ms").Short('l').Duration()
	SpeedPercent = kingpin.Flag("speed", "Playback speed percent, scales the tempo map").
			Default("100").Uint()
	NoCache = kingpin.Flag("no-cache", "Skip the path cache").Bool()
	Verbose = kingpin.Flag("verbose", "Log optimiser progress").Short('v').Bool()

	Squeeze     float64
	EarlyWhammy float64
)

func init() {
	kingpin.Version("0.1.0")
	kingpin.Parse()

	Squeeze = float64(*squeezePercent) / 100.0
	EarlyWhammy = float64(*earlyWhammyPercent) / 100.0
}
