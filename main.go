package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"git.lost.host/meutraa/spopt/internal/chart"
	"git.lost.host/meutraa/spopt/internal/config"
	"git.lost.host/meutraa/spopt/internal/logger"
	"git.lost.host/meutraa/spopt/internal/optimiser"
	"git.lost.host/meutraa/spopt/internal/score"
	"git.lost.host/meutraa/spopt/internal/timebase"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

func main() {
	if err := run(); nil != err {
		log.Fatalln(err)
	}
}

func cacheKey(data []byte) score.Key {
	return score.Key{
		Sum:         score.Sum(data),
		Difficulty:  int(chart.DifficultyMap[*config.Difficulty]),
		Instrument:  int(chart.InstrumentMap[*config.Instrument]),
		Squeeze:     config.Squeeze,
		EarlyWhammy: config.EarlyWhammy,
		LazyWhammy:  config.LazyWhammy.Seconds(),
		Speed:       int(*config.SpeedPercent),
	}
}

func run() error {
	// Ensure our Default implementations are used as interfaces
	var psr chart.Parser = &chart.DefaultParser{}
	var cch score.Cacher = &score.DefaultCacher{}

	lg := logger.GetProjectLogger()
	if !*config.Verbose {
		lg.SetLevel(logrus.WarnLevel)
	}

	data, err := os.ReadFile(*config.ChartPath)
	if nil != err {
		return fmt.Errorf("unable to read chart: %w", err)
	}

	c, err := psr.Parse(*config.ChartPath)
	if nil != err {
		return fmt.Errorf("unable to parse chart: %w", err)
	}

	difficulty := chart.DifficultyMap[*config.Difficulty]
	track, ok := c.NoteTracks[difficulty]
	if !ok {
		return fmt.Errorf("chart has no %v track", *config.Difficulty)
	}
	lg.WithFields(logrus.Fields{
		"notes":   len(track.Notes),
		"phrases": len(track.SPPhrases),
	}).Info("track selected")

	// The core never sees the speed setting, the tempo map is scaled
	// up front instead.
	syncTrack := c.SyncTrack
	if *config.SpeedPercent != 100 {
		scaled := make([]chart.BPM, len(syncTrack.BPMs))
		for i, bpm := range syncTrack.BPMs {
			scaled[i] = chart.BPM{
				Position: bpm.Position,
				MicroBPM: bpm.MicroBPM * int(*config.SpeedPercent) / 100,
			}
		}
		syncTrack.BPMs = scaled
	}

	key := cacheKey(data)
	cached, cacheReady := false, false
	var path optimiser.Path
	if !*config.NoCache {
		if err := cch.Init(); nil != err {
			lg.Warnln("unable to open path cache", err)
		} else {
			cacheReady = true
			defer cch.Deinit()
			path, cached = cch.Load(key)
			if cached {
				lg.Info("loaded path from cache")
			}
		}
	}

	song := optimiser.NewProcessedSong(
		track,
		c.Header.Resolution,
		syncTrack,
		chart.InstrumentMap[*config.Instrument],
		config.EarlyWhammy,
		config.Squeeze,
		timebase.Second(config.LazyWhammy.Seconds()),
	)
	opt := optimiser.NewOptimiser(song)

	if !cached {
		started := time.Now()
		path = opt.OptimalPath()
		lg.WithFields(logrus.Fields{
			"activations": len(path.Activations),
			"boost":       path.ScoreBoost,
			"duration":    time.Since(started),
		}).Info("optimal path found")
		if cacheReady {
			cch.Save(key, path)
		}
	}

	summary := opt.PathSummary(path)
	if columns, _, err := term.GetSize(int(os.Stdout.Fd())); nil == err && columns > 0 {
		if columns > 72 {
			columns = 72
		}
		rule := strings.Repeat("-", columns)
		fmt.Println(rule)
		fmt.Println(summary)
		fmt.Println(rule)
	} else {
		fmt.Println(summary)
	}
	return nil
}
