package points

import (
	"testing"

	"git.lost.host/meutraa/spopt/internal/chart"
	"git.lost.host/meutraa/spopt/internal/timebase"
	"github.com/stretchr/testify/require"
)

func phraseTrack() chart.NoteTrack {
	return chart.NewNoteTrack([]chart.Note{
		{Position: 0},
		{Position: 192},
		{Position: 384},
		{Position: 576},
		{Position: 768, Length: 192},
		{Position: 1152},
		{Position: 1344},
		{Position: 1536},
	}, []chart.StarPower{
		{Position: 0, Length: 50},
		{Position: 384, Length: 50},
		{Position: 768, Length: 400},
		{Position: 1344, Length: 50},
	}, nil)
}

func defaultConverter() *timebase.Converter {
	return timebase.NewConverter(chart.NewSyncTrack(nil, nil), 192)
}

func TestNotePoints(t *testing.T) {
	t.Parallel()
	set := NewGuitar(phraseTrack(), 192, defaultConverter(), 1.0)

	// 8 note points plus 28 sustain samples for the 192 tick hold
	require.Equal(t, 36, set.Len())
	require.Equal(t, 50, set.Points[0].Value)
	require.Equal(t, timebase.Beat(4.0), set.Points[4].Position.Beat)
	require.False(t, set.Points[4].IsHoldPoint)
	require.True(t, set.Points[5].IsHoldPoint)

	// Positions never decrease
	for i := 1; i < set.Len(); i++ {
		require.GreaterOrEqual(t,
			float64(set.Points[i].Position.Beat),
			float64(set.Points[i-1].Position.Beat))
	}
}

func TestChordValue(t *testing.T) {
	t.Parallel()
	track := chart.NewNoteTrack([]chart.Note{
		{Position: 0, Colour: chart.Green},
		{Position: 0, Colour: chart.Red},
		{Position: 0, Colour: chart.Yellow},
	}, nil, nil)
	set := NewGuitar(track, 192, defaultConverter(), 1.0)

	require.Equal(t, 1, set.Len())
	require.Equal(t, 150, set.Points[0].Value)
	require.Equal(t, 150, set.Points[0].BaseValue)
}

func TestSustainPoints(t *testing.T) {
	t.Parallel()
	set := NewGuitar(phraseTrack(), 192, defaultConverter(), 1.0)

	// The first sample of a sustain falls a tick gap after the note,
	// half a tick early: (768 + 7 - 0.5) / 192
	require.InDelta(t, 4.0338542, float64(set.Points[5].Position.Beat), 1e-6)
	require.Equal(t, 1, set.Points[5].Value)
	// The last sample is clamped to the sustain end
	require.InDelta(t, 4.9973958, float64(set.Points[32].Position.Beat), 1e-6)
	require.False(t, set.Points[33].IsHoldPoint)

	// Hold points have a zero width hit window
	require.Equal(t, set.Points[5].Position, set.Points[5].HitWindowStart)
	require.Equal(t, set.Points[5].Position, set.Points[5].HitWindowEnd)
}

func TestHitWindows(t *testing.T) {
	t.Parallel()
	set := NewGuitar(phraseTrack(), 192, defaultConverter(), 1.0)

	// 0.07 seconds at 120 BPM is 0.14 beats either side
	require.InDelta(t, -0.14, float64(set.Points[0].HitWindowStart.Beat), 1e-9)
	require.InDelta(t, 0.14, float64(set.Points[0].HitWindowEnd.Beat), 1e-9)

	half := NewGuitar(phraseTrack(), 192, defaultConverter(), 0.5)
	require.InDelta(t, -0.07, float64(half.Points[0].HitWindowStart.Beat), 1e-9)
	require.InDelta(t, 0.07, float64(half.Points[0].HitWindowEnd.Beat), 1e-9)
}

func TestSPGrantingNotes(t *testing.T) {
	t.Parallel()
	set := NewGuitar(phraseTrack(), 192, defaultConverter(), 1.0)

	// A phrase grants on its last note: the {768, 400} phrase covers
	// both the hold at 768 and the note at 1152
	granting := []int{}
	for i, p := range set.Points {
		if p.IsSPGrantingNote {
			granting = append(granting, i)
		}
	}
	require.Equal(t, []int{0, 2, 33, 34}, granting)
}

func TestIndexes(t *testing.T) {
	t.Parallel()
	set := NewGuitar(phraseTrack(), 192, defaultConverter(), 1.0)

	require.Equal(t, 0, set.NextNonHoldPoint(0))
	require.Equal(t, 33, set.NextNonHoldPoint(5))
	require.Equal(t, 0, set.NextSPGrantingNote(0))
	require.Equal(t, 2, set.NextSPGrantingNote(1))
	require.Equal(t, 33, set.NextSPGrantingNote(3))
	require.Equal(t, set.Len(), set.NextSPGrantingNote(35))
	require.Equal(t, set.Len(), set.NextNonHoldPoint(set.Len()))
}

func TestRangeScore(t *testing.T) {
	t.Parallel()
	set := NewGuitar(phraseTrack(), 192, defaultConverter(), 1.0)

	require.Equal(t, 0, set.RangeScore(3, 3))
	require.Equal(t, 250, set.RangeScore(0, 5))
	require.Equal(t, 428, set.RangeScore(0, set.Len()))
}

func TestSoloBoosts(t *testing.T) {
	t.Parallel()
	track := chart.NewNoteTrack([]chart.Note{
		{Position: 0},
		{Position: 192},
		{Position: 384},
		{Position: 576},
	}, nil, []chart.ChartEvent{
		{Position: 100, Name: "solo"},
		{Position: 500, Name: "soloend"},
	})
	set := NewGuitar(track, 192, defaultConverter(), 1.0)

	require.Len(t, set.SoloBoosts, 1)
	require.Equal(t, 200, set.SoloBoosts[0].Value)
	require.InDelta(t, 500.0/192.0, float64(set.SoloBoosts[0].Position.Beat), 1e-9)
}

func TestDrumsHaveNoSustains(t *testing.T) {
	t.Parallel()
	track := chart.NewNoteTrack([]chart.Note{
		{Position: 0, Length: 768},
		{Position: 960},
	}, nil, nil)
	set := NewDrums(track, 192, defaultConverter(), 1.0)

	require.Equal(t, 2, set.Len())
	for _, p := range set.Points {
		require.False(t, p.IsHoldPoint)
	}
}
