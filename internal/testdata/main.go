package testdata

import (
	"git.lost.host/meutraa/spopt/internal/chart"
)

// GetChart parses the canned chart below, a short expert track with a
// tempo change, three SP phrases, a whammyable sustain and a solo.
func GetChart() (*chart.Chart, error) {
	p := chart.DefaultParser{}
	return p.ParseText(data)
}

const data = `[Song]
{
  Name = "Fixture"
  Offset = 0
  Resolution = 192
}
[SyncTrack]
{
  0 = TS 4
  0 = B 120000
  3072 = B 150000
  6144 = TS 3 2
}
[Events]
{
  768 = E "section Verse 1"
}
[ExpertSingle]
{
  0 = N 0 0
  0 = S 2 100
  192 = N 1 0
  384 = N 2 0
  576 = N 3 0
  768 = N 0 384
  768 = S 2 500
  1536 = N 2 0
  1536 = N 3 0
  1728 = E solo
  1920 = N 4 0
  2112 = N 0 0
  2304 = E soloend
  2304 = N 1 0
  3072 = N 2 0
  3072 = S 2 100
  3264 = N 3 0
  4608 = N 0 0
  6144 = N 4 0
}
`
