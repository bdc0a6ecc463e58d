package score

import (
	"os"
	"testing"

	"git.lost.host/meutraa/spopt/internal/optimiser"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() {
		_ = os.Chdir(wd)
	})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	chdirTemp(t)

	s := DefaultCacher{}
	require.NoError(t, s.Init())
	defer s.Deinit()

	key := Key{
		Sum:         Sum([]byte("chart body")),
		Difficulty:  3,
		Instrument:  0,
		Squeeze:     1.0,
		EarlyWhammy: 1.0,
	}
	path := optimiser.Path{
		Activations: []optimiser.Activation{{ActStart: 2, ActEnd: 7}, {ActStart: 11, ActEnd: 19}},
		ScoreBoost:  1250,
	}
	s.Save(key, path)

	loaded, ok := s.Load(key)
	require.True(t, ok)
	require.Equal(t, path, loaded)
}

func TestLoadMissesOnDifferentParameters(t *testing.T) {
	chdirTemp(t)

	s := DefaultCacher{}
	require.NoError(t, s.Init())
	defer s.Deinit()

	key := Key{Sum: Sum([]byte("chart body")), Squeeze: 1.0}
	s.Save(key, optimiser.Path{ScoreBoost: 10})

	_, ok := s.Load(Key{Sum: Sum([]byte("chart body")), Squeeze: 0.5})
	require.False(t, ok)
	_, ok = s.Load(Key{Sum: Sum([]byte("other chart")), Squeeze: 1.0})
	require.False(t, ok)
}
