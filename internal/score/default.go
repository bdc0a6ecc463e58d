package score

import (
	"crypto/sha256"
	"database/sql"
	"encoding/base64"
	"encoding/json"

	"git.lost.host/meutraa/spopt/internal/logger"
	"git.lost.host/meutraa/spopt/internal/optimiser"
	_ "github.com/mattn/go-sqlite3"
)

type DefaultCacher struct {
	db *sql.DB
}

// ActivationsCompact is the stored form of a path, start and end point
// indexes split into parallel lists.
type ActivationsCompact struct {
	Starts []int
	Ends   []int
}

func compactActivations(acts []optimiser.Activation) ActivationsCompact {
	c := ActivationsCompact{
		Starts: make([]int, 0, len(acts)),
		Ends:   make([]int, 0, len(acts)),
	}
	for _, a := range acts {
		c.Starts = append(c.Starts, a.ActStart)
		c.Ends = append(c.Ends, a.ActEnd)
	}
	return c
}

func uncompactActivations(c ActivationsCompact) []optimiser.Activation {
	acts := []optimiser.Activation{}
	for i := range c.Starts {
		acts = append(acts, optimiser.Activation{ActStart: c.Starts[i], ActEnd: c.Ends[i]})
	}
	return acts
}

// Sum hashes chart content for use as a cache key.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func (s *DefaultCacher) Init() error {
	db, err := sql.Open("sqlite3", "./paths.db")
	if nil != err {
		return err
	}

	initStatement := `
	create table if not exists paths
	  (
		  id integer not null primary key,
		  sum text,
		  difficulty integer,
		  instrument integer,
		  squeeze real,
		  early_whammy real,
		  lazy_whammy real,
		  speed integer,
		  boost integer,
		  activations bytearray
	  );
	`
	_, err = db.Exec(initStatement)
	if nil != err {
		return err
	}

	s.db = db
	return nil
}

func (s *DefaultCacher) Deinit() {
	if nil != s.db {
		s.db.Close()
	}
}

func (s *DefaultCacher) Save(key Key, path optimiser.Path) {
	log := logger.GetProjectLogger()
	data, err := json.Marshal(compactActivations(path.Activations))
	if nil != err {
		log.Warnln("unable to marshal activations", err)
		return
	}
	_, err = s.db.Exec(
		`insert into paths(sum, difficulty, instrument, squeeze, early_whammy, lazy_whammy, speed, boost, activations)
		 values(?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		key.Sum, key.Difficulty, key.Instrument, key.Squeeze, key.EarlyWhammy,
		key.LazyWhammy, key.Speed, path.ScoreBoost, data)
	if nil != err {
		log.Warnln("unable to save path", err)
		return
	}
}

func (s *DefaultCacher) Load(key Key) (optimiser.Path, bool) {
	log := logger.GetProjectLogger()
	row := s.db.QueryRow(
		`select boost, activations from paths
		 where sum = ? and difficulty = ? and instrument = ?
		 and squeeze = ? and early_whammy = ? and lazy_whammy = ? and speed = ?`,
		key.Sum, key.Difficulty, key.Instrument, key.Squeeze, key.EarlyWhammy,
		key.LazyWhammy, key.Speed)

	var boost int
	var data []byte
	if err := row.Scan(&boost, &data); nil != err {
		if err != sql.ErrNoRows {
			log.Warnln("unable to load path", err)
		}
		return optimiser.Path{}, false
	}

	var acts ActivationsCompact
	if err := json.Unmarshal(data, &acts); nil != err {
		log.Warnln("unable to unmarshal activation history", err)
		return optimiser.Path{}, false
	}

	return optimiser.Path{Activations: uncompactActivations(acts), ScoreBoost: boost}, true
}
