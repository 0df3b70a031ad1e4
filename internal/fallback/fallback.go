// Package fallback serves the bundled prospect dataset used whenever the
// backend cannot produce a collection.
package fallback

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/preston-bernstein/prospect-scout/internal/domain/players"
	"github.com/preston-bernstein/prospect-scout/internal/normalize"
)

//go:embed players.yaml
var bundled []byte

type document struct {
	Players []map[string]any `yaml:"players"`
}

// Dataset is an immutable, ordered set of fallback players.
type Dataset struct {
	players []players.Player
	byID    map[string]int
}

// Parse decodes a dataset document. Every entry goes through the same
// normalizer as backend profiles, so ids are name slugs and missing fields
// get the usual defaults. Entries with neither a name nor an id are rejected.
func Parse(raw []byte) (*Dataset, error) {
	var doc document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("fallback: decode dataset: %w", err)
	}
	if len(doc.Players) == 0 {
		return nil, errors.New("fallback: dataset has no players")
	}

	ds := &Dataset{
		players: make([]players.Player, 0, len(doc.Players)),
		byID:    make(map[string]int, len(doc.Players)),
	}
	for i, fields := range doc.Players {
		p := normalize.Normalize(normalize.ProfileRecord{Fields: fields})
		if p.ID == "" {
			return nil, fmt.Errorf("fallback: player %d has no id or name", i)
		}
		if _, dup := ds.byID[p.ID]; dup {
			return nil, fmt.Errorf("fallback: duplicate player id %q", p.ID)
		}
		ds.byID[p.ID] = len(ds.players)
		ds.players = append(ds.players, p)
	}
	return ds, nil
}

var (
	loadOnce sync.Once
	loaded   *Dataset
	loadErr  error
)

// Load parses the embedded dataset once per process.
func Load() (*Dataset, error) {
	loadOnce.Do(func() {
		loaded, loadErr = Parse(bundled)
	})
	return loaded, loadErr
}

// MustLoad panics if the embedded dataset is broken; it ships with the binary.
func MustLoad() *Dataset {
	ds, err := Load()
	if err != nil {
		panic(err)
	}
	return ds
}

// Players returns a copy of the dataset in bundled order.
func (d *Dataset) Players() []players.Player {
	if d == nil {
		return nil
	}
	out := make([]players.Player, len(d.players))
	copy(out, d.players)
	return out
}

// Player looks up a fallback entry by id.
func (d *Dataset) Player(id string) (players.Player, bool) {
	if d == nil {
		return players.Player{}, false
	}
	idx, ok := d.byID[id]
	if !ok {
		return players.Player{}, false
	}
	return d.players[idx], true
}

// Len returns the number of bundled players.
func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.players)
}
