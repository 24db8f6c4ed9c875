// Package catalog loads the read-only reference data an evaluation run
// iterates over: the song catalog and the listener audiograms.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/auralab/stemscore/internal/domain/types"
)

// Song splits recognized in the catalog.
const (
	SplitTrain = "train"
	SplitTest  = "test"
)

// Song is one track in the benchmark catalog.
// Field tags mirror the upstream catalog schema.
type Song struct {
	Name  string `json:"Track Name"`
	Split string `json:"Split"`
}

// Listener holds one listener's audiometric data. The center frequencies
// are shared between both ears and align index-wise with the level slices.
type Listener struct {
	ID          string    `json:"-"`
	Frequencies []float64 `json:"audiogram_cfs"`
	LevelsLeft  []float64 `json:"audiogram_levels_l"`
	LevelsRight []float64 `json:"audiogram_levels_r"`
}

// Levels returns the hearing-loss levels for the ear matching the channel.
func (l Listener) Levels(ch types.Channel) []float64 {
	if ch == types.Right {
		return l.LevelsRight
	}
	return l.LevelsLeft
}

// Listeners is a listener catalog that preserves the key order of the
// source file. Enumeration order is part of the benchmark contract, so a
// plain Go map would not do.
type Listeners struct {
	order []string
	byID  map[string]Listener
}

// IDs returns listener identifiers in catalog order.
func (l *Listeners) IDs() []string {
	return l.order
}

// Get returns the listener with the given id.
func (l *Listeners) Get(id string) (Listener, bool) {
	v, ok := l.byID[id]
	return v, ok
}

// Len returns the number of listeners in the catalog.
func (l *Listeners) Len() int {
	return len(l.order)
}

// LoadSongs reads the song catalog from a JSON array, preserving order.
func LoadSongs(path string) ([]Song, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingCatalog, path, err)
	}

	var songs []Song
	if err := json.Unmarshal(data, &songs); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCatalog, path, err)
	}

	for _, s := range songs {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: %s: song with empty Track Name", ErrMalformedCatalog, path)
		}
		if s.Split != SplitTrain && s.Split != SplitTest {
			return nil, fmt.Errorf("%w: %s: song %q has unknown split %q", ErrMalformedCatalog, path, s.Name, s.Split)
		}
	}
	return songs, nil
}

// LoadListeners reads the listener catalog from a JSON object keyed by
// listener id. Key order is recovered token by token so that pair
// enumeration matches the file.
func LoadListeners(path string) (*Listeners, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMissingCatalog, path, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	dec := json.NewDecoder(f)

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCatalog, path, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("%w: %s: expected top-level object", ErrMalformedCatalog, path)
	}

	out := &Listeners{byID: make(map[string]Listener)}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedCatalog, path, err)
		}
		id, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s: non-string listener key", ErrMalformedCatalog, path)
		}

		var listener Listener
		if err := dec.Decode(&listener); err != nil {
			return nil, fmt.Errorf("%w: %s: listener %q: %v", ErrMalformedCatalog, path, id, err)
		}
		listener.ID = id
		if err := validateListener(listener); err != nil {
			return nil, fmt.Errorf("%w: %s: listener %q: %v", ErrMalformedCatalog, path, id, err)
		}

		if _, seen := out.byID[id]; !seen {
			out.order = append(out.order, id)
		}
		out.byID[id] = listener
	}

	return out, nil
}

// validateListener enforces the audiogram shape invariants: level slices
// align with the frequency slice, frequencies ascending and unique.
func validateListener(l Listener) error {
	if len(l.Frequencies) == 0 {
		return fmt.Errorf("empty audiogram frequency list")
	}
	if len(l.LevelsLeft) != len(l.Frequencies) || len(l.LevelsRight) != len(l.Frequencies) {
		return fmt.Errorf("level count %d/%d does not match %d frequencies",
			len(l.LevelsLeft), len(l.LevelsRight), len(l.Frequencies))
	}
	for i := 1; i < len(l.Frequencies); i++ {
		if l.Frequencies[i] <= l.Frequencies[i-1] {
			return fmt.Errorf("frequencies not strictly ascending at index %d", i)
		}
	}
	return nil
}
