// Package settings is a small typed key/value store for environment
// settings, loadable from TOML and optionally kept in sync with a file on
// disk.
//
// Values are stored as decoded; consumers validate them and ignore what
// they cannot use.
package settings

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"sort"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/gogpu/vecscene/engine"
	"github.com/gogpu/vecscene/internal/logging"
)

// Environment keys.
const (
	KeyBackground = "background"  // hex color string
	KeyLighting   = "lighting"    // bool
	KeyFog        = "fog"         // bool
	KeyFogDensity = "fog_density" // number
	KeyTerrain    = "terrain"     // engine.TerrainOptions
)

// EnvironmentKeys lists the keys a renderer listens to.
var EnvironmentKeys = []string{KeyBackground, KeyLighting, KeyFog, KeyFogDensity, KeyTerrain}

// Listener is called after a key changes.
type Listener func(key string, value any)

// Store holds settings and notifies listeners of changes. It is safe for
// concurrent use; listeners run on the goroutine that made the change,
// outside the store lock.
type Store struct {
	mu        sync.Mutex
	values    map[string]any
	listeners map[int]Listener
	nextID    int
	logger    *slog.Logger
}

// NewStore creates an empty store. A nil logger means silent.
func NewStore(logger *slog.Logger) *Store {
	return &Store{
		values:    make(map[string]any),
		listeners: make(map[int]Listener),
		logger:    logging.Or(logger),
	}
}

// Get returns the value of key.
func (s *Store) Get(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Keys returns the set keys, sorted.
func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set stores value under key and notifies listeners. Setting an equal value
// notifies nobody.
func (s *Store) Set(key string, value any) {
	s.mu.Lock()
	if old, ok := s.values[key]; ok && reflect.DeepEqual(old, value) {
		s.mu.Unlock()
		return
	}
	s.values[key] = value
	fns := s.listenersLocked()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(key, value)
	}
}

// Subscribe registers fn and returns a function that unregisters it.
func (s *Store) Subscribe(fn Listener) (cancel func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) listenersLocked() []Listener {
	ids := make([]int, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]Listener, len(ids))
	for i, id := range ids {
		fns[i] = s.listeners[id]
	}
	return fns
}

// LoadTOML applies every top-level key of a TOML document. A terrain table
// is decoded into engine.TerrainOptions; one that does not decode is stored
// as is.
func (s *Store) LoadTOML(data []byte) error {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := raw[k]
		if k == KeyTerrain {
			v = decodeTerrain(v)
		}
		s.Set(k, v)
	}
	return nil
}

// LoadFile reads and applies a TOML file.
func (s *Store) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	return s.LoadTOML(data)
}

func decodeTerrain(v any) any {
	tbl, ok := v.(map[string]any)
	if !ok {
		return v
	}
	data, err := toml.Marshal(tbl)
	if err != nil {
		return v
	}
	var opts engine.TerrainOptions
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&opts); err != nil {
		return v
	}
	return opts
}

// MarshalTOML encodes the current values.
func (s *Store) MarshalTOML() ([]byte, error) {
	s.mu.Lock()
	values := make(map[string]any, len(s.values))
	for k, v := range s.values {
		values[k] = v
	}
	s.mu.Unlock()
	return toml.Marshal(values)
}
