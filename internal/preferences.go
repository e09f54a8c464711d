package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

const ConfigFileName = "config.json"

const (
	DefaultLanguage = "kr"
	DefaultOpacity  = 100
	DefaultWidth    = 250
	DefaultHeight   = 300
	DefaultX        = 300
	DefaultY        = 300
)

type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type WindowPosition struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Preferences is everything persisted between sessions. It is always saved
// whole.
type Preferences struct {
	SelectedCoins  []Symbol       `json:"selected_coins"`
	Opacity        int            `json:"opacity"`
	AlwaysOnTop    int            `json:"always_on_top"`
	Language       string         `json:"language"`
	WindowSize     WindowSize     `json:"window_size"`
	WindowPosition WindowPosition `json:"window_position"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		SelectedCoins:  []Symbol{},
		Opacity:        DefaultOpacity,
		AlwaysOnTop:    0,
		Language:       DefaultLanguage,
		WindowSize:     WindowSize{Width: DefaultWidth, Height: DefaultHeight},
		WindowPosition: WindowPosition{X: DefaultX, Y: DefaultY},
	}
}

func (p Preferences) Pinned() bool { return p.AlwaysOnTop != 0 }

// Clone deep-copies the selection so callers can mutate freely.
func (p Preferences) Clone() Preferences {
	p.SelectedCoins = append([]Symbol{}, p.SelectedCoins...)
	return p
}

// normalize repairs values a hand-edited file may carry.
func (p *Preferences) normalize() {
	d := DefaultPreferences()
	if p.SelectedCoins == nil {
		p.SelectedCoins = []Symbol{}
	}
	seen := make(map[Symbol]bool, len(p.SelectedCoins))
	coins := p.SelectedCoins[:0]
	for _, s := range p.SelectedCoins {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		coins = append(coins, s)
	}
	p.SelectedCoins = coins

	p.Opacity = min(max(p.Opacity, 0), 100)
	if p.AlwaysOnTop != 0 {
		p.AlwaysOnTop = 1
	}
	if p.Language == "" {
		p.Language = d.Language
	}
	if p.WindowSize.Width <= 0 || p.WindowSize.Height <= 0 {
		p.WindowSize = d.WindowSize
	}
}

// PreferenceStore reads and writes the preferences JSON file.
type PreferenceStore struct {
	path string
	log  logrus.FieldLogger
}

func NewPreferenceStore(path string, log logrus.FieldLogger) *PreferenceStore {
	return &PreferenceStore{path: path, log: log}
}

// Load never fails. An unreadable or syntactically broken file yields
// defaults; a key that is absent or holds a value of the wrong type keeps
// its default while the other keys are still read.
func (s *PreferenceStore) Load() Preferences {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.log.WithField("path", s.path).Info("No preferences file, using defaults")
		} else {
			s.log.WithError(err).Warn("Could not read preferences, using defaults")
		}
		return DefaultPreferences()
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil {
		s.log.WithError(err).Warn("Could not parse preferences, using defaults")
		return DefaultPreferences()
	}

	p := DefaultPreferences()
	fields := map[string]func(json.RawMessage) error{
		"selected_coins":  func(r json.RawMessage) error { return decodeOver(r, &p.SelectedCoins) },
		"opacity":         func(r json.RawMessage) error { return decodeOver(r, &p.Opacity) },
		"always_on_top":   func(r json.RawMessage) error { return decodeOver(r, &p.AlwaysOnTop) },
		"language":        func(r json.RawMessage) error { return decodeOver(r, &p.Language) },
		"window_size":     func(r json.RawMessage) error { return decodeOver(r, &p.WindowSize) },
		"window_position": func(r json.RawMessage) error { return decodeOver(r, &p.WindowPosition) },
	}
	for key, raw := range doc {
		decode, ok := fields[key]
		if !ok {
			continue
		}
		if err := decode(raw); err != nil {
			s.log.WithField("key", key).WithError(err).Warn("Invalid preference value, using default")
		}
	}
	p.normalize()
	s.log.WithField("path", s.path).Info("Preferences loaded")
	return p
}

// decodeOver decodes raw into a copy of *dst and only replaces *dst when the
// whole value decoded, so nested defaults survive a partial object.
func decodeOver[T any](raw json.RawMessage, dst *T) error {
	v := *dst
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*dst = v
	return nil
}

// Save overwrites the file with every field of p.
func (s *PreferenceStore) Save(p Preferences) error {
	if p.SelectedCoins == nil {
		p.SelectedCoins = []Symbol{}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace preferences: %w", err)
	}
	return nil
}
