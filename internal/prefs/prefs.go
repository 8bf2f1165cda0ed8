// Package prefs persists the small set of user choices the launcher
// remembers between runs. The document is a flat TOML table rewritten whole
// on every change; concurrent external writers are not supported.
package prefs

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/prelaunch/internal/fsutil"
	"github.com/conn-castle/prelaunch/internal/messages"
)

// Preferences is the persisted document.
type Preferences struct {
	RememberedRuntime string `toml:"remembered_runtime,omitempty"`
	RulesAcknowledged bool   `toml:"rules_acknowledged,omitempty"`
}

// Store reads and writes the preference document at Path.
type Store struct {
	Path string
}

// NewStore returns a Store for path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load returns the stored preferences. A missing document yields the zero
// value. Unknown keys are ignored so older launchers can read newer files.
func (s *Store) Load() (Preferences, error) {
	var p Preferences
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return p, nil
	}
	if err != nil {
		return p, fmt.Errorf(messages.PrefsReadFmt, s.Path, err)
	}
	if err := toml.Unmarshal(data, &p); err != nil {
		return Preferences{}, fmt.Errorf(messages.PrefsDecodeFmt, s.Path, err)
	}
	return p, nil
}

// Save replaces the document with p.
func (s *Store) Save(p Preferences) error {
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf(messages.PrefsEncodeFmt, err)
	}
	if err := fsutil.WriteFileAtomic(s.Path, data, 0o600); err != nil {
		return fmt.Errorf(messages.PrefsWriteFmt, s.Path, err)
	}
	return nil
}

// Update loads the document, applies fn, and saves the result.
func (s *Store) Update(fn func(*Preferences)) error {
	p, err := s.Load()
	if err != nil {
		return err
	}
	fn(&p)
	return s.Save(p)
}

// RememberRuntime records path as the preferred runtime.
func (s *Store) RememberRuntime(path string) error {
	return s.Update(func(p *Preferences) { p.RememberedRuntime = path })
}

// AcknowledgeRules records that the regional rules were accepted.
func (s *Store) AcknowledgeRules() error {
	return s.Update(func(p *Preferences) { p.RulesAcknowledged = true })
}

// Forget removes the document. A missing document is not an error.
func (s *Store) Forget() error {
	if err := os.Remove(s.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf(messages.PrefsRemoveFmt, s.Path, err)
	}
	return nil
}
