// Package prefs holds the process-wide presentation preferences that share
// the durable store with the core data: preferred export language and
// preferred base map style.
package prefs

import (
	"fmt"

	"fieldmark/internal/kv"
)

const (
	languageKey = "settings/language"
	basemapKey  = "settings/basemap"

	// DefaultLanguage is used when no preference has been stored.
	DefaultLanguage = "en"
	// DefaultBasemap matches the renderer's default style name.
	DefaultBasemap = "osm"
)

// Prefs reads and writes the presentation preferences.
type Prefs struct {
	kv kv.Store
}

// New creates a Prefs over the given store.
func New(store kv.Store) *Prefs {
	return &Prefs{kv: store}
}

// Language returns the preferred export language tag.
func (p *Prefs) Language() (string, error) {
	v, ok, err := p.kv.Get(languageKey)
	if err != nil {
		return "", fmt.Errorf("reading language preference: %w", err)
	}
	if !ok || v == "" {
		return DefaultLanguage, nil
	}
	return v, nil
}

// SetLanguage stores the preferred export language tag.
func (p *Prefs) SetLanguage(tag string) error {
	if err := p.kv.Put(languageKey, tag); err != nil {
		return fmt.Errorf("storing language preference: %w", err)
	}
	return nil
}

// Basemap returns the preferred base map style name.
func (p *Prefs) Basemap() (string, error) {
	v, ok, err := p.kv.Get(basemapKey)
	if err != nil {
		return "", fmt.Errorf("reading basemap preference: %w", err)
	}
	if !ok || v == "" {
		return DefaultBasemap, nil
	}
	return v, nil
}

// SetBasemap stores the preferred base map style name.
func (p *Prefs) SetBasemap(style string) error {
	if err := p.kv.Put(basemapKey, style); err != nil {
		return fmt.Errorf("storing basemap preference: %w", err)
	}
	return nil
}
