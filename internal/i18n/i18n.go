// Package i18n resolves display labels and descriptions by key for a
// preferred language. It is the boundary to the excluded string-lookup
// collaborator: components reference keys, never literal labels.
package i18n

import "golang.org/x/text/language"

// Catalog resolves message keys for one language.
type Catalog struct {
	tag      language.Tag
	messages map[string]string
}

var english = &Catalog{
	tag: language.English,
	messages: map[string]string{
		"category.exploitation.label": "Exploitation",
		"category.exploitation.desc":  "Timber exploitation point",
		"category.clearing.label":     "Clearing",
		"category.clearing.desc":      "Clearing / skid trail point",
		"category.boundary.label":     "Boundary",
		"category.boundary.desc":      "Parcel boundary point",
		"export.title":                "Field data collection",
		"export.description":          "Points collected in the field",
	},
}

var french = &Catalog{
	tag: language.French,
	messages: map[string]string{
		"category.exploitation.label": "Exploitation",
		"category.exploitation.desc":  "Point d'exploitation forestière",
		"category.clearing.label":     "Débardage",
		"category.clearing.desc":      "Point de débardage / piste",
		"category.boundary.label":     "Limite",
		"category.boundary.desc":      "Point de limite de parcelle",
		"export.title":                "Relevé de terrain",
		"export.description":          "Points relevés sur le terrain",
	},
}

var catalogs = []*Catalog{english, french}

var matcher = language.NewMatcher([]language.Tag{english.tag, french.tag})

// Match returns the catalog best matching the preferred language tag
// (e.g. "fr", "fr-CA", "en-US"). Unknown or empty preferences fall back to
// English.
func Match(preferred string) *Catalog {
	if preferred == "" {
		return english
	}
	_, idx := language.MatchStrings(matcher, preferred)
	return catalogs[idx]
}

// Tag returns the catalog's BCP 47 language tag.
func (c *Catalog) Tag() string { return c.tag.String() }

// Get resolves a message key. Missing keys fall back to English, then to
// the key itself so a missing translation is visible rather than silent.
func (c *Catalog) Get(key string) string {
	if msg, ok := c.messages[key]; ok {
		return msg
	}
	if msg, ok := english.messages[key]; ok {
		return msg
	}
	return key
}
