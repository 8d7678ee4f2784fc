package deckbuilder

import (
	"fmt"
	"strings"
)

// Format describes deck construction limits for a game format.
type Format struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	DeckSize  int    `json:"deckSize"`
	MaxCopies int    `json:"maxCopies"`
}

// Built-in formats. IDs match the provider's legality keys.
var (
	FormatCommander   = Format{ID: "commander", Name: "Commander", DeckSize: 100, MaxCopies: 1}
	FormatBrawl       = Format{ID: "brawl", Name: "Brawl", DeckSize: 60, MaxCopies: 1}
	FormatOathbreaker = Format{ID: "oathbreaker", Name: "Oathbreaker", DeckSize: 60, MaxCopies: 1}
	FormatStandard    = Format{ID: "standard", Name: "Standard", DeckSize: 60, MaxCopies: 4}
	FormatModern      = Format{ID: "modern", Name: "Modern", DeckSize: 60, MaxCopies: 4}
)

var knownFormats = []Format{
	FormatCommander,
	FormatBrawl,
	FormatOathbreaker,
	FormatStandard,
	FormatModern,
}

// Formats returns the supported formats in display order.
func Formats() []Format {
	out := make([]Format, len(knownFormats))
	copy(out, knownFormats)
	return out
}

// LookupFormat returns the format with the given ID. An empty ID selects commander.
func LookupFormat(id string) (Format, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return FormatCommander, nil
	}
	for _, f := range knownFormats {
		if f.ID == id {
			return f, nil
		}
	}
	return Format{}, fmt.Errorf("%w: %q", ErrUnknownFormat, id)
}

// copyLimit returns how many copies of card the format allows.
// Basic lands are never limited.
func (f Format) copyLimit(card *CardRecord) int {
	if card.IsBasicLand() {
		return f.DeckSize
	}
	if f.MaxCopies <= 0 {
		return 1
	}
	return f.MaxCopies
}
