// Package deckbuilder synthesizes commander decks from a player's collection.
//
// The pipeline classifies the commander into candidate archetypes, scores the
// collection against each one, assembles a deck with a sized mana base, and
// rates the result. Every external lookup goes through a Provider.
package deckbuilder

import (
	"strings"
)

// Legality statuses as reported by the card data provider.
const (
	LegalityLegal      = "legal"
	LegalityNotLegal   = "not_legal"
	LegalityBanned     = "banned"
	LegalityRestricted = "restricted"
)

// CardRecord is an immutable card fact resolved from the card data provider.
type CardRecord struct {
	ID            string            `json:"id"`
	OracleID      string            `json:"oracleId,omitempty"`
	Name          string            `json:"name"`
	ManaCost      string            `json:"manaCost,omitempty"`
	CMC           float64           `json:"cmc"`
	ColorIdentity []string          `json:"colorIdentity"`
	TypeLine      string            `json:"typeLine"`
	OracleText    string            `json:"oracleText,omitempty"`
	Rarity        string            `json:"rarity,omitempty"`
	Legalities    map[string]string `json:"legalities,omitempty"`
}

// Key returns the identity used to deduplicate cards within a deck.
// Different printings of the same card share a key.
func (c *CardRecord) Key() string {
	return strings.ToLower(strings.TrimSpace(c.Name))
}

// IsLand reports whether the card is a land.
func (c *CardRecord) IsLand() bool {
	return containsFold(c.TypeLine, "land")
}

// IsBasicLand reports whether the card is a basic land.
func (c *CardRecord) IsBasicLand() bool {
	return containsFold(c.TypeLine, "basic") && c.IsLand()
}

// IsLegendaryCreature reports whether the type line names a legendary creature.
func (c *CardRecord) IsLegendaryCreature() bool {
	return containsFold(c.TypeLine, "legendary") && containsFold(c.TypeLine, "creature")
}

// CanBeCommander reports whether the card may lead a deck.
func (c *CardRecord) CanBeCommander() bool {
	if c.IsLegendaryCreature() {
		return true
	}
	return containsFold(c.TypeLine, "legendary") && containsFold(c.OracleText, "can be your commander")
}

// IsLegalIn reports whether the card may be played in the given format.
// A missing legality entry is treated as legal.
func (c *CardRecord) IsLegalIn(formatID string) bool {
	if c.Legalities == nil {
		return true
	}
	status, ok := c.Legalities[formatID]
	if !ok {
		return true
	}
	return status != LegalityNotLegal && status != LegalityBanned
}

// HasColor reports whether the card's color identity includes color.
func (c *CardRecord) HasColor(color string) bool {
	for _, ci := range c.ColorIdentity {
		if ci == color {
			return true
		}
	}
	return false
}

// SharesColor reports whether the card's color identity intersects colors.
func (c *CardRecord) SharesColor(colors []string) bool {
	for _, color := range colors {
		if c.HasColor(color) {
			return true
		}
	}
	return false
}

// identitySubset reports whether every color of the card is contained in identity.
func (c *CardRecord) identitySubset(identity []string) bool {
	for _, color := range c.ColorIdentity {
		found := false
		for _, allowed := range identity {
			if allowed == color {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// OwnedCard is a collection entry: a card name, optional set code and quantity.
type OwnedCard struct {
	Name     string `json:"name"`
	SetCode  string `json:"set,omitempty"`
	Quantity int    `json:"quantity"`
}

// DeckCardEntry is a card with its quantity in a deck.
type DeckCardEntry struct {
	Card     CardRecord `json:"card"`
	Quantity int        `json:"quantity"`
}

// Priority ranks an acquisition suggestion.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
)

// Suggestion is a card outside the collection that would strengthen a deck.
type Suggestion struct {
	Card     CardRecord `json:"card"`
	Reason   string     `json:"reason"`
	Priority Priority   `json:"priority"`
}

// DeckOption is one generated deck for one archetype.
type DeckOption struct {
	Commander            CardRecord      `json:"commander"`
	Format               string          `json:"format"`
	ArchetypeName        string          `json:"archetypeName"`
	ArchetypeDescription string          `json:"archetypeDescription"`
	Cards                []DeckCardEntry `json:"cards"`
	Suggestions          []Suggestion    `json:"suggestions"`
	ColorIdentity        []string        `json:"colorIdentity"`
	SynergyScore         int             `json:"synergyScore"`
	ManaCurve            map[int]int     `json:"manaCurve"`
	AverageCMC           float64         `json:"averageCmc"`
	LandCount            int             `json:"landCount"`
	TotalCards           int             `json:"totalCards"`
}

// TotalQuantity sums the quantities of all entries, commander included.
func TotalQuantity(entries []DeckCardEntry) int {
	total := 0
	for _, e := range entries {
		total += e.Quantity
	}
	return total
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), substr)
}
