package models

import (
	"time"

	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
)

// OwnedCard is a row of the owned_cards table.
type OwnedCard struct {
	Name      string
	SetCode   string // Empty when the printing is unspecified
	Quantity  int
	UpdatedAt time.Time
}

// SavedDeck is a generated deck option stored under a stable ID.
type SavedDeck struct {
	ID            string                 `json:"id"`
	Name          string                 `json:"name"`
	Commander     string                 `json:"commander"`
	Format        string                 `json:"format"`
	Archetype     string                 `json:"archetype"`
	ColorIdentity string                 `json:"colorIdentity"` // Concatenated WUBRG letters, e.g. "GW"
	SynergyScore  int                    `json:"synergyScore"`
	TotalCards    int                    `json:"totalCards"`
	Option        deckbuilder.DeckOption `json:"option"`
	CreatedAt     time.Time              `json:"createdAt"`
	UpdatedAt     time.Time              `json:"updatedAt"`
}

// SavedDeckSummary is the list view of a saved deck without its card list.
type SavedDeckSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Commander     string    `json:"commander"`
	Format        string    `json:"format"`
	Archetype     string    `json:"archetype"`
	ColorIdentity string    `json:"colorIdentity"`
	SynergyScore  int       `json:"synergyScore"`
	TotalCards    int       `json:"totalCards"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Summary returns the list view of d.
func (d *SavedDeck) Summary() SavedDeckSummary {
	return SavedDeckSummary{
		ID:            d.ID,
		Name:          d.Name,
		Commander:     d.Commander,
		Format:        d.Format,
		Archetype:     d.Archetype,
		ColorIdentity: d.ColorIdentity,
		SynergyScore:  d.SynergyScore,
		TotalCards:    d.TotalCards,
		CreatedAt:     d.CreatedAt,
	}
}

// DeckFilter narrows a saved deck listing.
type DeckFilter struct {
	Commander string // Exact commander name, case-insensitive
	Format    string
	Card      string // Only decks containing this card, case-insensitive
}
