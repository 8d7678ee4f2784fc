package deckbuilder

import (
	"fmt"
	"testing"
)

func TestSynergy(t *testing.T) {
	commander := legendary("Tokenlord", 4, []string{"W"}, "Whenever you create a token, draw a card.")

	tests := []struct {
		name string
		pool []CardRecord
		want int
	}{
		{
			name: "empty pool",
			pool: nil,
			want: 0,
		},
		{
			name: "no text",
			pool: []CardRecord{{Name: "Vanilla"}},
			want: 0,
		},
		{
			name: "shared keywords",
			// token, create, when
			pool: []CardRecord{{Name: "Maker", OracleText: "When this enters, create a token."}},
			want: 30,
		},
		{
			name: "name mention and keywords averaged",
			pool: []CardRecord{
				{Name: "Fan", OracleText: "Tokenlord costs 1 less."},
				{Name: "Vanilla"},
			},
			want: 30,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Synergy(commander, tt.pool); got != tt.want {
				t.Errorf("Synergy() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSynergy_Bounded(t *testing.T) {
	commander := legendary("Tokenlord", 4, nil,
		"Whenever a token enters or dies, sacrifice it, draw, create, destroy, exile, counter, graveyard.")

	pool := make([]CardRecord, 5)
	for i := range pool {
		pool[i] = CardRecord{
			Name:       fmt.Sprintf("Card %d", i),
			OracleText: "Tokenlord: whenever a token enters or dies, sacrifice it, draw, create, destroy, exile, counter, graveyard.",
		}
	}

	got := Synergy(commander, pool)
	if got != maxSynergy {
		t.Errorf("Synergy() = %d, want clamp to %d", got, maxSynergy)
	}
}

func TestSynergyPool_ExcludesCommanderAndLands(t *testing.T) {
	commander := legendary("Tokenlord", 4, nil, "create a token")
	entries := []DeckCardEntry{
		{Card: commander, Quantity: 1},
		{Card: CardRecord{Name: "Forest", TypeLine: "Basic Land — Forest"}, Quantity: 3},
		{Card: CardRecord{Name: "Command Tower", TypeLine: "Land", OracleText: "{T}: Add one mana of any color in your commander's color identity."}, Quantity: 1},
		{Card: CardRecord{Name: "Sol Ring", TypeLine: "Artifact", OracleText: "{T}: Add {C}{C}."}, Quantity: 1},
		{Card: CardRecord{Name: "Maker", TypeLine: "Creature", OracleText: "When this enters, create a 1/1 token."}, Quantity: 1},
	}

	pool := synergyPool(entries, commander)
	if len(pool) != 2 {
		t.Fatalf("len = %d, want 2", len(pool))
	}
	if pool[0].Name != "Sol Ring" || pool[1].Name != "Maker" {
		t.Errorf("unexpected pool %v", cardNames(pool))
	}

	// Lands would otherwise dilute the average: 2 matches over 2 spells.
	if got := Synergy(commander, pool); got != 10 {
		t.Errorf("Synergy() = %d, want 10", got)
	}
}
