package deckbuilder

import (
	"math"
	"strings"
)

const (
	nameMentionScore = 5
	synergyScale     = 10
	maxSynergy       = 100
)

// synergyVocabulary lists terms whose presence in both the commander and a
// card counts as shared mechanics.
var synergyVocabulary = []string{
	"token", "sacrifice", "draw", "graveyard", "counter", "destroy",
	"exile", "create", "whenever", "when", "enters", "dies",
}

// Synergy rates how coherent pool is with commander on a 0-100 scale.
// Cards without rules text count toward the pool size but score nothing.
func Synergy(commander CardRecord, pool []CardRecord) int {
	if len(pool) == 0 {
		return 0
	}

	commanderText := strings.ToLower(commander.OracleText)
	commanderName := strings.ToLower(commander.Name)

	shared := make([]string, 0, len(synergyVocabulary))
	for _, kw := range synergyVocabulary {
		if strings.Contains(commanderText, kw) {
			shared = append(shared, kw)
		}
	}

	total := 0
	for _, card := range pool {
		if card.OracleText == "" {
			continue
		}
		text := strings.ToLower(card.OracleText)
		if commanderName != "" && strings.Contains(text, commanderName) {
			total += nameMentionScore
		}
		for _, kw := range shared {
			if strings.Contains(text, kw) {
				total++
			}
		}
	}

	score := int(math.Round(float64(total) / float64(len(pool)) * synergyScale))
	return max(0, min(score, maxSynergy))
}

// synergyPool returns the non-land, non-commander cards of a deck, one per entry.
func synergyPool(entries []DeckCardEntry, commander CardRecord) []CardRecord {
	pool := make([]CardRecord, 0, len(entries))
	for _, e := range entries {
		if e.Card.IsLand() || e.Card.Key() == commander.Key() {
			continue
		}
		pool = append(pool, e.Card)
	}
	return pool
}
