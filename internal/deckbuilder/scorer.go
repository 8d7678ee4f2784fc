package deckbuilder

import (
	"sort"
	"strings"
)

// Score weights.
const (
	keywordMatchScore = 5
	colorMatchScore   = 2
	familyMatchScore  = 4
	cheapCardBonus    = 1
	expensivePenalty  = 1
	cheapCMC          = 3
	expensiveCMC      = 7
)

// ScoredCard is a collection card that fits an archetype.
type ScoredCard struct {
	Card     CardRecord
	Quantity int
	Score    int
}

// Eligible reports whether card may be considered for commander's deck.
// The commander itself and other legendary creatures are excluded.
func Eligible(card, commander CardRecord) bool {
	if card.ID != "" && card.ID == commander.ID {
		return false
	}
	if card.Key() == commander.Key() {
		return false
	}
	return !card.IsLegendaryCreature()
}

// Score rates how well card fits archetype under commander.
// Terms are independent and additive; the result may be zero or negative.
func Score(card, commander CardRecord, archetype Archetype) int {
	text := strings.ToLower(card.OracleText)
	name := strings.ToLower(card.Name)
	typeLine := strings.ToLower(card.TypeLine)

	score := 0
	for _, kw := range archetype.Keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(text, kw) || strings.Contains(name, kw) {
			score += keywordMatchScore
		}
	}

	if len(card.ColorIdentity) > 0 && card.SharesColor(commander.ColorIdentity) {
		score += colorMatchScore
	}

	if archetype.Family != "" &&
		(strings.Contains(text, archetype.Family) || strings.Contains(typeLine, archetype.Family)) {
		score += familyMatchScore
	}

	switch {
	case card.CMC <= cheapCMC:
		score += cheapCardBonus
	case card.CMC >= expensiveCMC:
		score -= expensivePenalty
	}

	return score
}

// ScoreCollection scores every eligible owned card and returns those with a
// positive score, best first. Equal scores keep collection order.
func ScoreCollection(collection []OwnedRecord, commander CardRecord, archetype Archetype) []ScoredCard {
	scored := make([]ScoredCard, 0, len(collection))
	for _, owned := range collection {
		if owned.Quantity <= 0 || !Eligible(owned.Card, commander) {
			continue
		}
		s := Score(owned.Card, commander, archetype)
		if s <= 0 {
			continue
		}
		scored = append(scored, ScoredCard{
			Card:     owned.Card,
			Quantity: owned.Quantity,
			Score:    s,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	return scored
}
