package deckbuilder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// MaxSuggestions caps the suggestions returned per deck.
const MaxSuggestions = 10

// RankFunc assigns a purchase priority to a suggested card.
type RankFunc func(card CardRecord) Priority

// RankByRarity treats mythic and rare cards as high priority.
func RankByRarity(card CardRecord) Priority {
	switch strings.ToLower(card.Rarity) {
	case "mythic", "rare":
		return PriorityHigh
	default:
		return PriorityMedium
	}
}

// SuggestionFinder searches the provider for cards that would strengthen a deck.
type SuggestionFinder struct {
	provider Provider
	rank     RankFunc
	logger   *slog.Logger
}

// NewSuggestionFinder creates a finder. A nil rank uses RankByRarity.
func NewSuggestionFinder(provider Provider, rank RankFunc, logger *slog.Logger) *SuggestionFinder {
	if rank == nil {
		rank = RankByRarity
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SuggestionFinder{provider: provider, rank: rank, logger: logger}
}

// Suggest returns up to MaxSuggestions cards outside pool in discovery order.
// A failing query is logged and the remaining queries still run.
func (f *SuggestionFinder) Suggest(ctx context.Context, commander CardRecord, pool []DeckCardEntry, archetype Archetype, format Format) []Suggestion {
	inPool := make(map[string]bool, len(pool))
	for _, e := range pool {
		inPool[e.Card.Key()] = true
	}

	commanderName := strings.ToLower(commander.Name)
	keywords := make([]string, 0, len(archetype.Keywords))
	for _, kw := range archetype.Keywords {
		if kw = strings.ToLower(kw); kw != "" {
			keywords = append(keywords, kw)
		}
	}

	suggestions := make([]Suggestion, 0, MaxSuggestions)
	seen := make(map[string]bool)

	for _, query := range suggestionQueries(commander, archetype) {
		if len(suggestions) >= MaxSuggestions {
			break
		}
		results, err := f.provider.Search(ctx, query)
		if err != nil {
			f.logger.Warn("Suggestion search failed", "query", query, "error", err)
			continue
		}

		for _, card := range results {
			if len(suggestions) >= MaxSuggestions {
				break
			}
			id := card.ID
			if id == "" {
				id = card.Key()
			}
			if seen[id] || inPool[card.Key()] || card.Key() == commander.Key() {
				continue
			}
			if !card.IsLegalIn(format.ID) {
				continue
			}

			reason, ok := suggestionReason(card, commander.Name, commanderName, keywords, archetype.Name)
			if !ok {
				continue
			}

			seen[id] = true
			suggestions = append(suggestions, Suggestion{
				Card:     card,
				Reason:   reason,
				Priority: f.rank(card),
			})
		}
	}

	return suggestions
}

// suggestionQueries builds the provider queries for a commander and archetype.
func suggestionQueries(commander CardRecord, archetype Archetype) []string {
	queries := make([]string, 0, 3)
	if commander.Name != "" {
		queries = append(queries, fmt.Sprintf(`o:"%s"`, commander.Name))
	}

	identity := strings.ToLower(strings.Join(commander.ColorIdentity, ""))
	if identity == "" {
		identity = "c"
	}

	if kw := archetype.PrimaryKeyword(); kw != "" {
		queries = append(queries, fmt.Sprintf(`o:"%s" id<=%s`, kw, identity))
	}
	queries = append(queries, fmt.Sprintf("id<=%s -t:basic", identity))
	return queries
}

func suggestionReason(card CardRecord, displayName, commanderName string, keywords []string, archetypeName string) (string, bool) {
	text := strings.ToLower(card.OracleText)
	if commanderName != "" && strings.Contains(text, commanderName) {
		return fmt.Sprintf("Directly references %s", displayName), true
	}
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return fmt.Sprintf("Supports the %s plan (%s)", archetypeName, kw), true
		}
	}
	return "", false
}
