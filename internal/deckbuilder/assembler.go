package deckbuilder

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

const (
	// nonLandTarget leaves room for the commander and a 33-38 card mana base
	// in a 100 card deck. Smaller formats scale it down.
	nonLandTarget = 63

	referenceDeckSize = 100

	// MinViableDeckSize is the smallest deck the assembler will return.
	MinViableDeckSize = 20

	lowCurveLands    = 33
	defaultLands     = 36
	highCurveLands   = 38
	lowCurveAverage  = 2.5
	highCurveAverage = 4.0
)

// Colors in WUBRG order.
var Colors = []string{"W", "U", "B", "R", "G"}

var manaSymbolRegex = regexp.MustCompile(`\{([^}]+)\}`)

// ColorWeights maps a color symbol to accumulated mana demand.
type ColorWeights map[string]float64

// Total sums the demand across colors.
func (w ColorWeights) Total() float64 {
	total := 0.0
	for _, v := range w {
		total += v
	}
	return total
}

// ManaBaseBuilder selects lands and mana sources for a deck.
type ManaBaseBuilder interface {
	Build(ctx context.Context, req ManaBaseRequest) []CardRecord
}

// AssembledDeck is the assembler's output before rating.
type AssembledDeck struct {
	Entries    []DeckCardEntry
	ManaCurve  map[int]int
	AverageCMC float64
	LandCount  int
}

// Assembler builds a deck from scored candidates.
type Assembler struct {
	manaBase ManaBaseBuilder
	logger   *slog.Logger
}

// NewAssembler creates an assembler that delegates land selection to manaBase.
func NewAssembler(manaBase ManaBaseBuilder, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Assembler{manaBase: manaBase, logger: logger}
}

// Assemble builds a deck around commander from candidates, which must already
// be sorted by pick priority. It returns nil when fewer than
// MinViableDeckSize cards could be assembled.
func (a *Assembler) Assemble(ctx context.Context, commander CardRecord, candidates []ScoredCard, archetype Archetype, format Format) *AssembledDeck {
	entries := []DeckCardEntry{{Card: commander, Quantity: 1}}
	used := map[string]bool{commander.Key(): true}
	spellTarget := format.scaled(nonLandTarget)

	nonLand := 0
	for _, cand := range candidates {
		if nonLand >= spellTarget {
			break
		}
		card := cand.Card
		if card.IsLand() || used[card.Key()] {
			continue
		}

		qty := min(cand.Quantity, format.copyLimit(&card), spellTarget-nonLand)
		if qty <= 0 {
			continue
		}

		used[card.Key()] = true
		entries = append(entries, DeckCardEntry{Card: card, Quantity: qty})
		nonLand += qty
	}

	spells := entries[1:]
	curve, avg := manaCurve(spells)
	weights := colorWeights(spells)

	landTarget := format.scaled(landTargetFor(avg))
	if format.DeckSize > 0 {
		landTarget = min(landTarget, format.DeckSize-TotalQuantity(entries))
	}

	lands := 0
	if landTarget > 0 && a.manaBase != nil {
		manaCards := a.manaBase.Build(ctx, ManaBaseRequest{
			ColorIdentity: commander.ColorIdentity,
			Target:        landTarget,
			Format:        format,
			Weights:       weights,
			AverageCMC:    avg,
		})
		for _, card := range manaCards {
			if used[card.Key()] {
				continue
			}
			used[card.Key()] = true
			entries = append(entries, DeckCardEntry{Card: card, Quantity: 1})
			if card.IsLand() {
				lands++
			}
		}
	}

	total := TotalQuantity(entries)
	if total < MinViableDeckSize {
		a.logger.Debug("Deck not viable",
			"commander", commander.Name,
			"archetype", archetype.Name,
			"cards", total)
		return nil
	}

	return &AssembledDeck{
		Entries:    entries,
		ManaCurve:  curve,
		AverageCMC: avg,
		LandCount:  lands,
	}
}

// landTargetFor sizes the mana base from the average spell cost.
func landTargetFor(avg float64) int {
	switch {
	case avg < lowCurveAverage:
		return lowCurveLands
	case avg > highCurveAverage:
		return highCurveLands
	default:
		return defaultLands
	}
}

// scaled sizes a 100 card deck quota to the format's deck size.
func (f Format) scaled(n int) int {
	if f.DeckSize <= 0 || f.DeckSize == referenceDeckSize {
		return n
	}
	return n * f.DeckSize / referenceDeckSize
}

// manaCurve counts spells by integer mana value and returns the average.
func manaCurve(entries []DeckCardEntry) (map[int]int, float64) {
	curve := make(map[int]int)
	totalCMC := 0.0
	count := 0
	for _, e := range entries {
		curve[int(e.Card.CMC)] += e.Quantity
		totalCMC += e.Card.CMC * float64(e.Quantity)
		count += e.Quantity
	}
	if count == 0 {
		return curve, 0
	}
	return curve, totalCMC / float64(count)
}

// colorWeights accumulates per-color demand from mana costs.
// Each colored symbol adds (cmc+1)*qty; a card without colored symbols adds
// half that to each color of its identity.
func colorWeights(entries []DeckCardEntry) ColorWeights {
	weights := make(ColorWeights)
	for _, e := range entries {
		weight := (e.Card.CMC + 1) * float64(e.Quantity)
		symbols := coloredSymbols(e.Card.ManaCost)
		if len(symbols) > 0 {
			for _, color := range symbols {
				weights[color] += weight
			}
			continue
		}
		for _, color := range e.Card.ColorIdentity {
			weights[color] += weight / 2
		}
	}
	return weights
}

// coloredSymbols lists every colored mana symbol occurrence in a cost.
// Hybrid symbols contribute each of their colors.
func coloredSymbols(manaCost string) []string {
	var out []string
	for _, m := range manaSymbolRegex.FindAllStringSubmatch(manaCost, -1) {
		symbol := strings.ToUpper(m[1])
		for _, color := range Colors {
			if strings.Contains(symbol, color) {
				out = append(out, color)
			}
		}
	}
	return out
}
