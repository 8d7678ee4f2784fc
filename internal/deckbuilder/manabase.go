package deckbuilder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
)

const (
	minColorShare   = 0.10
	maxDualLands    = 8
	highCurveRocks  = 3
	midCurveRocks   = 2
	lowCurveRocks   = 1
	highRockAverage = 3.5
	midRockAverage  = 2.5
)

// BasicLandNames maps a color to its basic land.
var BasicLandNames = map[string]string{
	"W": "Plains",
	"U": "Island",
	"B": "Swamp",
	"R": "Mountain",
	"G": "Forest",
}

// fixingLands are lands that tap for any color, tried in order.
var fixingLands = []string{
	"Command Tower",
	"Exotic Orchard",
	"City of Brass",
	"Mana Confluence",
}

// manaRocks are mana-producing artifacts in priority order.
var manaRocks = []string{
	"Sol Ring",
	"Arcane Signet",
	"Mind Stone",
	"Fellwar Stone",
	"Commander's Sphere",
	"Thought Vessel",
	"Wayfarer's Bauble",
}

// knownManaProducers are accepted even when their text does not look like a mana ability.
var knownManaProducers = map[string]bool{
	"sol ring":          true,
	"arcane signet":     true,
	"wayfarer's bauble": true,
}

// ManaBaseRequest describes the mana needs of a deck.
type ManaBaseRequest struct {
	ColorIdentity []string
	Target        int
	Format        Format
	Weights       ColorWeights
	AverageCMC    float64
}

// ProviderManaBase selects lands and mana rocks by resolving them through a Provider.
type ProviderManaBase struct {
	provider Provider
	logger   *slog.Logger
}

// NewProviderManaBase creates a mana base builder backed by provider.
func NewProviderManaBase(provider Provider, logger *slog.Logger) *ProviderManaBase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderManaBase{provider: provider, logger: logger}
}

// manaBaseSelection accumulates chosen cards without repeats.
type manaBaseSelection struct {
	cards  []CardRecord
	chosen map[string]bool
	target int
}

func (s *manaBaseSelection) full() bool {
	return len(s.cards) >= s.target
}

func (s *manaBaseSelection) add(card CardRecord) bool {
	if s.full() || s.chosen[card.Key()] {
		return false
	}
	s.chosen[card.Key()] = true
	s.cards = append(s.cards, card)
	return true
}

// Build returns at most req.Target lands and mana sources. Lookup failures are
// logged and skipped.
func (b *ProviderManaBase) Build(ctx context.Context, req ManaBaseRequest) []CardRecord {
	sel := &manaBaseSelection{
		cards:  make([]CardRecord, 0, req.Target),
		chosen: make(map[string]bool),
		target: req.Target,
	}
	if req.Target <= 0 {
		return sel.cards
	}

	if len(req.ColorIdentity) > 1 {
		b.addFixingLand(ctx, sel, req.Format)
	}

	totalWeight := req.Weights.Total()
	b.addBasics(ctx, sel, req.ColorIdentity, req.Weights, totalWeight)

	if len(req.ColorIdentity) >= 2 {
		b.addDualLands(ctx, sel, req.ColorIdentity, req.Format)
	}

	b.addManaRocks(ctx, sel, req.Format, rockCount(req.AverageCMC))

	// Basics are unique in the selection, so this only fills colors the first
	// pass skipped.
	if !sel.full() && totalWeight > 0 {
		b.addBasics(ctx, sel, req.ColorIdentity, req.Weights, totalWeight)
	}

	if len(sel.cards) > req.Target {
		sel.cards = sel.cards[:req.Target]
	}
	return sel.cards
}

func (b *ProviderManaBase) addFixingLand(ctx context.Context, sel *manaBaseSelection, format Format) {
	for _, name := range fixingLands {
		if sel.full() {
			return
		}
		card, err := b.provider.ResolveByName(ctx, name, "")
		if err != nil || card == nil {
			b.logger.Warn("Failed to resolve fixing land", "card", name, "error", err)
			continue
		}
		if !card.IsLegalIn(format.ID) {
			continue
		}
		if sel.add(*card) {
			return
		}
	}
}

// addBasics adds one basic per identity color. With no color demand every
// identity color gets one; otherwise only colors above minColorShare do,
// heaviest first.
func (b *ProviderManaBase) addBasics(ctx context.Context, sel *manaBaseSelection, identity []string, weights ColorWeights, total float64) {
	colors := basicColorsFor(identity, weights, total)
	for _, color := range colors {
		if sel.full() {
			return
		}
		name := BasicLandNames[color]
		card, err := b.provider.ResolveByName(ctx, name, "")
		if err != nil || card == nil {
			b.logger.Warn("Failed to resolve basic land", "card", name, "error", err)
			continue
		}
		sel.add(*card)
	}
}

// basicColorsFor picks the identity colors that deserve a basic land.
func basicColorsFor(identity []string, weights ColorWeights, total float64) []string {
	colors := make([]string, 0, len(identity))
	for _, color := range identity {
		if _, ok := BasicLandNames[color]; ok {
			colors = append(colors, color)
		}
	}
	if total <= 0 {
		return colors
	}

	sort.SliceStable(colors, func(i, j int) bool {
		return weights[colors[i]] > weights[colors[j]]
	})

	out := colors[:0]
	for _, color := range colors {
		if weights[color]/total > minColorShare {
			out = append(out, color)
		}
	}
	return out
}

func (b *ProviderManaBase) addDualLands(ctx context.Context, sel *manaBaseSelection, identity []string, format Format) {
	if sel.full() {
		return
	}
	query := fmt.Sprintf("t:land -t:basic id<=%s o:add legal:%s", strings.ToLower(strings.Join(identity, "")), format.ID)
	results, err := b.provider.Search(ctx, query)
	if err != nil {
		b.logger.Warn("Land search failed", "query", query, "error", err)
		return
	}

	added := 0
	for _, card := range results {
		if added >= maxDualLands || sel.full() {
			return
		}
		if card.IsBasicLand() || !card.IsLand() {
			continue
		}
		if !card.IsLegalIn(format.ID) || !card.identitySubset(identity) {
			continue
		}
		if sel.add(card) {
			added++
		}
	}
}

func (b *ProviderManaBase) addManaRocks(ctx context.Context, sel *manaBaseSelection, format Format, want int) {
	added := 0
	for _, name := range manaRocks {
		if added >= want || sel.full() {
			return
		}
		card, err := b.provider.ResolveByName(ctx, name, "")
		if err != nil || card == nil {
			b.logger.Warn("Failed to resolve mana rock", "card", name, "error", err)
			continue
		}
		if !card.IsLegalIn(format.ID) || !producesMana(card) {
			continue
		}
		if sel.add(*card) {
			added++
		}
	}
}

// rockCount scales the number of mana rocks with the curve.
func rockCount(avg float64) int {
	switch {
	case avg > highRockAverage:
		return highCurveRocks
	case avg > midRockAverage:
		return midCurveRocks
	default:
		return lowCurveRocks
	}
}

func producesMana(card *CardRecord) bool {
	if knownManaProducers[card.Key()] {
		return true
	}
	text := strings.ToLower(card.OracleText)
	return strings.Contains(text, "add") || strings.Contains(text, "mana")
}
