package deckbuilder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// fakeProvider is an in-memory Provider with no delay.
type fakeProvider struct {
	cards    map[string]CardRecord
	searches map[string][]CardRecord
	// searchErr fails queries containing the key.
	searchErr map[string]error
	// resolveErr fails every name lookup when set.
	resolveErr error
	// resolveErrs fails lookups of specific lower-cased names.
	resolveErrs map[string]error

	resolveCalls int
	searchCalls  []string
}

func newFakeProvider(cards ...CardRecord) *fakeProvider {
	p := &fakeProvider{
		cards:       make(map[string]CardRecord),
		searches:    make(map[string][]CardRecord),
		searchErr:   make(map[string]error),
		resolveErrs: make(map[string]error),
	}
	for _, c := range cards {
		p.add(c)
	}
	return p
}

func (p *fakeProvider) add(cards ...CardRecord) {
	for _, c := range cards {
		p.cards[strings.ToLower(c.Name)] = c
	}
}

func (p *fakeProvider) ResolveByName(_ context.Context, name, _ string) (*CardRecord, error) {
	p.resolveCalls++
	if p.resolveErr != nil {
		return nil, p.resolveErr
	}
	if err, ok := p.resolveErrs[strings.ToLower(name)]; ok {
		return nil, err
	}
	c, ok := p.cards[strings.ToLower(name)]
	if !ok {
		return nil, ErrCardNotFound
	}
	return &c, nil
}

func (p *fakeProvider) Search(_ context.Context, query string) ([]CardRecord, error) {
	p.searchCalls = append(p.searchCalls, query)
	for key, err := range p.searchErr {
		if strings.Contains(query, key) {
			return nil, err
		}
	}
	for key, results := range p.searches {
		if strings.Contains(query, key) {
			return results, nil
		}
	}
	return nil, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func legendary(name string, cmc float64, colors []string, text string) CardRecord {
	return CardRecord{
		ID:            "id-" + strings.ToLower(name),
		Name:          name,
		CMC:           cmc,
		ColorIdentity: colors,
		TypeLine:      "Legendary Creature — Human",
		OracleText:    text,
		Rarity:        "mythic",
	}
}

func spell(name string, cmc float64, cost string, colors []string, text string) CardRecord {
	return CardRecord{
		ID:            "id-" + strings.ToLower(name),
		Name:          name,
		ManaCost:      cost,
		CMC:           cmc,
		ColorIdentity: colors,
		TypeLine:      "Creature — Soldier",
		OracleText:    text,
		Rarity:        "common",
	}
}

func basic(name, color string) CardRecord {
	return CardRecord{
		ID:            "id-" + strings.ToLower(name),
		Name:          name,
		ColorIdentity: []string{color},
		TypeLine:      "Basic Land — " + name,
		Rarity:        "common",
	}
}

func allBasics() []CardRecord {
	return []CardRecord{
		basic("Plains", "W"),
		basic("Island", "U"),
		basic("Swamp", "B"),
		basic("Mountain", "R"),
		basic("Forest", "G"),
	}
}

// tokenSpells returns n distinct cheap white token makers.
func tokenSpells(n int) []CardRecord {
	out := make([]CardRecord, n)
	for i := range out {
		out[i] = spell(fmt.Sprintf("Token Maker %02d", i), 2, "{1}{W}", []string{"W"}, "When this enters, create a 1/1 white Soldier creature token.")
	}
	return out
}

func ownedAll(cards []CardRecord, qty int) []OwnedRecord {
	out := make([]OwnedRecord, len(cards))
	for i, c := range cards {
		out[i] = OwnedRecord{Card: c, Quantity: qty}
	}
	return out
}

func ownedRefs(cards []CardRecord, qty int) []OwnedCard {
	out := make([]OwnedCard, len(cards))
	for i, c := range cards {
		out[i] = OwnedCard{Name: c.Name, Quantity: qty}
	}
	return out
}

func countByName(entries []DeckCardEntry, name string) int {
	n := 0
	for _, e := range entries {
		if e.Card.Name == name {
			n += e.Quantity
		}
	}
	return n
}
