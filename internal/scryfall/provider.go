package scryfall

import (
	"context"
	"fmt"
	"strings"

	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
)

// Provider adapts a Client to deckbuilder.Provider.
type Provider struct {
	client *Client
}

// NewProvider creates a deck builder provider backed by client.
func NewProvider(client *Client) *Provider {
	return &Provider{client: client}
}

// ResolveByName implements deckbuilder.Provider.
func (p *Provider) ResolveByName(ctx context.Context, name, setCode string) (*deckbuilder.CardRecord, error) {
	card, err := p.client.GetCardByName(ctx, name, setCode)
	if err != nil {
		if IsNotFound(err) {
			return nil, fmt.Errorf("%s: %w", name, deckbuilder.ErrCardNotFound)
		}
		return nil, err
	}
	record := ToCardRecord(card)
	return &record, nil
}

// Search implements deckbuilder.Provider.
func (p *Provider) Search(ctx context.Context, query string) ([]deckbuilder.CardRecord, error) {
	cards, err := p.client.SearchAll(ctx, query)
	if err != nil {
		return nil, err
	}
	records := make([]deckbuilder.CardRecord, len(cards))
	for i := range cards {
		records[i] = ToCardRecord(&cards[i])
	}
	return records, nil
}

// Validate reports which owned cards Scryfall does not recognize, using batch lookups.
func (p *Provider) Validate(ctx context.Context, owned []deckbuilder.OwnedCard) ([]deckbuilder.OwnedCard, error) {
	ids := make([]CardIdentifier, 0, len(owned))
	for _, o := range owned {
		ids = append(ids, CardIdentifier{Name: o.Name, Set: strings.ToLower(o.SetCode)})
	}

	_, notFound, err := p.client.GetCardsByIdentifiers(ctx, ids)
	if err != nil {
		return nil, err
	}

	missing := make(map[string]bool, len(notFound))
	for _, id := range notFound {
		missing[strings.ToLower(id.Name)+"|"+strings.ToLower(id.Set)] = true
	}

	var unknown []deckbuilder.OwnedCard
	for _, o := range owned {
		if missing[strings.ToLower(o.Name)+"|"+strings.ToLower(o.SetCode)] {
			unknown = append(unknown, o)
		}
	}
	return unknown, nil
}

// ToCardRecord converts an API card into the deck builder's card record.
// Multi-faced cards take their text from every face.
func ToCardRecord(card *Card) deckbuilder.CardRecord {
	record := deckbuilder.CardRecord{
		ID:            card.ID,
		OracleID:      card.OracleID,
		Name:          card.Name,
		ManaCost:      card.ManaCost,
		CMC:           card.CMC,
		ColorIdentity: append([]string(nil), card.ColorIdentity...),
		TypeLine:      card.TypeLine,
		OracleText:    card.OracleText,
		Rarity:        card.Rarity,
		Legalities:    card.Legalities.Map(),
	}

	if len(card.CardFaces) > 0 {
		if record.OracleText == "" {
			texts := make([]string, 0, len(card.CardFaces))
			for _, face := range card.CardFaces {
				if face.OracleText != "" {
					texts = append(texts, face.OracleText)
				}
			}
			record.OracleText = strings.Join(texts, "\n")
		}
		if record.ManaCost == "" {
			record.ManaCost = card.CardFaces[0].ManaCost
		}
		if record.TypeLine == "" {
			record.TypeLine = card.CardFaces[0].TypeLine
		}
	}

	return record
}
