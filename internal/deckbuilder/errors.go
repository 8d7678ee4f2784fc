package deckbuilder

import "errors"

var (
	// ErrCardNotFound is returned by providers when a card does not exist.
	ErrCardNotFound = errors.New("card not found")

	// ErrIneligibleCommander is returned when the chosen card cannot lead a deck.
	ErrIneligibleCommander = errors.New("commander must be a legendary creature")

	// ErrNoViableDeck is returned when no archetype produced enough cards.
	ErrNoViableDeck = errors.New("not enough cards in collection to build a deck")

	// ErrProviderUnavailable is returned when the card data provider cannot be reached.
	ErrProviderUnavailable = errors.New("card data provider unavailable")

	// ErrUnknownFormat is returned for format IDs the engine does not know.
	ErrUnknownFormat = errors.New("unknown format")
)
