package storage

import (
	"context"
	"fmt"

	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
	"github.com/ramonehamilton/commander-forge/internal/storage/repository"
)

// Service groups the repositories backed by one database.
type Service struct {
	db         *DB
	collection repository.CollectionRepository
	decks      repository.DeckRepository
}

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:         db,
		collection: repository.NewCollectionRepository(db.Conn()),
		decks:      repository.NewDeckRepository(db.Conn()),
	}
}

// Collection returns the owned card repository.
func (s *Service) Collection() repository.CollectionRepository {
	return s.collection
}

// Decks returns the saved deck repository.
func (s *Service) Decks() repository.DeckRepository {
	return s.decks
}

// ImportCollection stores imported cards. With replace set the existing
// collection is discarded first; otherwise quantities are added.
func (s *Service) ImportCollection(ctx context.Context, cards []deckbuilder.OwnedCard, replace bool) error {
	var err error
	if replace {
		err = s.collection.ReplaceAll(ctx, cards)
	} else {
		err = s.collection.Add(ctx, cards)
	}
	if err != nil {
		return fmt.Errorf("failed to import collection: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Service) Close() error {
	return s.db.Close()
}
