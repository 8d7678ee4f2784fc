package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
	"github.com/ramonehamilton/commander-forge/internal/storage/models"
)

// ErrInvalidEntry is returned for collection entries without a name or with a negative quantity.
var ErrInvalidEntry = errors.New("invalid collection entry")

// CollectionRepository handles database operations for the owned card collection.
// Entries are keyed by case-insensitive name and set code.
type CollectionRepository interface {
	// ListOwned returns the collection in the form the deck generator consumes.
	ListOwned(ctx context.Context) ([]deckbuilder.OwnedCard, error)

	// List returns every stored row ordered by name and set.
	List(ctx context.Context) ([]*models.OwnedCard, error)

	// Upsert sets the quantity of a card. A quantity of zero removes it.
	Upsert(ctx context.Context, card deckbuilder.OwnedCard) error

	// Add increases the stored quantities by the given amounts.
	Add(ctx context.Context, cards []deckbuilder.OwnedCard) error

	// ReplaceAll swaps the whole collection for cards in one transaction.
	ReplaceAll(ctx context.Context, cards []deckbuilder.OwnedCard) error

	// Delete removes a card. An empty set removes only the set-less entry.
	Delete(ctx context.Context, name, setCode string) error

	// Count returns the number of distinct entries and the total quantity.
	Count(ctx context.Context) (entries int, total int, err error)
}

type collectionRepository struct {
	db *sql.DB
}

// NewCollectionRepository creates a new collection repository.
func NewCollectionRepository(db *sql.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func normalizeEntry(card deckbuilder.OwnedCard) (name, key, set string, err error) {
	name = strings.TrimSpace(card.Name)
	if name == "" {
		return "", "", "", fmt.Errorf("%w: empty name", ErrInvalidEntry)
	}
	if card.Quantity < 0 {
		return "", "", "", fmt.Errorf("%w: %s has quantity %d", ErrInvalidEntry, name, card.Quantity)
	}
	return name, strings.ToLower(name), strings.ToUpper(strings.TrimSpace(card.SetCode)), nil
}

func (r *collectionRepository) ListOwned(ctx context.Context) ([]deckbuilder.OwnedCard, error) {
	rows, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	owned := make([]deckbuilder.OwnedCard, len(rows))
	for i, row := range rows {
		owned[i] = deckbuilder.OwnedCard{Name: row.Name, SetCode: row.SetCode, Quantity: row.Quantity}
	}
	return owned, nil
}

func (r *collectionRepository) List(ctx context.Context) ([]*models.OwnedCard, error) {
	query := `
		SELECT name, set_code, quantity, updated_at
		FROM owned_cards
		ORDER BY name_key, set_code
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list collection: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var cards []*models.OwnedCard
	for rows.Next() {
		card := &models.OwnedCard{}
		if err := rows.Scan(&card.Name, &card.SetCode, &card.Quantity, &card.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan collection row: %w", err)
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating collection: %w", err)
	}

	return cards, nil
}

func (r *collectionRepository) Upsert(ctx context.Context, card deckbuilder.OwnedCard) error {
	name, key, set, err := normalizeEntry(card)
	if err != nil {
		return err
	}

	if card.Quantity == 0 {
		return r.Delete(ctx, name, set)
	}

	query := `
		INSERT INTO owned_cards (name_key, name, set_code, quantity, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name_key, set_code) DO UPDATE SET
			name = excluded.name,
			quantity = excluded.quantity,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, name, set, card.Quantity, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to upsert card: %w", err)
	}
	return nil
}

func (r *collectionRepository) Add(ctx context.Context, cards []deckbuilder.OwnedCard) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return addAll(ctx, tx, cards)
	})
}

func (r *collectionRepository) ReplaceAll(ctx context.Context, cards []deckbuilder.OwnedCard) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM owned_cards`); err != nil {
			return fmt.Errorf("failed to clear collection: %w", err)
		}
		return addAll(ctx, tx, cards)
	})
}

// addAll merges cards into the table, summing quantities of repeated entries.
func addAll(ctx context.Context, db execer, cards []deckbuilder.OwnedCard) error {
	query := `
		INSERT INTO owned_cards (name_key, name, set_code, quantity, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name_key, set_code) DO UPDATE SET
			quantity = owned_cards.quantity + excluded.quantity,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC()
	for _, card := range cards {
		name, key, set, err := normalizeEntry(card)
		if err != nil {
			return err
		}
		if card.Quantity == 0 {
			continue
		}
		if _, err := db.ExecContext(ctx, query, key, name, set, card.Quantity, now); err != nil {
			return fmt.Errorf("failed to add %s: %w", name, err)
		}
	}
	return nil
}

func (r *collectionRepository) Delete(ctx context.Context, name, setCode string) error {
	query := `DELETE FROM owned_cards WHERE name_key = ? AND set_code = ?`

	key := strings.ToLower(strings.TrimSpace(name))
	set := strings.ToUpper(strings.TrimSpace(setCode))
	if _, err := r.db.ExecContext(ctx, query, key, set); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	return nil
}

func (r *collectionRepository) Count(ctx context.Context) (int, int, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(quantity), 0) FROM owned_cards`

	var entries, total int
	if err := r.db.QueryRowContext(ctx, query).Scan(&entries, &total); err != nil {
		return 0, 0, fmt.Errorf("failed to count collection: %w", err)
	}
	return entries, total, nil
}
