package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
	"github.com/ramonehamilton/commander-forge/internal/storage/models"
)

// ErrDeckNotFound is returned when deleting a deck that does not exist.
var ErrDeckNotFound = errors.New("saved deck not found")

// DeckRepository handles database operations for saved decks.
type DeckRepository interface {
	// Save stores a generated option under a new ID. An empty name is
	// derived from the commander and archetype.
	Save(ctx context.Context, name string, option deckbuilder.DeckOption) (*models.SavedDeck, error)

	// Get retrieves a saved deck by ID. Returns nil if not found.
	Get(ctx context.Context, id string) (*models.SavedDeck, error)

	// List returns saved decks matching filter, newest first.
	List(ctx context.Context, filter models.DeckFilter) ([]models.SavedDeckSummary, error)

	// Delete removes a saved deck and its cards.
	Delete(ctx context.Context, id string) error
}

type deckRepository struct {
	db *sql.DB
}

// NewDeckRepository creates a new deck repository.
func NewDeckRepository(db *sql.DB) DeckRepository {
	return &deckRepository{db: db}
}

func (r *deckRepository) Save(ctx context.Context, name string, option deckbuilder.DeckOption) (*models.SavedDeck, error) {
	if strings.TrimSpace(name) == "" {
		name = fmt.Sprintf("%s - %s", option.Commander.Name, option.ArchetypeName)
	}

	payload, err := json.Marshal(option)
	if err != nil {
		return nil, fmt.Errorf("failed to encode deck: %w", err)
	}

	now := time.Now().UTC()
	deck := &models.SavedDeck{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(name),
		Commander:     option.Commander.Name,
		Format:        option.Format,
		Archetype:     option.ArchetypeName,
		ColorIdentity: strings.Join(option.ColorIdentity, ""),
		SynergyScore:  option.SynergyScore,
		TotalCards:    option.TotalCards,
		Option:        option,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		query := `
			INSERT INTO saved_decks (
				id, name, commander, format, archetype, color_identity,
				synergy_score, total_cards, option_json, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := tx.ExecContext(ctx, query,
			deck.ID,
			deck.Name,
			deck.Commander,
			deck.Format,
			deck.Archetype,
			deck.ColorIdentity,
			deck.SynergyScore,
			deck.TotalCards,
			string(payload),
			deck.CreatedAt,
			deck.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create saved deck: %w", err)
		}

		cardQuery := `
			INSERT INTO saved_deck_cards (deck_id, position, name_key, card_name, quantity, is_commander)
			VALUES (?, ?, ?, ?, ?, ?)
		`
		for i, entry := range option.Cards {
			isCommander := i == 0 && strings.EqualFold(entry.Card.Name, option.Commander.Name)
			_, err := tx.ExecContext(ctx, cardQuery,
				deck.ID, i, entry.Card.Key(), entry.Card.Name, entry.Quantity, isCommander)
			if err != nil {
				return fmt.Errorf("failed to add card %s: %w", entry.Card.Name, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return deck, nil
}

func (r *deckRepository) Get(ctx context.Context, id string) (*models.SavedDeck, error) {
	query := `
		SELECT id, name, commander, format, archetype, color_identity,
			synergy_score, total_cards, option_json, created_at, updated_at
		FROM saved_decks
		WHERE id = ?
	`

	deck := &models.SavedDeck{}
	var payload string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&deck.ID,
		&deck.Name,
		&deck.Commander,
		&deck.Format,
		&deck.Archetype,
		&deck.ColorIdentity,
		&deck.SynergyScore,
		&deck.TotalCards,
		&payload,
		&deck.CreatedAt,
		&deck.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get saved deck: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &deck.Option); err != nil {
		return nil, fmt.Errorf("failed to decode saved deck %s: %w", id, err)
	}

	return deck, nil
}

func (r *deckRepository) List(ctx context.Context, filter models.DeckFilter) ([]models.SavedDeckSummary, error) {
	var (
		clauses []string
		args    []any
	)
	if filter.Commander != "" {
		clauses = append(clauses, "lower(d.commander) = ?")
		args = append(args, strings.ToLower(strings.TrimSpace(filter.Commander)))
	}
	if filter.Format != "" {
		clauses = append(clauses, "d.format = ?")
		args = append(args, strings.ToLower(strings.TrimSpace(filter.Format)))
	}
	if filter.Card != "" {
		clauses = append(clauses, "EXISTS (SELECT 1 FROM saved_deck_cards c WHERE c.deck_id = d.id AND c.name_key = ?)")
		args = append(args, strings.ToLower(strings.TrimSpace(filter.Card)))
	}

	query := `
		SELECT d.id, d.name, d.commander, d.format, d.archetype, d.color_identity,
			d.synergy_score, d.total_cards, d.created_at
		FROM saved_decks d
	`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY d.created_at DESC, d.name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved decks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	decks := []models.SavedDeckSummary{}
	for rows.Next() {
		var s models.SavedDeckSummary
		if err := rows.Scan(
			&s.ID,
			&s.Name,
			&s.Commander,
			&s.Format,
			&s.Archetype,
			&s.ColorIdentity,
			&s.SynergyScore,
			&s.TotalCards,
			&s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan saved deck: %w", err)
		}
		decks = append(decks, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating saved decks: %w", err)
	}

	return decks, nil
}

func (r *deckRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM saved_decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete saved deck: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", id, ErrDeckNotFound)
	}
	return nil
}
