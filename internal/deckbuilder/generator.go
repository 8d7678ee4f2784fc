package deckbuilder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Observer receives pipeline measurements. Implementations must be safe for
// concurrent use.
type Observer interface {
	ObserveGeneration(duration time.Duration, options int, err error)
	ObserveCollection(report ResolveReport)
}

// Config configures a Generator.
type Config struct {
	// Provider resolves card names and runs searches. Required.
	Provider Provider

	// Throttle is the minimum delay between provider calls. Zero disables throttling.
	Throttle time.Duration

	// Rank orders suggestions. Default: RankByRarity.
	Rank RankFunc

	Logger   *slog.Logger
	Observer Observer
}

// Request asks for decks built around a named commander.
type Request struct {
	Commander    string      `json:"commander"`
	CommanderSet string      `json:"commanderSet,omitempty"`
	Format       string      `json:"format,omitempty"`
	Collection   []OwnedCard `json:"collection"`
}

// Generator runs the deck construction pipeline.
type Generator struct {
	provider Provider
	rank     RankFunc
	logger   *slog.Logger
	observer Observer
}

// NewGenerator creates a generator from cfg.
func NewGenerator(cfg Config) (*Generator, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Rank == nil {
		cfg.Rank = RankByRarity
	}

	return &Generator{
		provider: NewThrottledProvider(cfg.Provider, cfg.Throttle),
		rank:     cfg.Rank,
		logger:   cfg.Logger,
		observer: cfg.Observer,
	}, nil
}

// Generate resolves the commander and collection, then builds one DeckOption
// per viable archetype.
func (g *Generator) Generate(ctx context.Context, req Request) (options []DeckOption, err error) {
	start := time.Now()
	defer func() {
		if g.observer != nil {
			g.observer.ObserveGeneration(time.Since(start), len(options), err)
		}
	}()

	format, err := LookupFormat(req.Format)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Commander)
	if name == "" {
		return nil, fmt.Errorf("commander name is required")
	}

	cache := newRequestCache(g.provider)

	commander, err := cache.ResolveByName(ctx, name, req.CommanderSet)
	if err != nil {
		if errors.Is(err, ErrCardNotFound) {
			return nil, fmt.Errorf("commander %q: %w", name, err)
		}
		return nil, fmt.Errorf("failed to resolve commander %q: %w: %w", name, ErrProviderUnavailable, err)
	}
	if !commander.CanBeCommander() {
		return nil, fmt.Errorf("%s: %w", commander.Name, ErrIneligibleCommander)
	}

	owned, report := resolveCollection(ctx, cache, req.Collection, g.logger)
	if g.observer != nil {
		g.observer.ObserveCollection(report)
	}
	if report.providerDown() {
		return nil, fmt.Errorf("failed to resolve collection: %w", ErrProviderUnavailable)
	}

	g.logger.Info("Resolved collection",
		"commander", commander.Name,
		"requested", report.Requested,
		"resolved", report.Resolved,
		"notFound", report.NotFound,
		"failed", report.Failed)

	return g.build(ctx, cache, *commander, owned, format)
}

// GenerateForCommander builds decks for an already resolved commander.
func (g *Generator) GenerateForCommander(ctx context.Context, commander CardRecord, collection []OwnedCard, format Format) ([]DeckOption, error) {
	if !commander.CanBeCommander() {
		return nil, fmt.Errorf("%s: %w", commander.Name, ErrIneligibleCommander)
	}

	cache := newRequestCache(g.provider)
	owned, report := resolveCollection(ctx, cache, collection, g.logger)
	if report.providerDown() {
		return nil, fmt.Errorf("failed to resolve collection: %w", ErrProviderUnavailable)
	}
	return g.build(ctx, cache, commander, owned, format)
}

func (g *Generator) build(ctx context.Context, provider Provider, commander CardRecord, owned []OwnedRecord, format Format) ([]DeckOption, error) {
	assembler := NewAssembler(NewProviderManaBase(provider, g.logger), g.logger)
	finder := NewSuggestionFinder(provider, g.rank, g.logger)

	var options []DeckOption
	for _, archetype := range Classify(commander) {
		candidates := ScoreCollection(owned, commander, archetype)
		deck := assembler.Assemble(ctx, commander, candidates, archetype, format)
		if deck == nil {
			continue
		}

		options = append(options, DeckOption{
			Commander:            commander,
			Format:               format.ID,
			ArchetypeName:        archetype.Name,
			ArchetypeDescription: archetype.Description,
			Cards:                deck.Entries,
			Suggestions:          finder.Suggest(ctx, commander, deck.Entries, archetype, format),
			ColorIdentity:        append([]string(nil), commander.ColorIdentity...),
			SynergyScore:         Synergy(commander, synergyPool(deck.Entries, commander)),
			ManaCurve:            deck.ManaCurve,
			AverageCMC:           deck.AverageCMC,
			LandCount:            deck.LandCount,
			TotalCards:           TotalQuantity(deck.Entries),
		})
	}

	if len(options) == 0 {
		return nil, fmt.Errorf("%s: %w", commander.Name, ErrNoViableDeck)
	}

	g.logger.Info("Generated deck options", "commander", commander.Name, "options", len(options))
	return options, nil
}
