package deckbuilder

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// OwnedRecord is a collection entry resolved to its card record.
type OwnedRecord struct {
	Card     CardRecord
	Quantity int
}

// ResolveReport summarizes collection resolution.
type ResolveReport struct {
	Requested int `json:"requested"`
	Resolved  int `json:"resolved"`
	NotFound  int `json:"notFound"`
	Failed    int `json:"failed"`
}

// providerDown reports whether every lookup failed for transport reasons.
func (r ResolveReport) providerDown() bool {
	return r.Failed > 0 && r.Resolved == 0 && r.NotFound == 0
}

// resolveCollection looks up each owned card one at a time, in order.
// Entries that fail to resolve are skipped. Printings of the same card are
// merged into one record with summed quantity, keeping first-seen order.
func resolveCollection(ctx context.Context, provider Provider, owned []OwnedCard, logger *slog.Logger) ([]OwnedRecord, ResolveReport) {
	var report ResolveReport
	records := make([]OwnedRecord, 0, len(owned))
	index := make(map[string]int)

	for _, entry := range owned {
		name := strings.TrimSpace(entry.Name)
		if entry.Quantity <= 0 || name == "" {
			continue
		}
		report.Requested++

		card, err := provider.ResolveByName(ctx, name, entry.SetCode)
		if err != nil {
			if errors.Is(err, ErrCardNotFound) {
				report.NotFound++
				logger.Debug("Skipping unknown collection card", "card", name, "set", entry.SetCode)
			} else {
				report.Failed++
				logger.Warn("Failed to resolve collection card", "card", name, "set", entry.SetCode, "error", err)
			}
			continue
		}
		report.Resolved++

		if i, ok := index[card.Key()]; ok {
			records[i].Quantity += entry.Quantity
			continue
		}
		index[card.Key()] = len(records)
		records = append(records, OwnedRecord{Card: *card, Quantity: entry.Quantity})
	}

	return records, report
}
