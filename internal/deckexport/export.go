// Package deckexport renders generated decks as decklist text.
package deckexport

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
)

// Format represents the deck export format.
type Format string

const (
	// FormatArena is the MTG Arena import format ("1 Sol Ring").
	FormatArena Format = "arena"
	// FormatText is a plain list ("1x Sol Ring").
	FormatText Format = "text"
	// FormatCommander groups cards under type headings.
	FormatCommander Format = "commander"
	// FormatJSON is the full deck option as indented JSON.
	FormatJSON Format = "json"
)

// ParseFormat converts a format name. An empty name selects FormatText.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case "":
		return FormatText, nil
	case FormatArena, FormatText, FormatCommander, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format: %s", name)
	}
}

// ContentType returns the MIME type of an export format.
func (f Format) ContentType() string {
	if f == FormatJSON {
		return "application/json"
	}
	return "text/plain; charset=utf-8"
}

// Write renders option to w in the given format.
func Write(w io.Writer, option deckbuilder.DeckOption, format Format) error {
	if format == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(option); err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return nil
	}

	buf := bufio.NewWriter(w)
	switch format {
	case FormatArena:
		writeArena(buf, option)
	case FormatText:
		writeText(buf, option)
	case FormatCommander:
		writeGrouped(buf, option)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}

	if err := buf.Flush(); err != nil {
		return fmt.Errorf("failed to write deck: %w", err)
	}
	return nil
}

// String renders option in the given format.
func String(option deckbuilder.DeckOption, format Format) (string, error) {
	var sb strings.Builder
	if err := Write(&sb, option, format); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// splitCommander separates the commander entry from the rest of the deck.
func splitCommander(option deckbuilder.DeckOption) (*deckbuilder.DeckCardEntry, []deckbuilder.DeckCardEntry) {
	key := option.Commander.Key()
	var commander *deckbuilder.DeckCardEntry
	rest := make([]deckbuilder.DeckCardEntry, 0, len(option.Cards))
	for i := range option.Cards {
		entry := option.Cards[i]
		if commander == nil && key != "" && entry.Card.Key() == key {
			commander = &entry
			continue
		}
		rest = append(rest, entry)
	}
	return commander, rest
}

func writeArena(w *bufio.Writer, option deckbuilder.DeckOption) {
	commander, rest := splitCommander(option)
	if commander != nil {
		w.WriteString("Commander\n")
		fmt.Fprintf(w, "%d %s\n\n", commander.Quantity, commander.Card.Name)
	}

	w.WriteString("Deck\n")
	for _, entry := range rest {
		fmt.Fprintf(w, "%d %s\n", entry.Quantity, entry.Card.Name)
	}
}

func writeText(w *bufio.Writer, option deckbuilder.DeckOption) {
	for _, entry := range option.Cards {
		fmt.Fprintf(w, "%dx %s\n", entry.Quantity, entry.Card.Name)
	}
}

// Grouping order for FormatCommander.
var groups = []string{
	"Creatures",
	"Planeswalkers",
	"Battles",
	"Instants",
	"Sorceries",
	"Artifacts",
	"Enchantments",
	"Other",
	"Lands",
}

func groupOf(card *deckbuilder.CardRecord) string {
	typeLine := strings.ToLower(card.TypeLine)
	switch {
	case card.IsLand():
		return "Lands"
	case strings.Contains(typeLine, "creature"):
		return "Creatures"
	case strings.Contains(typeLine, "planeswalker"):
		return "Planeswalkers"
	case strings.Contains(typeLine, "battle"):
		return "Battles"
	case strings.Contains(typeLine, "instant"):
		return "Instants"
	case strings.Contains(typeLine, "sorcery"):
		return "Sorceries"
	case strings.Contains(typeLine, "artifact"):
		return "Artifacts"
	case strings.Contains(typeLine, "enchantment"):
		return "Enchantments"
	default:
		return "Other"
	}
}

func writeGrouped(w *bufio.Writer, option deckbuilder.DeckOption) {
	fmt.Fprintf(w, "// %s - %s\n", option.Commander.Name, option.ArchetypeName)
	fmt.Fprintf(w, "// Format: %s\n", option.Format)
	if len(option.ColorIdentity) > 0 {
		fmt.Fprintf(w, "// Colors: %s\n", strings.Join(option.ColorIdentity, ""))
	}
	fmt.Fprintf(w, "// Total Cards: %d, Lands: %d, Average CMC: %.2f, Synergy: %d\n",
		option.TotalCards, option.LandCount, option.AverageCMC, option.SynergyScore)

	commander, rest := splitCommander(option)
	if commander != nil {
		w.WriteString("\nCommander (1)\n")
		fmt.Fprintf(w, "%d %s\n", commander.Quantity, commander.Card.Name)
	}

	byGroup := make(map[string][]deckbuilder.DeckCardEntry)
	for _, entry := range rest {
		g := groupOf(&entry.Card)
		byGroup[g] = append(byGroup[g], entry)
	}

	for _, g := range groups {
		entries := byGroup[g]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s (%d)\n", g, deckbuilder.TotalQuantity(entries))
		for _, entry := range entries {
			fmt.Fprintf(w, "%d %s\n", entry.Quantity, entry.Card.Name)
		}
	}

	if len(option.Suggestions) > 0 {
		fmt.Fprintf(w, "\n// Suggested Additions (%d)\n", len(option.Suggestions))
		for _, s := range option.Suggestions {
			fmt.Fprintf(w, "// [%s] %s: %s\n", s.Priority, s.Card.Name, s.Reason)
		}
	}
}
