// Package collection reads and writes card collection lists.
package collection

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
)

// Format identifies a collection file layout.
type Format string

const (
	// FormatText is one card per line, e.g. "4 Sol Ring" or "Sol Ring x4".
	FormatText Format = "text"
	// FormatCSV is a comma separated file with a name,set,quantity header.
	FormatCSV Format = "csv"
)

// ErrEmptyImport is returned when an import contains no cards.
var ErrEmptyImport = errors.New("no cards found in import")

// ImportResult holds the parsed entries and any lines that were skipped.
type ImportResult struct {
	Cards    []deckbuilder.OwnedCard `json:"cards"`
	Warnings []string                `json:"warnings,omitempty"`
}

// Total returns the summed quantity of all parsed cards.
func (r *ImportResult) Total() int {
	total := 0
	for _, c := range r.Cards {
		total += c.Quantity
	}
	return total
}

var (
	// "4 Sol Ring", "4x Sol Ring", "1 Sol Ring (C21) 263"
	// Group 1: quantity, Group 2: card name, Group 3: set code (optional)
	leadingQuantity = regexp.MustCompile(`^(\d+)[xX]?\s+(.+?)(?:\s+\(([A-Za-z0-9]+)\)(?:\s+\S+)?)?$`)
	// "Sol Ring x4"
	trailingQuantity = regexp.MustCompile(`^(.+?)\s+[xX](\d+)$`)
)

// Section headers found in exported decklists.
var sectionHeaders = map[string]bool{
	"deck":       true,
	"commander":  true,
	"companion":  true,
	"sideboard":  true,
	"maybeboard": true,
	"collection": true,
}

// FormatForPath picks a format from a file extension.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return FormatCSV
	}
	return FormatText
}

// ParseFormat converts a format name. An empty name selects text.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatText:
		return FormatText, nil
	case FormatCSV:
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("unsupported collection format %q", name)
	}
}

// Parse reads a collection in the given format.
func Parse(r io.Reader, format Format) (*ImportResult, error) {
	switch format {
	case FormatCSV:
		return ParseCSV(r)
	case FormatText, "":
		return ParseText(r)
	default:
		return nil, fmt.Errorf("unsupported collection format %q", format)
	}
}

// ParseText parses a plain text card list. Blank lines, comments starting
// with "#" or "//" and section headers are ignored. A line holding only a
// card name counts as one copy. Repeated entries are merged.
func ParseText(r io.Reader) (*ImportResult, error) {
	acc := newAccumulator()
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "//") {
			continue
		}
		if sectionHeaders[strings.ToLower(strings.TrimSuffix(line, ":"))] {
			continue
		}

		card, err := parseLine(line)
		if err != nil {
			acc.warn(fmt.Sprintf("Line %d: %v", lineNo, err))
			continue
		}
		acc.add(card)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read collection: %w", err)
	}

	return acc.result()
}

func parseLine(line string) (deckbuilder.OwnedCard, error) {
	if m := leadingQuantity.FindStringSubmatch(line); m != nil {
		qty, err := strconv.Atoi(m[1])
		if err != nil || qty <= 0 {
			return deckbuilder.OwnedCard{}, fmt.Errorf("invalid quantity '%s'", m[1])
		}
		return deckbuilder.OwnedCard{Name: strings.TrimSpace(m[2]), SetCode: strings.ToUpper(m[3]), Quantity: qty}, nil
	}

	if m := trailingQuantity.FindStringSubmatch(line); m != nil {
		qty, err := strconv.Atoi(m[2])
		if err != nil || qty <= 0 {
			return deckbuilder.OwnedCard{}, fmt.Errorf("invalid quantity '%s'", m[2])
		}
		return deckbuilder.OwnedCard{Name: strings.TrimSpace(m[1]), Quantity: qty}, nil
	}

	if strings.IndexFunc(line, isLetter) < 0 {
		return deckbuilder.OwnedCard{}, fmt.Errorf("could not parse '%s'", line)
	}
	return deckbuilder.OwnedCard{Name: line, Quantity: 1}, nil
}

func isLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// ParseCSV parses a CSV collection. The header must name a "name" column;
// "set" and "quantity" (or "count", "qty") are optional, quantity defaulting to 1.
func ParseCSV(r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyImport
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	nameCol, setCol, qtyCol := -1, -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))) {
		case "name", "card", "card_name":
			nameCol = i
		case "set", "set_code", "edition":
			setCol = i
		case "quantity", "count", "qty":
			qtyCol = i
		}
	}
	if nameCol < 0 {
		return nil, fmt.Errorf("CSV header has no name column: %v", header)
	}

	acc := newAccumulator()
	row := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row %d: %w", row, err)
		}

		name := field(record, nameCol)
		if name == "" {
			acc.warn(fmt.Sprintf("Row %d: missing card name", row))
			continue
		}

		qty := 1
		if raw := field(record, qtyCol); raw != "" {
			qty, err = strconv.Atoi(raw)
			if err != nil || qty <= 0 {
				acc.warn(fmt.Sprintf("Row %d: invalid quantity '%s'", row, raw))
				continue
			}
		}

		acc.add(deckbuilder.OwnedCard{Name: name, SetCode: strings.ToUpper(field(record, setCol)), Quantity: qty})
	}

	return acc.result()
}

func field(record []string, col int) string {
	if col < 0 || col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}

// WriteCSV writes cards with a name,set,quantity header.
func WriteCSV(w io.Writer, cards []deckbuilder.OwnedCard) error {
	writer := csv.NewWriter(w)

	if err := writer.Write([]string{"name", "set", "quantity"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, c := range cards {
		if err := writer.Write([]string{c.Name, c.SetCode, strconv.Itoa(c.Quantity)}); err != nil {
			return fmt.Errorf("failed to write CSV row %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// accumulator merges repeated entries, keeping first-seen order.
type accumulator struct {
	index    map[string]int
	cards    []deckbuilder.OwnedCard
	warnings []string
}

func newAccumulator() *accumulator {
	return &accumulator{index: make(map[string]int)}
}

func (a *accumulator) add(card deckbuilder.OwnedCard) {
	key := strings.ToLower(card.Name) + "|" + card.SetCode
	if i, ok := a.index[key]; ok {
		a.cards[i].Quantity += card.Quantity
		return
	}
	a.index[key] = len(a.cards)
	a.cards = append(a.cards, card)
}

func (a *accumulator) warn(msg string) {
	a.warnings = append(a.warnings, msg)
}

func (a *accumulator) result() (*ImportResult, error) {
	if len(a.cards) == 0 {
		if len(a.warnings) > 0 {
			return nil, fmt.Errorf("%w (%d lines skipped: %s)", ErrEmptyImport, len(a.warnings), a.warnings[0])
		}
		return nil, ErrEmptyImport
	}
	return &ImportResult{Cards: a.cards, Warnings: a.warnings}, nil
}
