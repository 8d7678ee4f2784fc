package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ramonehamilton/commander-forge/internal/deckbuilder"
)

func TestToCardRecord(t *testing.T) {
	card := &Card{
		ID:            "id",
		OracleID:      "oracle",
		Name:          "Esika, Chooser of the Prismatic",
		CMC:           2,
		ColorIdentity: []string{"G", "R", "U", "W", "B"},
		Rarity:        "mythic",
		CardFaces: []CardFace{
			{Name: "Esika", ManaCost: "{1}{G}", TypeLine: "Legendary Creature — God", OracleText: "Vigilance"},
			{Name: "The Prismatic Bridge", ManaCost: "{W}{U}{B}{R}{G}", TypeLine: "Legendary Enchantment", OracleText: "At the beginning of your upkeep, reveal cards."},
		},
		Legalities: Legalities{Commander: "legal", Standard: "not_legal"},
	}

	record := ToCardRecord(card)

	if record.ManaCost != "{1}{G}" {
		t.Errorf("ManaCost = %q", record.ManaCost)
	}
	if record.TypeLine != "Legendary Creature — God" {
		t.Errorf("TypeLine = %q", record.TypeLine)
	}
	if record.OracleText != "Vigilance\nAt the beginning of your upkeep, reveal cards." {
		t.Errorf("OracleText = %q", record.OracleText)
	}
	if !record.CanBeCommander() {
		t.Error("expected commander-eligible record")
	}
	if record.IsLegalIn("standard") || !record.IsLegalIn("commander") || !record.IsLegalIn("brawl") {
		t.Errorf("unexpected legalities %v", record.Legalities)
	}

	card.ColorIdentity[0] = "X"
	if record.ColorIdentity[0] != "G" {
		t.Error("record shares the card's color identity slice")
	}
}

func TestLegalities_Map(t *testing.T) {
	m := Legalities{Commander: "legal", Modern: "banned"}.Map()
	if len(m) != 2 || m["commander"] != "legal" || m["modern"] != "banned" {
		t.Errorf("Map() = %v", m)
	}
}

func TestProvider_ResolveByName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("exact") {
		case "Sol Ring":
			_, _ = w.Write([]byte(`{"id":"sol","name":"Sol Ring","type_line":"Artifact","oracle_text":"{T}: Add {C}{C}.","cmc":1}`))
		case "Broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"object":"error","code":"not_found","status":404,"details":"No cards found"}`))
		}
	}))
	defer server.Close()

	provider := NewProvider(newTestClient(server.URL, nil))
	ctx := context.Background()

	card, err := provider.ResolveByName(ctx, "Sol Ring", "")
	if err != nil {
		t.Fatalf("ResolveByName() error = %v", err)
	}
	if card.Name != "Sol Ring" || card.IsLand() {
		t.Errorf("unexpected card %+v", card)
	}

	if _, err := provider.ResolveByName(ctx, "Missing", ""); !errors.Is(err, deckbuilder.ErrCardNotFound) {
		t.Errorf("error = %v, want ErrCardNotFound", err)
	}

	_, err = provider.ResolveByName(ctx, "Broken", "")
	if err == nil || errors.Is(err, deckbuilder.ErrCardNotFound) {
		t.Errorf("error = %v, want transport error", err)
	}
}

func TestProvider_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(SearchResult{
			Object: "list",
			Data: []Card{
				{ID: "1", Name: "Hallowed Fountain", TypeLine: "Land — Plains Island", ColorIdentity: []string{"W", "U"}},
				{ID: "2", Name: "Azorius Chancery", TypeLine: "Land", ColorIdentity: []string{"W", "U"}},
			},
		})
	}))
	defer server.Close()

	provider := NewProvider(newTestClient(server.URL, nil))
	records, err := provider.Search(context.Background(), "t:land id<=wu")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(records) != 2 || records[0].Name != "Hallowed Fountain" || !records[1].IsLand() {
		t.Errorf("unexpected records %+v", records)
	}
}

func TestProvider_Validate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/cards/collection" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}

		var req CollectionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request body: %v", err)
		}
		if len(req.Identifiers) != 3 {
			t.Errorf("identifiers = %d, want 3", len(req.Identifiers))
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(CollectionResponse{
			Object:   "list",
			Data:     []Card{{ID: "1", Name: "Sol Ring"}, {ID: "2", Name: "Forest"}},
			NotFound: []CardIdentifier{{Name: "Typo Ring", Set: "c21"}},
		})
	}))
	defer server.Close()

	provider := NewProvider(newTestClient(server.URL, nil))
	unknown, err := provider.Validate(context.Background(), []deckbuilder.OwnedCard{
		{Name: "Sol Ring", Quantity: 1},
		{Name: "Typo Ring", SetCode: "C21", Quantity: 2},
		{Name: "Forest", Quantity: 10},
	})
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if len(unknown) != 1 || unknown[0].Name != "Typo Ring" || unknown[0].Quantity != 2 {
		t.Errorf("unknown = %+v", unknown)
	}
}

func TestClient_GetCardsByIdentifiers_Batches(t *testing.T) {
	batches := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		batches++
		var req CollectionRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Identifiers) > MaxBatchSize {
			t.Errorf("batch of %d exceeds limit", len(req.Identifiers))
		}
		_ = json.NewEncoder(w).Encode(CollectionResponse{Object: "list"})
	}))
	defer server.Close()

	ids := make([]CardIdentifier, MaxBatchSize*2+1)
	for i := range ids {
		ids[i] = CardIdentifier{Name: "Card"}
	}

	client := newTestClient(server.URL, nil)
	if _, _, err := client.GetCardsByIdentifiers(context.Background(), ids); err != nil {
		t.Fatalf("GetCardsByIdentifiers() error = %v", err)
	}
	if batches != 3 {
		t.Errorf("batches = %d, want 3", batches)
	}

	cards, notFound, err := client.GetCardsByIdentifiers(context.Background(), nil)
	if err != nil || len(cards) != 0 || notFound != nil {
		t.Errorf("empty input = %v, %v, %v", cards, notFound, err)
	}
}
