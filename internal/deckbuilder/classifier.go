package deckbuilder

import (
	"strings"
)

// Archetype is a strategic theme inferred from a commander's rules text.
type Archetype struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	// Family is a card-type term that earns a bonus when present on a card.
	Family string `json:"family,omitempty"`
}

// PrimaryKeyword returns the first keyword, or "" for keyword-less archetypes.
func (a Archetype) PrimaryKeyword() string {
	if len(a.Keywords) == 0 {
		return ""
	}
	return a.Keywords[0]
}

// Archetype names.
const (
	ArchetypeTokenSwarm       = "Token Swarm"
	ArchetypeAristocrats      = "Aristocrats"
	ArchetypeCardAdvantage    = "Card Advantage"
	ArchetypeGraveyard        = "Graveyard Recursion"
	ArchetypeCounters         = "+1/+1 Counters"
	ArchetypeArtifacts        = "Artifacts & Equipment"
	ArchetypeEnchantments     = "Enchantments"
	ArchetypeAggro            = "Aggro"
	ArchetypeControl          = "Control"
	ArchetypeGeneralGoodstuff = "General Goodstuff"
)

const (
	maxArchetypesPerCommander = 3
	aggroMaxCMC               = 3
	controlMinCMC             = 5
)

// ruleInput is the lower-cased view of a commander the rules match against.
type ruleInput struct {
	text     string
	typeLine string
	cmc      float64
}

func (in ruleInput) has(term string) bool {
	return strings.Contains(in.text, term) || strings.Contains(in.typeLine, term)
}

func (in ruleInput) hasAll(terms ...string) bool {
	for _, t := range terms {
		if !in.has(t) {
			return false
		}
	}
	return true
}

func (in ruleInput) hasAny(terms ...string) bool {
	for _, t := range terms {
		if in.has(t) {
			return true
		}
	}
	return false
}

// strategyRule pairs an archetype with the predicate that selects it.
type strategyRule struct {
	archetype Archetype
	match     func(ruleInput) bool
}

var combatKeywords = []string{"haste", "first strike", "double strike", "menace", "trample", "attacks", "combat damage"}

// strategyRules are evaluated in order; earlier rules win when more than
// maxArchetypesPerCommander match.
var strategyRules = []strategyRule{
	{
		archetype: Archetype{
			Name:        ArchetypeTokenSwarm,
			Description: "Go wide with creature tokens and reward having a large board",
			Keywords:    []string{"token", "create", "populate", "creatures you control"},
			Family:      "token",
		},
		match: func(in ruleInput) bool { return in.hasAll("create", "token") },
	},
	{
		archetype: Archetype{
			Name:        ArchetypeAristocrats,
			Description: "Sacrifice creatures for value and drain opponents with death triggers",
			Keywords:    []string{"sacrifice", "dies", "leaves the battlefield", "lose life"},
		},
		match: func(in ruleInput) bool { return in.hasAny("sacrifice", "dies") },
	},
	{
		archetype: Archetype{
			Name:        ArchetypeCardAdvantage,
			Description: "Out-draw the table and convert extra cards into inevitability",
			Keywords:    []string{"draw", "scry", "look at the top"},
		},
		match: func(in ruleInput) bool { return in.has("draw") },
	},
	{
		archetype: Archetype{
			Name:        ArchetypeGraveyard,
			Description: "Fill the graveyard and bring threats back again and again",
			Keywords:    []string{"graveyard", "return target", "mill"},
		},
		match: func(in ruleInput) bool { return in.has("graveyard") },
	},
	{
		archetype: Archetype{
			Name:        ArchetypeCounters,
			Description: "Grow creatures with +1/+1 counters and proliferate them",
			Keywords:    []string{"+1/+1 counter", "proliferate", "counter on"},
		},
		match: func(in ruleInput) bool { return in.hasAny("+1/+1 counter", "proliferate") },
	},
	{
		archetype: Archetype{
			Name:        ArchetypeArtifacts,
			Description: "Leverage artifacts and equipment for value and combat power",
			Keywords:    []string{"artifact", "equip", "equipment", "treasure"},
			Family:      "artifact",
		},
		match: func(in ruleInput) bool { return in.hasAny("artifact", "equip") },
	},
	{
		archetype: Archetype{
			Name:        ArchetypeEnchantments,
			Description: "Build an enchantment-heavy board and cash in on enchantment triggers",
			Keywords:    []string{"enchantment", "aura", "constellation"},
			Family:      "enchantment",
		},
		match: func(in ruleInput) bool { return in.hasAny("enchantment", "aura") },
	},
	{
		archetype: Archetype{
			Name:        ArchetypeAggro,
			Description: "Cheap, evasive threats that pressure life totals early",
			Keywords:    []string{"haste", "attacks", "combat damage", "first strike", "double strike", "menace", "trample"},
		},
		match: func(in ruleInput) bool {
			return in.cmc <= aggroMaxCMC && in.hasAny(combatKeywords...)
		},
	},
	{
		archetype: Archetype{
			Name:        ArchetypeControl,
			Description: "Answer every threat and win late with powerful spells",
			Keywords:    []string{"counter target", "destroy", "exile", "return target"},
		},
		match: func(in ruleInput) bool {
			return in.cmc >= controlMinCMC || in.hasAny("counter", "destroy")
		},
	},
}

var fallbackArchetype = Archetype{
	Name:        ArchetypeGeneralGoodstuff,
	Description: "The strongest cards in your colors without a narrow theme",
	Keywords:    []string{},
}

// Classify returns up to three archetypes suggested by the commander's text,
// in rule order. It always returns at least one archetype.
func Classify(commander CardRecord) []Archetype {
	in := ruleInput{
		text:     strings.ToLower(commander.OracleText),
		typeLine: strings.ToLower(commander.TypeLine),
		cmc:      commander.CMC,
	}

	matched := make([]Archetype, 0, maxArchetypesPerCommander)
	for _, rule := range strategyRules {
		if !rule.match(in) {
			continue
		}
		matched = append(matched, cloneArchetype(rule.archetype))
		if len(matched) == maxArchetypesPerCommander {
			break
		}
	}

	if len(matched) == 0 {
		return []Archetype{cloneArchetype(fallbackArchetype)}
	}
	return matched
}

// cloneArchetype copies the keyword slice so callers cannot mutate the rule table.
func cloneArchetype(a Archetype) Archetype {
	kw := make([]string, len(a.Keywords))
	copy(kw, a.Keywords)
	a.Keywords = kw
	return a
}
