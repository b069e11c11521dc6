// Package phrases generates the nonsense answers to "why".
package phrases

import (
	"math/rand/v2"
	"strings"
	"sync"
)

type weighted[T any] struct {
	w int
	v T
}

func pick[T any](r *rand.Rand, items []weighted[T]) T {
	total := 0
	for _, it := range items {
		total += it.w
	}
	n := r.IntN(total)
	for _, it := range items {
		if n < it.w {
			return it.v
		}
		n -= it.w
	}
	return items[len(items)-1].v
}

type rule func(g *Generator) string

func words(ws ...string) []weighted[string] {
	out := make([]weighted[string], len(ws))
	for i, w := range ws {
		out[i] = weighted[string]{1, w}
	}
	return out
}

// Generator is safe for concurrent use.
type Generator struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a generator seeded from the runtime's random source.
func New() *Generator {
	return &Generator{r: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

// NewSeeded returns a deterministic generator.
func NewSeeded(seed uint64) *Generator {
	return &Generator{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Why answers the question "why".
func (g *Generator) Why() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.expand([]weighted[rule]{
		{1, special},
		{4, phrase},
		{6, sentence},
	})
}

func (g *Generator) word(items []weighted[string]) string { return pick(g.r, items) }
func (g *Generator) expand(items []weighted[rule]) string { return pick(g.r, items)(g) }

var specials = words(
	"why not?",
	"woof woof!",
	"why indeed?",
	"THERE IS AS YET INSUFFICIENT DATA FOR A MEANINGFUL ANSWER",
	"life is full of mysteries",
	"I'm not telling you",
	"you know why",
)

func special(g *Generator) string { return g.word(specials) }

func phrase(g *Generator) string {
	return g.expand([]weighted[rule]{
		{1, func(g *Generator) string { return "for the " + g.word(nounedVerbs) + " " + prepositionalPhrase(g) }},
		{1, func(g *Generator) string { return "because " + sentence(g) }},
		{1, func(g *Generator) string { return "so as to " + presentVerbPhrase(g) + " " + object(g) }},
		{1, func(g *Generator) string { return "to " + presentVerbPhrase(g) + " " + object(g) }},
	})
}

func prepositionalPhrase(g *Generator) string {
	prep := g.word(words("of", "from"))
	return g.expand([]weighted[rule]{
		{1, func(g *Generator) string { return prep + " " + g.word(articles) + " " + nounPhrase(g) }},
		{1, func(g *Generator) string { return prep + " " + g.word(properNouns) }},
		{1, func(g *Generator) string { return prep + " " + g.word(accusatives) }},
	})
}

func sentence(g *Generator) string { return subject(g) + " " + predicate(g) }

func subject(g *Generator) string {
	return g.expand([]weighted[rule]{
		{1, func(g *Generator) string { return g.word(properNouns) }},
		{1, func(g *Generator) string { return g.word(nominatives) }},
		{1, func(g *Generator) string { return g.word(articles) + " " + nounPhrase(g) }},
	})
}

func nounPhrase(g *Generator) string {
	return g.expand([]weighted[rule]{
		{3, func(g *Generator) string { return g.word(nouns) }},
		{3, func(g *Generator) string { return adjectivePhrase(g) + " " + nounPhrase(g) }},
		{1, func(g *Generator) string { return nounPhrase(g) + " and " + nounPhrase(g) }},
	})
}

func adjectivePhrase(g *Generator) string {
	return g.expand([]weighted[rule]{
		{5, func(g *Generator) string { return g.word(adjectives) }},
		{1, func(g *Generator) string { return adjectivePhrase(g) + " and " + adjectivePhrase(g) }},
		{3, func(g *Generator) string { return intensifier(g) + " " + g.word(adjectives) }},
	})
}

func intensifier(g *Generator) string {
	return g.expand([]weighted[rule]{
		{2, func(g *Generator) string { return g.word(intensifiers) }},
		{1, func(g *Generator) string { return "not " + g.word(intensifiers) }},
	})
}

func predicate(g *Generator) string {
	return g.expand([]weighted[rule]{
		{1, func(g *Generator) string { return g.word(transitiveVerbs) + " " + object(g) }},
		{1, func(g *Generator) string { return g.word(intransitiveVerbs) }},
	})
}

func presentVerbPhrase(g *Generator) string {
	return g.expand([]weighted[rule]{
		{7, func(g *Generator) string { return g.word(presentVerbs) }},
		{1, func(g *Generator) string { return "obtain " + object(g) + " from" }},
	})
}

func object(g *Generator) string {
	return g.expand([]weighted[rule]{
		{1, func(g *Generator) string { return g.word(accusatives) }},
		{1, func(g *Generator) string {
			n := nounPhrase(g)
			a := g.word(articles)
			if a == "a" && strings.ContainsAny(n[:1], "aeiou") {
				a = "an"
			}
			return a + " " + n
		}},
	})
}

var (
	articles    = words("the", "some", "a")
	nominatives = words("I", "you", "he", "she", "they", "we")
	accusatives = words("me", "everyone", "her", "him", "them", "us")
	nounedVerbs = words("affection", "approval", "embrace", "honour", "love", "respect", "satisfaction")

	properNouns = []weighted[string]{
		{10, "Purple Puppy"},
		{3, "Donald Trump"},
		{5, "Woofer"},
		{2, "Purple Puppies' Porpoise"},
		{1, "Blue Puppy"},
		{1, "Red Puppy"},
		{1, "Green Puppy"},
		{1, "Yellow Puppy"},
	}

	nouns = words(
		"puppy", "cat", "kitten", "dog", "stalker", "siege tank", "marine", "marauder",
		"zealot", "zergling", "baneling", "roach", "queen", "hydralisk", "ultralisk", "adept",
		"immortal", "sentry", "high templar", "dark templar", "archon", "liberator", "raven",
		"banshee", "viking", "battlecruiser", "phoenix", "void ray", "carrier", "tempest",
		"oracle", "mutalisk", "viper", "corruptor", "brood lord", "overlord", "overseer",
		"pupper", "pawn", "knight", "rook", "king",
	)

	intensifiers = words("arbitrarily", "mildly", "moderately", "quite", "really", "somewhat", "very")

	adjectives = words(
		"purple", "green", "orange", "red", "blue", "yellow", "pink", "ultraviolet",
		"infrared", "spotted", "fluffy", "adorable", "terrified", "excited", "acceptable",
		"catlike", "doglike", "playful", "friendly", "spiky", "pointy", "aerodynamic",
		"checkered", "mottled", "two-dimensional", "tetrahedral", "triangular", "aggressive",
		"spherical", "cute", "differentiable", "open-source", "agreeable", "disagreeable",
		"tubular", "toroidal", "speckled", "simply connected",
	)

	presentVerbs = words(
		"bless", "contradict", "counter", "defeat", "discover", "encourage", "enlighten",
		"excite", "fascinate", "fool", "impress", "intimidate", "neutralise", "outwit",
		"please", "satisfy", "uplift", "vanquish", "vapoorise",
	)

	transitiveVerbs = words(
		"advanced upon", "asked", "argued with", "attacked", "begged", "betrayed", "bothered",
		"captured", "chastised", "commanded", "confessed to", "deceived", "entertained",
		"excommunicated", "fought", "helped", "hugged", "promoted", "obeyed", "threatened", "told",
	)

	intransitiveVerbs = append(words(
		"demanded it be this way", "evaporated", "had a good feeling about it", "insisted on it",
		"knew it was a good idea", "sublimated", "suggested it", "told me to", "wanted it",
	), weighted[string]{2, "exploded"})
)
