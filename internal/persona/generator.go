// Package persona generates alternate identities of a person across a fixed
// set of fictional universes.
//
// Generation is random template substitution over small fixed pools. It never
// fails: an unknown theme produces a generic fallback profile.
package persona

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"
)

const (
	fallbackDescription = "An alternate version of you"
	fallbackBackstory   = "Your story is yet to be written."
)

// Profile is a generated alternate identity
type Profile struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Backstory   string `json:"backstory"`
}

// Request is the input of one generation call
type Request struct {
	BaseName string
	// Traits is accepted for API symmetry and is not used in the output.
	Traits string
	Theme  ThemeID
}

// Source is the randomness used by a Generator.
// *rand.Rand from math/rand/v2 satisfies it.
type Source interface {
	IntN(n int) int
	Float64() float64
}

// globalSource draws from the math/rand/v2 top-level generator, which is
// seeded from system entropy and safe for concurrent use.
type globalSource struct{}

func (globalSource) IntN(n int) int   { return rand.IntN(n) }
func (globalSource) Float64() float64 { return rand.Float64() }

// Generator builds profiles. The zero value is not usable; use NewGenerator.
type Generator struct {
	src Source
}

// Option configures a Generator
type Option func(*Generator)

// WithSource replaces the default random source, e.g. with a seeded PCG for
// reproducible output. The generator is only as goroutine-safe as src.
func WithSource(src Source) Option {
	return func(g *Generator) {
		if src != nil {
			g.src = src
		}
	}
}

// NewGenerator creates a generator backed by the process-wide random source
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{src: globalSource{}}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

var defaultGenerator = NewGenerator()

// Generate builds a profile with the process-wide random source
func Generate(baseName, traits string, theme ThemeID) Profile {
	return defaultGenerator.Generate(baseName, traits, theme)
}

// GenerateRequest is Generate taking a Request
func (g *Generator) GenerateRequest(req Request) Profile {
	return g.Generate(req.BaseName, req.Traits, req.Theme)
}

// Generate builds the profile of baseName in the given theme
func (g *Generator) Generate(baseName, traits string, theme ThemeID) Profile {
	firstName := FirstName(baseName)

	def := lookup(theme)
	if def == nil {
		return Profile{
			Name:        firstName,
			Description: fallbackDescription,
			Backstory:   fallbackBackstory,
		}
	}

	return Profile{
		Name:        g.name(def, firstName),
		Description: g.description(def, traits),
		Backstory:   def.backstory,
	}
}

// FirstName returns baseName up to its first whitespace character
func FirstName(baseName string) string {
	if i := strings.IndexFunc(baseName, unicode.IsSpace); i >= 0 {
		return baseName[:i]
	}
	return baseName
}

func (g *Generator) name(def *theme, firstName string) string {
	heads := g.src.Float64() > 0.5

	branch := def.tails
	if heads {
		branch = def.heads
	}

	stem := firstName
	if def.stem != nil {
		stem = def.stem(firstName, heads)
	}

	return branch.join(stem, g.pick(branch.pool))
}

// description ignores traits; the output distribution does not depend on them.
func (g *Generator) description(def *theme, _ string) string {
	return fmt.Sprintf(def.template, g.pick(def.roles))
}

func (g *Generator) pick(pool []string) string {
	return pool[g.src.IntN(len(pool))]
}
