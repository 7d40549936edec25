package perception

import (
	"fmt"
	"regexp"
	"sort"

	"december/internal/types"
)

// CategoryDef defines one requirement category in the static taxonomy.
// The taxonomy is fixed: membership of a category in a priority tier never
// changes at runtime, only learned exemplars are added on top.
type CategoryDef struct {
	Category string
	Priority types.Priority

	// Synonyms are lowercase substrings that implicate the category.
	Synonyms []string

	// Patterns are regexes that implicate the category.
	Patterns []string

	// Ambiguities describe triggers that leave the category unresolved
	// unless a resolver keyword appears in the same utterance.
	Ambiguities []AmbiguityDef

	// Default fills the gap when the category is unmentioned in an
	// implement response. Only meaningful for important and supplementary
	// tiers; critical categories block instead.
	Default string

	// Alternatives are optionally mentioned after the fact for
	// supplementary gaps.
	Alternatives []string

	// Rationale explains why the category matters, used when asking.
	Rationale string
}

// AmbiguityDef describes a term that implicates a critical category with
// more than one plausible interpretation.
type AmbiguityDef struct {
	// Term is the surface name used in questions ("authentication").
	Term string

	// Pattern detects the trigger.
	Pattern string

	// Resolvers are lowercase keywords that settle the interpretation.
	// If any resolver appears, the item is present, not ambiguous.
	Resolvers []string

	// Options is the forced-choice set offered to the user.
	Options []string

	// DefaultOption is suggested when the user declines to choose.
	DefaultOption string

	// Question is the targeted question asked when unresolved.
	Question string

	Rationale string
}

// compiledCategory is a CategoryDef with compiled regexes.
type compiledCategory struct {
	def         CategoryDef
	patterns    []*regexp.Regexp
	ambiguities []compiledAmbiguity
}

type compiledAmbiguity struct {
	def     AmbiguityDef
	pattern *regexp.Regexp
}

// Taxonomy is the compiled static taxonomy plus any learned exemplars.
type Taxonomy struct {
	categories []compiledCategory
	exemplars  []Exemplar
	store      ExemplarStore
}

// NewTaxonomy compiles the default taxonomy table.
func NewTaxonomy() (*Taxonomy, error) {
	return newTaxonomyFrom(DefaultTaxonomyData)
}

func newTaxonomyFrom(defs []CategoryDef) (*Taxonomy, error) {
	t := &Taxonomy{}
	for _, def := range defs {
		cc := compiledCategory{def: def}
		for _, p := range def.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("category %s: bad pattern %q: %w", def.Category, p, err)
			}
			cc.patterns = append(cc.patterns, re)
		}
		for _, amb := range def.Ambiguities {
			re, err := regexp.Compile(amb.Pattern)
			if err != nil {
				return nil, fmt.Errorf("category %s: bad ambiguity pattern %q: %w", def.Category, amb.Pattern, err)
			}
			cc.ambiguities = append(cc.ambiguities, compiledAmbiguity{def: amb, pattern: re})
		}
		t.categories = append(t.categories, cc)
	}
	return t, nil
}

// Categories returns the category definitions in declaration order.
func (t *Taxonomy) Categories() []CategoryDef {
	defs := make([]CategoryDef, len(t.categories))
	for i, cc := range t.categories {
		defs[i] = cc.def
	}
	return defs
}

// Lookup returns the definition for a category name.
func (t *Taxonomy) Lookup(category string) (CategoryDef, bool) {
	for _, cc := range t.categories {
		if cc.def.Category == category {
			return cc.def, true
		}
	}
	return CategoryDef{}, false
}

// ByTier returns category names grouped under the given priority tier,
// sorted for stable output.
func (t *Taxonomy) ByTier(p types.Priority) []string {
	var names []string
	for _, cc := range t.categories {
		if cc.def.Priority == p {
			names = append(names, cc.def.Category)
		}
	}
	sort.Strings(names)
	return names
}

// DefaultTaxonomyData defines the taxonomy in Go structures to keep behavior
// deterministic and testable. The tier assignments are fixed:
// functionality, UI requirements, integration points, and data/security needs
// are critical; styling, performance, accessibility, validation, and error
// handling are important; advanced features, extensibility, and analytics are
// supplementary.
var DefaultTaxonomyData = []CategoryDef{
	// --- CRITICAL: missing or ambiguous blocks implementation ---
	{
		Category: "functionality",
		Priority: types.PriorityCritical,
		Synonyms: []string{
			"form", "page", "button", "list", "table", "dashboard", "modal",
			"endpoint", "api", "component", "feature", "search", "upload",
			"navigation", "menu", "chart", "editor", "feed",
		},
		Patterns: []string{
			`(?i)\b(create|add|build|implement|generate)\b.+\b(form|page|button|list|table|dashboard|component|endpoint|feature|view|screen)s?\b`,
		},
		Ambiguities: []AmbiguityDef{
			{
				Term:    "requested change",
				Pattern: `(?i)^(please\s+)?(can\s+you\s+)?(make|improve|fix|update|change)\s+(it|this|that|things?|stuff|the\s+app)\b\s*\S*$`,
				Options: []string{
					"a specific feature or page",
					"overall styling",
					"performance",
				},
				Question:  "Which part of the application should change, and in what way?",
				Rationale: "The request names no concrete feature, so any implementation would be a guess.",
			},
		},
		Rationale: "The core behavior to build must be unambiguous before any code is written.",
	},
	{
		Category: "ui_requirements",
		Priority: types.PriorityCritical,
		Synonyms: []string{
			"field", "fields", "layout", "screen", "label", "placeholder",
			"column", "row", "input", "dropdown", "checkbox", "tab",
		},
		Patterns: []string{
			`(?i)\bwith\b.+\bfields?\b`,
			`(?i)\b(name|email|message|password|title|description)\b.+\bfields?\b`,
		},
		Rationale: "Concrete UI structure (which fields, which controls) determines the generated markup.",
	},
	{
		Category: "integration_points",
		Priority: types.PriorityCritical,
		Synonyms: []string{
			"stripe", "github", "rest", "graphql", "webhook", "oauth provider",
			"third-party", "sdk",
		},
		Patterns: []string{
			`(?i)\b(integrate|connect|hook\s+up|sync)\b`,
		},
		Ambiguities: []AmbiguityDef{
			{
				Term:    "integration target",
				Pattern: `(?i)\b(integrate|connect|hook\s+up|sync)\b(?:.*\b(backend|api|service|server)\b)?`,
				Resolvers: []string{
					"stripe", "github", "slack", "rest", "graphql", "grpc",
					"webhook", "http://", "https://", "endpoint at",
				},
				Options: []string{
					"an existing REST API (provide base URL)",
					"a GraphQL API",
					"a third-party service (name it)",
				},
				Question:  "Which system should this integrate with, and over what protocol?",
				Rationale: "An integration cannot be wired without knowing the target system and protocol.",
			},
		},
		Rationale: "External systems the code must talk to are part of the contract, not a styling choice.",
	},
	{
		Category: "data_requirements",
		Priority: types.PriorityCritical,
		Synonyms: []string{
			"schema", "model", "record", "entity",
		},
		Patterns: []string{
			`(?i)\b(store|save|persist)\b.+\b(data|submissions?|records?|entries|results?)\b`,
		},
		Ambiguities: []AmbiguityDef{
			{
				Term:    "data storage",
				Pattern: `(?i)\b(store|save|persist)\b.+\b(data|submissions?|records?|entries|results?)\b`,
				Resolvers: []string{
					"postgres", "postgresql", "mysql", "sqlite", "mongodb",
					"localstorage", "local storage", "supabase", "firebase",
					"in memory", "in-memory",
				},
				Options: []string{
					"a relational database (e.g. Postgres)",
					"browser local storage",
					"an existing backend API",
				},
				DefaultOption: "a relational database (e.g. Postgres)",
				Question:      "Where should the data be stored?",
				Rationale:     "Persistence target changes the data layer entirely; a wrong guess is expensive to undo.",
			},
		},
		Rationale: "What is stored, and where, shapes the data model and cannot be assumed.",
	},
	{
		Category: "security_privacy",
		Priority: types.PriorityCritical,
		Synonyms: []string{
			"permission", "role", "encryption", "gdpr", "privacy",
		},
		Patterns: []string{
			`(?i)\b(auth|login|log\s*in|sign\s*in|sign\s*up|access\s+control)\b`,
		},
		Ambiguities: []AmbiguityDef{
			{
				Term:    "authentication",
				Pattern: `(?i)\b(authenticat\w*|auth\b|login|log\s*in|sign\s*in|sign\s*up)`,
				Resolvers: []string{
					"session-based", "session based", "cookie", "jwt",
					"token-based", "token based", "oauth", "oidc", "sso",
					"magic link", "passkey", "basic auth",
				},
				Options: []string{
					"session-based (server-side sessions with cookies)",
					"token-based (JWT)",
					"OAuth / OIDC via an identity provider",
				},
				DefaultOption: "session-based (server-side sessions with cookies)",
				Question:      "Which authentication method should be used?",
				Rationale:     "Session, token, and OAuth flows produce incompatible architectures; the method must be chosen up front.",
			},
		},
		Rationale: "Security decisions are one-way doors; defaults here are never silently applied.",
	},

	// --- IMPORTANT: gaps resolved via stated, labeled assumptions ---
	{
		Category: "styling",
		Priority: types.PriorityImportant,
		Synonyms: []string{"style", "styling", "css", "theme", "color", "font", "design", "tailwind", "dark mode"},
		Default:  "minimal modern styling with a utility-first CSS approach",
		Rationale: "Visual treatment can be assumed from modern web defaults and restyled later.",
	},
	{
		Category: "performance",
		Priority: types.PriorityImportant,
		Synonyms: []string{"performance", "fast", "latency", "cache", "lazy load", "optimize", "bundle size"},
		Default:  "no special performance budget; code-split and lazy-load where idiomatic",
	},
	{
		Category: "accessibility",
		Priority: types.PriorityImportant,
		Synonyms: []string{"accessibility", "a11y", "aria", "screen reader", "keyboard navigation", "contrast"},
		Default:  "semantic HTML with labeled controls and keyboard focus states",
	},
	{
		Category: "validation",
		Priority: types.PriorityImportant,
		Synonyms: []string{"validation", "validate", "required field", "format check", "sanitize"},
		Default:  "client-side required-field and format validation on all inputs",
	},
	{
		Category: "error_handling",
		Priority: types.PriorityImportant,
		Synonyms: []string{"error handling", "error message", "failure", "retry", "fallback"},
		Default:  "inline error messages per field plus a generic failure notice",
	},

	// --- SUPPLEMENTARY: gaps resolved silently via best practice ---
	{
		Category: "advanced_features",
		Priority: types.PrioritySupplementary,
		Synonyms: []string{"export", "import", "bulk", "offline", "realtime", "drag and drop", "keyboard shortcut"},
		Default:  "no features beyond those requested",
		Alternatives: []string{
			"CSV export", "keyboard shortcuts",
		},
	},
	{
		Category: "extensibility",
		Priority: types.PrioritySupplementary,
		Synonyms: []string{"extensible", "plugin", "reusable", "configurable", "abstraction"},
		Default:  "componentized structure without premature abstraction",
	},
	{
		Category: "logging_analytics",
		Priority: types.PrioritySupplementary,
		Synonyms: []string{"analytics", "logging", "tracking", "metrics", "telemetry"},
		Default:  "no analytics instrumentation",
		Alternatives: []string{
			"a pluggable analytics hook",
		},
	},
}
