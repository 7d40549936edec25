// Package catalog resolves keyword and topic references to named context
// documents listed in a fixed YAML manifest.
package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"december/internal/logging"
)

// Entry describes one context document in the manifest.
type Entry struct {
	Name        string   `yaml:"name"`
	Path        string   `yaml:"path"`
	Description string   `yaml:"description,omitempty"`
	Topics      []string `yaml:"topics,omitempty"`
	Keywords    []string `yaml:"keywords,omitempty"`
}

// Manifest is the on-disk catalog format.
type Manifest struct {
	Entries []Entry `yaml:"entries"`
}

type compiledEntry struct {
	Entry
	keywords []glob.Glob
}

// Catalog holds the loaded manifest and document contents.
type Catalog struct {
	mu           sync.RWMutex
	manifestPath string
	entries      []compiledEntry
	documents    map[string]string
}

// Load reads and compiles the manifest, then loads every listed document
// concurrently. Document paths resolve relative to the manifest's directory.
func Load(ctx context.Context, manifestPath string) (*Catalog, error) {
	c := &Catalog{manifestPath: manifestPath}
	if err := c.reload(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Catalog) reload(ctx context.Context) error {
	data, err := os.ReadFile(c.manifestPath)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return fmt.Errorf("failed to parse manifest: %w", err)
	}

	entries := make([]compiledEntry, 0, len(manifest.Entries))
	for _, e := range manifest.Entries {
		if e.Name == "" || e.Path == "" {
			return fmt.Errorf("manifest entry requires both name and path (got name=%q path=%q)", e.Name, e.Path)
		}
		ce := compiledEntry{Entry: e}
		for _, kw := range e.Keywords {
			g, err := glob.Compile(strings.ToLower(kw))
			if err != nil {
				return fmt.Errorf("entry %q: invalid keyword pattern %q: %w", e.Name, kw, err)
			}
			ce.keywords = append(ce.keywords, g)
		}
		entries = append(entries, ce)
	}

	baseDir := filepath.Dir(c.manifestPath)
	documents := make(map[string]string, len(entries))
	var docMu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, e := range entries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := e.Path
			if !filepath.IsAbs(path) {
				path = filepath.Join(baseDir, path)
			}
			body, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("entry %q: %w", e.Name, err)
			}
			docMu.Lock()
			documents[e.Name] = string(body)
			docMu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	c.mu.Lock()
	c.entries = entries
	c.documents = documents
	c.mu.Unlock()

	logging.Catalog("loaded %d catalog entries from %s", len(entries), c.manifestPath)
	return nil
}

// Entries returns the manifest entries.
func (c *Catalog) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.Entry
	}
	return out
}

// Lookup returns the entries matching a query, in manifest order. An entry
// matches when any keyword pattern matches a query word, any topic appears
// in the query, or the entry name appears as a substring.
func (c *Catalog) Lookup(query string) []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lower := strings.ToLower(query)
	words := strings.Fields(lower)

	var out []Entry
	for _, e := range c.entries {
		if c.matches(e, lower, words) {
			out = append(out, e.Entry)
		}
	}
	logging.CatalogDebug("lookup %q matched %d entries", query, len(out))
	return out
}

func (c *Catalog) matches(e compiledEntry, lowerQuery string, words []string) bool {
	if strings.Contains(lowerQuery, strings.ToLower(e.Name)) {
		return true
	}
	for _, topic := range e.Topics {
		if strings.Contains(lowerQuery, strings.ToLower(topic)) {
			return true
		}
	}
	for _, g := range e.keywords {
		for _, w := range words {
			if g.Match(w) {
				return true
			}
		}
	}
	return false
}

// Document returns the loaded contents of a named entry.
func (c *Catalog) Document(name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	body, ok := c.documents[name]
	return body, ok
}
