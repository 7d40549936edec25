package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testManifest = `entries:
  - name: routing
    path: routing.md
    description: client-side routing patterns
    topics: [navigation, routes]
    keywords: ["rout*", "navigat*"]
  - name: forms
    path: forms.md
    topics: [validation]
    keywords: ["form*", "input*"]
`

func writeTestCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "catalog.yaml"), []byte(testManifest), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "routing.md"), []byte("# Routing\n\nUse a router."), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "forms.md"), []byte("# Forms\n\nValidate inputs."), 0644))
	return filepath.Join(dir, "catalog.yaml")
}

func TestLoadAndLookup(t *testing.T) {
	c, err := Load(context.Background(), writeTestCatalog(t))
	require.NoError(t, err)
	require.Len(t, c.Entries(), 2)

	tests := []struct {
		query string
		want  []string
	}{
		{"how does routing work", []string{"routing"}},
		{"add navigation to the app", []string{"routing"}},
		{"create a contact form", []string{"forms"}},
		{"validation rules", []string{"forms"}},
		{"how do routes handle form input", []string{"routing", "forms"}},
		{"deploy to production", nil},
	}
	for _, tt := range tests {
		var names []string
		for _, e := range c.Lookup(tt.query) {
			names = append(names, e.Name)
		}
		assert.Equal(t, tt.want, names, "query: %q", tt.query)
	}
}

func TestDocumentContents(t *testing.T) {
	c, err := Load(context.Background(), writeTestCatalog(t))
	require.NoError(t, err)

	body, ok := c.Document("routing")
	require.True(t, ok)
	assert.Contains(t, body, "Use a router.")

	_, ok = c.Document("unknown")
	assert.False(t, ok)
}

func TestLoadFailsOnMissingDocument(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte("entries:\n  - name: ghost\n    path: ghost.md\n"), 0644))

	_, err := Load(context.Background(), manifest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestLoadRejectsBadManifest(t *testing.T) {
	dir := t.TempDir()
	manifest := filepath.Join(dir, "catalog.yaml")

	require.NoError(t, os.WriteFile(manifest, []byte("entries:\n  - name: incomplete\n"), 0644))
	_, err := Load(context.Background(), manifest)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(manifest, []byte("entries:\n  - name: bad\n    path: bad.md\n    keywords: [\"[\"]\n"), 0644))
	_, err = Load(context.Background(), manifest)
	assert.Error(t, err)
}

func TestWatcherStartsAndStops(t *testing.T) {
	c, err := Load(context.Background(), writeTestCatalog(t))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w, err := Watch(ctx, c)
	require.NoError(t, err)
	require.NoError(t, w.Close())
}
