package articulation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleChangeSet() *ChangeSet {
	return &ChangeSet{Ops: []FileOp{
		{Kind: OpWrite, Path: "src/ContactForm.jsx", Contents: "export default function ContactForm() {\n  return null\n}"},
		{Kind: OpRename, Path: "src/Form.jsx", To: "src/LegacyForm.jsx"},
		{Kind: OpDelete, Path: "src/unused.js"},
		{Kind: OpDepAdd, Package: "react-hook-form", Version: "^7.51.0"},
	}}
}

func existing(paths ...string) func(string) bool {
	set := make(map[string]bool, len(paths))
	for _, p := range paths {
		set[p] = true
	}
	return func(p string) bool { return set[p] }
}

func TestChangeSetRenderParseRoundTrip(t *testing.T) {
	cs := sampleChangeSet()
	rendered := cs.Render()

	assert.Equal(t, 1, CountBlocks(rendered))

	parsed, err := ParseBlock(rendered)
	require.NoError(t, err)
	if diff := cmp.Diff(cs, parsed); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestParseBlockPreservesOperationOrder(t *testing.T) {
	raw := "<changeset>\n" +
		"<delete path=\"a.js\"/>\n" +
		"<write path=\"b.js\">\nlet x = 1\n</write>\n" +
		"<rename from=\"b.js\" to=\"c.js\"/>\n" +
		"</changeset>"

	cs, err := ParseBlock(raw)
	require.NoError(t, err)
	require.Len(t, cs.Ops, 3)
	assert.Equal(t, OpDelete, cs.Ops[0].Kind)
	assert.Equal(t, OpWrite, cs.Ops[1].Kind)
	assert.Equal(t, OpRename, cs.Ops[2].Kind)
}

func TestParseBlockRejectsMultipleBlocks(t *testing.T) {
	one := sampleChangeSet().Render()
	_, err := ParseBlock(one + "\n" + one)
	assert.Error(t, err)

	_, err = ParseBlock("no block here")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		ops     []FileOp
		exists  func(string) bool
		wantErr string
	}{
		{
			name: "write without contents",
			ops:  []FileOp{{Kind: OpWrite, Path: "a.js"}},
			wantErr: "complete file contents",
		},
		{
			name: "write without path",
			ops:  []FileOp{{Kind: OpWrite, Contents: "x"}},
			wantErr: "target path",
		},
		{
			name: "delete of unknown path",
			ops:  []FileOp{{Kind: OpDelete, Path: "ghost.js"}},
			wantErr: "neither pre-existing nor defined",
		},
		{
			name:   "delete of pre-existing path",
			ops:    []FileOp{{Kind: OpDelete, Path: "ghost.js"}},
			exists: existing("ghost.js"),
		},
		{
			name: "rename source defined earlier in block",
			ops: []FileOp{
				{Kind: OpWrite, Path: "a.js", Contents: "x"},
				{Kind: OpRename, Path: "a.js", To: "b.js"},
				{Kind: OpDelete, Path: "b.js"},
			},
		},
		{
			name: "rename then delete of stale source",
			ops: []FileOp{
				{Kind: OpWrite, Path: "a.js", Contents: "x"},
				{Kind: OpRename, Path: "a.js", To: "b.js"},
				{Kind: OpDelete, Path: "a.js"},
			},
			wantErr: "neither pre-existing nor defined",
		},
		{
			name:    "dep add without package",
			ops:     []FileOp{{Kind: OpDepAdd}},
			wantErr: "package name",
		},
		{
			name: "dep add with package",
			ops:  []FileOp{{Kind: OpDepAdd, Package: "zod"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := &ChangeSet{Ops: tt.ops}
			err := cs.Validate(tt.exists)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateResolvesContentReferences(t *testing.T) {
	appImportingForm := func() FileOp {
		return FileOp{
			Kind:     OpWrite,
			Path:     "src/App.jsx",
			Contents: "import ContactForm from './components/ContactForm'\nexport default function App() {\n  return <ContactForm />\n}",
		}
	}

	t.Run("unresolved import fails", func(t *testing.T) {
		cs := &ChangeSet{Ops: []FileOp{appImportingForm()}}
		err := cs.Validate(nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "./components/ContactForm")
	})

	t.Run("import defined later in the same block resolves", func(t *testing.T) {
		cs := &ChangeSet{Ops: []FileOp{
			appImportingForm(),
			{Kind: OpWrite, Path: "src/components/ContactForm.jsx", Contents: "export default function ContactForm() {\n  return null\n}"},
		}}
		assert.NoError(t, cs.Validate(nil))
	})

	t.Run("pre-existing file resolves", func(t *testing.T) {
		cs := &ChangeSet{Ops: []FileOp{appImportingForm()}}
		assert.NoError(t, cs.Validate(existing("src/components/ContactForm.jsx")))
	})

	t.Run("index file resolves directory import", func(t *testing.T) {
		cs := &ChangeSet{Ops: []FileOp{
			appImportingForm(),
			{Kind: OpWrite, Path: "src/components/ContactForm/index.jsx", Contents: "export { default } from './ContactForm'"},
			{Kind: OpWrite, Path: "src/components/ContactForm/ContactForm.jsx", Contents: "export default function ContactForm() {\n  return null\n}"},
		}}
		assert.NoError(t, cs.Validate(nil))
	})

	t.Run("require and parent-relative specifiers are checked", func(t *testing.T) {
		cs := &ChangeSet{Ops: []FileOp{
			{Kind: OpWrite, Path: "src/utils/format.js", Contents: "const cfg = require('../config')\nmodule.exports = cfg"},
		}}
		require.Error(t, cs.Validate(nil))
		assert.NoError(t, cs.Validate(existing("src/config.js")))
	})

	t.Run("bare package specifiers are ignored", func(t *testing.T) {
		cs := &ChangeSet{Ops: []FileOp{
			{Kind: OpWrite, Path: "src/App.jsx", Contents: "import { useState } from 'react'\nexport default function App() {\n  return null\n}"},
		}}
		assert.NoError(t, cs.Validate(nil))
	})
}

func TestPaths(t *testing.T) {
	cs := sampleChangeSet()
	assert.Equal(t, []string{"src/ContactForm.jsx", "src/LegacyForm.jsx"}, cs.Paths())
}

func TestEmpty(t *testing.T) {
	var nilSet *ChangeSet
	assert.True(t, nilSet.Empty())
	assert.True(t, (&ChangeSet{}).Empty())
	assert.False(t, sampleChangeSet().Empty())
}
