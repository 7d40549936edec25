package articulation

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"
)

// =============================================================================
// CHANGE SET - The Aggregated Change Block
// =============================================================================
// Every file operation an implement response performs nests inside one
// aggregated change block. The block uses a small tag grammar so it can be
// rendered and re-parsed without ambiguity:
//
//	<changeset>
//	<write path="src/App.jsx">
//	...complete file contents...
//	</write>
//	<rename from="src/old.js" to="src/new.js"/>
//	<delete path="src/dead.js"/>
//	<dep add="react-router-dom" version="^6.22.0"/>
//	</changeset>

// OpKind identifies a file operation inside a change set.
type OpKind string

const (
	OpWrite  OpKind = "write"
	OpRename OpKind = "rename"
	OpDelete OpKind = "delete"
	OpDepAdd OpKind = "dep-add"
)

// FileOp is one operation inside the aggregated change block.
type FileOp struct {
	Kind OpKind

	// Path is the target for write and delete, and the source for rename.
	Path string

	// To is the rename destination.
	To string

	// Contents is the complete new file body for a write. Partial files
	// are not representable.
	Contents string

	// Package and Version describe a dependency addition.
	Package string
	Version string
}

// ChangeSet is the ordered list of operations for one response.
type ChangeSet struct {
	Ops []FileOp
}

// Empty reports whether the change set performs no operations.
func (cs *ChangeSet) Empty() bool {
	return cs == nil || len(cs.Ops) == 0
}

// Paths returns every path the change set defines (writes and rename
// destinations), sorted.
func (cs *ChangeSet) Paths() []string {
	seen := make(map[string]bool)
	for _, op := range cs.Ops {
		switch op.Kind {
		case OpWrite:
			seen[op.Path] = true
		case OpRename:
			seen[op.To] = true
		}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Validate checks the structural rules of the change block. The exists
// predicate answers whether a path is already present in the project before
// this response; paths a write or rename defines earlier in the same block
// also count as resolvable.
func (cs *ChangeSet) Validate(exists func(path string) bool) error {
	if exists == nil {
		exists = func(string) bool { return false }
	}

	defined := make(map[string]bool)
	resolvable := func(p string) bool {
		return defined[p] || exists(p)
	}

	for i, op := range cs.Ops {
		switch op.Kind {
		case OpWrite:
			if op.Path == "" {
				return fmt.Errorf("op %d: write requires a target path", i)
			}
			if strings.TrimSpace(op.Contents) == "" {
				return fmt.Errorf("op %d: write to %q requires complete file contents", i, op.Path)
			}
			defined[op.Path] = true
		case OpRename:
			if op.Path == "" || op.To == "" {
				return fmt.Errorf("op %d: rename requires both source and destination", i)
			}
			if !resolvable(op.Path) {
				return fmt.Errorf("op %d: rename source %q is neither pre-existing nor defined in this block", i, op.Path)
			}
			delete(defined, op.Path)
			defined[op.To] = true
		case OpDelete:
			if op.Path == "" {
				return fmt.Errorf("op %d: delete requires a target path", i)
			}
			if !resolvable(op.Path) {
				return fmt.Errorf("op %d: delete target %q is neither pre-existing nor defined in this block", i, op.Path)
			}
			delete(defined, op.Path)
		case OpDepAdd:
			if op.Package == "" {
				return fmt.Errorf("op %d: dependency addition requires a package name", i)
			}
		default:
			return fmt.Errorf("op %d: unknown operation kind %q", i, op.Kind)
		}
	}

	// Second pass: every relative path referenced inside written contents
	// must resolve against the block's final state or a pre-existing file.
	// References may point forward, so this runs after all ops are applied.
	for i, op := range cs.Ops {
		if op.Kind != OpWrite || !defined[op.Path] {
			continue
		}
		for _, ref := range relativeRefs(op.Contents) {
			if !refResolves(op.Path, ref, resolvable) {
				return fmt.Errorf("op %d: %s references %q, which is neither pre-existing nor defined in this block", i, op.Path, ref)
			}
		}
	}
	return nil
}

// refExtensions are tried when a reference omits its file extension, the way
// module specifiers usually do.
var refExtensions = []string{"", ".js", ".jsx", ".ts", ".tsx", ".mjs", ".css", ".json", ".vue", ".svelte"}

var relativeRefPattern = regexp.MustCompile(`(?:\bfrom\s*|\bimport\s*\(?\s*|\brequire\s*\(\s*)['"](\.\.?/[^'"]+)['"]`)

// relativeRefs returns the relative module specifiers a file's contents
// import or require. Bare specifiers (package imports) are not paths and are
// left to the dependency ops.
func relativeRefs(contents string) []string {
	var refs []string
	for _, m := range relativeRefPattern.FindAllStringSubmatch(contents, -1) {
		refs = append(refs, m[1])
	}
	return refs
}

// refResolves checks a relative reference from the importing file's
// directory against the resolvable set, trying extensionless, extension, and
// index forms.
func refResolves(fromPath, ref string, resolvable func(string) bool) bool {
	base := path.Join(path.Dir(fromPath), ref)
	for _, ext := range refExtensions {
		if resolvable(base + ext) {
			return true
		}
		if ext != "" && resolvable(path.Join(base, "index"+ext)) {
			return true
		}
	}
	return false
}

// Render produces the aggregated change block text.
func (cs *ChangeSet) Render() string {
	var b strings.Builder
	b.WriteString("<changeset>\n")
	for _, op := range cs.Ops {
		switch op.Kind {
		case OpWrite:
			fmt.Fprintf(&b, "<write path=%q>\n", op.Path)
			b.WriteString(strings.TrimRight(op.Contents, "\n"))
			b.WriteString("\n</write>\n")
		case OpRename:
			fmt.Fprintf(&b, "<rename from=%q to=%q/>\n", op.Path, op.To)
		case OpDelete:
			fmt.Fprintf(&b, "<delete path=%q/>\n", op.Path)
		case OpDepAdd:
			if op.Version != "" {
				fmt.Fprintf(&b, "<dep add=%q version=%q/>\n", op.Package, op.Version)
			} else {
				fmt.Fprintf(&b, "<dep add=%q/>\n", op.Package)
			}
		}
	}
	b.WriteString("</changeset>")
	return b.String()
}

// =============================================================================
// PARSING
// =============================================================================

var (
	changesetBlockPattern = regexp.MustCompile(`(?s)<changeset>\n?(.*?)</changeset>`)
	writeOpPattern        = regexp.MustCompile(`(?s)<write path="([^"]+)">\n?(.*?)\n?</write>`)
	renameOpPattern       = regexp.MustCompile(`<rename from="([^"]+)" to="([^"]+)"\s*/>`)
	deleteOpPattern       = regexp.MustCompile(`<delete path="([^"]+)"\s*/>`)
	depOpPattern          = regexp.MustCompile(`<dep add="([^"]+)"(?: version="([^"]*)")?\s*/>`)
	opStartPattern        = regexp.MustCompile(`<(write|rename|delete|dep)[ >]`)
)

// CountBlocks returns the number of aggregated change blocks in a rendered
// response.
func CountBlocks(raw string) int {
	return len(changesetBlockPattern.FindAllString(raw, -1))
}

// ParseBlock extracts and parses the single change block from a rendered
// response. It fails when the response holds zero or more than one block.
func ParseBlock(raw string) (*ChangeSet, error) {
	blocks := changesetBlockPattern.FindAllStringSubmatch(raw, -1)
	switch len(blocks) {
	case 0:
		return nil, fmt.Errorf("no change block found")
	case 1:
	default:
		return nil, fmt.Errorf("found %d change blocks, expected exactly one", len(blocks))
	}
	return parseOps(blocks[0][1])
}

// parseOps parses the body of one change block in document order.
func parseOps(body string) (*ChangeSet, error) {
	type located struct {
		start int
		op    FileOp
	}
	var ops []located

	for _, m := range writeOpPattern.FindAllStringSubmatchIndex(body, -1) {
		ops = append(ops, located{m[0], FileOp{
			Kind:     OpWrite,
			Path:     body[m[2]:m[3]],
			Contents: body[m[4]:m[5]],
		}})
	}
	for _, m := range renameOpPattern.FindAllStringSubmatchIndex(body, -1) {
		ops = append(ops, located{m[0], FileOp{
			Kind: OpRename,
			Path: body[m[2]:m[3]],
			To:   body[m[4]:m[5]],
		}})
	}
	for _, m := range deleteOpPattern.FindAllStringSubmatchIndex(body, -1) {
		ops = append(ops, located{m[0], FileOp{
			Kind: OpDelete,
			Path: body[m[2]:m[3]],
		}})
	}
	for _, m := range depOpPattern.FindAllStringSubmatchIndex(body, -1) {
		op := FileOp{Kind: OpDepAdd, Package: body[m[2]:m[3]]}
		if m[4] >= 0 {
			op.Version = body[m[4]:m[5]]
		}
		ops = append(ops, located{m[0], op})
	}

	if tags := opStartPattern.FindAllString(body, -1); len(tags) != len(ops) {
		return nil, fmt.Errorf("change block contains %d operation tags but only %d parsed", len(tags), len(ops))
	}

	sort.Slice(ops, func(i, j int) bool { return ops[i].start < ops[j].start })

	cs := &ChangeSet{Ops: make([]FileOp, len(ops))}
	for i, l := range ops {
		cs.Ops[i] = l.op
	}
	return cs, nil
}

// =============================================================================
// CHANGE SET JSON SCHEMA
// =============================================================================

// ChangeSetSchema validates a change set expressed as structured JSON, for
// callers that exchange change sets over a wire instead of the tag grammar.
//
// Structure:
//
//	{
//	  "ops": [
//	    { "kind": "write",   "path": "...", "contents": "..." },
//	    { "kind": "rename",  "path": "...", "to": "..." },
//	    { "kind": "delete",  "path": "..." },
//	    { "kind": "dep-add", "package": "...", "version": "..." }
//	  ]
//	}
const ChangeSetSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["ops"],
  "additionalProperties": false,
  "properties": {
    "ops": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["kind"],
        "additionalProperties": false,
        "properties": {
          "kind": {
            "type": "string",
            "enum": ["write", "rename", "delete", "dep-add"],
            "description": "File operation kind"
          },
          "path": {
            "type": "string",
            "description": "Target path (write, delete) or rename source"
          },
          "to": {
            "type": "string",
            "description": "Rename destination"
          },
          "contents": {
            "type": "string",
            "minLength": 1,
            "description": "Complete file contents for a write"
          },
          "package": {
            "type": "string",
            "description": "Package name for a dependency addition"
          },
          "version": {
            "type": "string",
            "description": "Version constraint for a dependency addition"
          }
        }
      },
      "description": "Ordered file operations of the aggregated change block"
    }
  }
}`
