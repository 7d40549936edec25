package articulation

import (
	"fmt"
	"strings"
)

// Soft size limits. Exceeding them produces a warning, never an error.
const (
	// MaxFileLines is the soft ceiling for any written file.
	MaxFileLines = 500

	// MaxComponentLines is the soft ceiling for a UI component file.
	MaxComponentLines = 50
)

var componentExtensions = []string{".jsx", ".tsx", ".vue", ".svelte"}

// Lint checks the soft size policy over a change set's writes.
func Lint(cs *ChangeSet) []string {
	if cs.Empty() {
		return nil
	}

	var warnings []string
	for _, op := range cs.Ops {
		if op.Kind != OpWrite {
			continue
		}
		lines := countLines(op.Contents)
		if isComponentPath(op.Path) && lines > MaxComponentLines {
			warnings = append(warnings, fmt.Sprintf(
				"%s is %d lines; components over %d lines should be split", op.Path, lines, MaxComponentLines))
			continue
		}
		if lines > MaxFileLines {
			warnings = append(warnings, fmt.Sprintf(
				"%s is %d lines; files over %d lines should be split", op.Path, lines, MaxFileLines))
		}
	}
	return warnings
}

// isComponentPath reports whether a path looks like a UI component: a
// component-framework extension, or any file under a components directory.
func isComponentPath(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range componentExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return strings.Contains(lower, "/components/") || strings.HasPrefix(lower, "components/")
}

func countLines(contents string) int {
	contents = strings.TrimRight(contents, "\n")
	if contents == "" {
		return 0
	}
	return strings.Count(contents, "\n") + 1
}
