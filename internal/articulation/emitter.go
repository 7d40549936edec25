// Package articulation renders classified requests into responses and
// enforces the output contract: an implement response carries exactly one
// aggregated change block, any other disposition carries none, and every
// path a block touches resolves within the block or to a pre-existing file.
package articulation

import (
	"fmt"
	"strings"

	"december/internal/logging"
	"december/internal/types"
)

// Response is the rendered outcome for one classified request.
type Response struct {
	Disposition types.Disposition

	// Prose is the user-facing text: the answer for explain, the lead-in
	// for implement, the framing for clarify.
	Prose string

	// Questions are rendered for a clarify response.
	Questions []types.ClarifyingQuestion

	// Assumptions with Stated=true are rendered for an implement response.
	Assumptions []types.Assumption

	// Changes is the single aggregated change block. Nil unless the
	// disposition is implement.
	Changes *ChangeSet

	// Warnings carries soft policy findings (size limits). Warnings never
	// block emission.
	Warnings []string
}

// Emitter builds and renders responses.
type Emitter struct {
	// Exists answers whether a path pre-exists in the project. Used to
	// resolve rename and delete targets during validation.
	Exists func(path string) bool
}

// NewEmitter creates an emitter with no pre-existing files.
func NewEmitter() *Emitter {
	return &Emitter{}
}

// Build assembles a Response from a classification and an optional change
// set. The change set is rejected outright on a non-implement disposition,
// and validated plus linted on implement.
func (e *Emitter) Build(c types.Classification, prose string, changes *ChangeSet) (Response, error) {
	resp := Response{
		Disposition: c.Disposition,
		Prose:       strings.TrimSpace(prose),
	}

	switch c.Disposition {
	case types.DispositionClarify:
		if !changes.Empty() {
			return Response{}, fmt.Errorf("clarify response cannot carry a change block")
		}
		resp.Questions = c.Questions

	case types.DispositionExplain:
		if !changes.Empty() {
			return Response{}, fmt.Errorf("explain response cannot carry a change block")
		}

	case types.DispositionImplement:
		resp.Assumptions = c.StatedAssumptions()
		if !changes.Empty() {
			if err := changes.Validate(e.Exists); err != nil {
				return Response{}, fmt.Errorf("invalid change block: %w", err)
			}
			resp.Changes = changes
			resp.Warnings = Lint(changes)
		}

	default:
		return Response{}, fmt.Errorf("unknown disposition %q", c.Disposition)
	}

	logging.ArticulationDebug("built %s response (%d questions, %d assumptions, %d warnings)",
		resp.Disposition, len(resp.Questions), len(resp.Assumptions), len(resp.Warnings))
	return resp, nil
}

// Render produces the final markdown text of a response.
func (e *Emitter) Render(resp Response) string {
	var b strings.Builder

	if resp.Prose != "" {
		b.WriteString(resp.Prose)
		b.WriteString("\n")
	}

	if len(resp.Questions) > 0 {
		b.WriteString("\nBefore I build this, I need to pin down:\n\n")
		for i, q := range resp.Questions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, q.Question)
			for _, opt := range q.Options {
				fmt.Fprintf(&b, "   - %s\n", opt)
			}
			if q.DefaultOption != "" {
				fmt.Fprintf(&b, "   (default if unspecified: %s)\n", q.DefaultOption)
			}
		}
	}

	if len(resp.Assumptions) > 0 {
		b.WriteString("\nAssumptions:\n")
		for _, a := range resp.Assumptions {
			fmt.Fprintf(&b, "- %s: %s (%s)\n", a.Category, a.Assumed, a.Basis)
		}
	}

	if !resp.Changes.Empty() {
		b.WriteString("\n")
		b.WriteString(resp.Changes.Render())
		b.WriteString("\n")
	}

	for _, w := range resp.Warnings {
		fmt.Fprintf(&b, "\nnote: %s", w)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// =============================================================================
// RESPONSE PROCESSOR - Output Contract Validation
// =============================================================================

// ResponseProcessor validates rendered responses against the output
// contract and keeps running statistics.
type ResponseProcessor struct {
	// Exists answers whether a path pre-exists in the project.
	Exists func(path string) bool

	stats ProcessorStats
}

// ProcessorStats tracks validation outcomes for monitoring.
type ProcessorStats struct {
	TotalProcessed     int
	ValidResponses     int
	ValidationFailures int
	LintWarnings       int
}

// ProcessResult is the structured outcome of validating one response.
type ProcessResult struct {
	Disposition types.Disposition
	Changes     *ChangeSet
	Warnings    []string
}

// NewResponseProcessor creates a processor with no pre-existing files.
func NewResponseProcessor() *ResponseProcessor {
	return &ResponseProcessor{}
}

// Process validates the rendered text of a response against its
// disposition: exactly one aggregated change block on implement, zero
// otherwise, with every path inside the block resolving in-block or to a
// pre-existing file.
func (rp *ResponseProcessor) Process(raw string, disposition types.Disposition) (*ProcessResult, error) {
	rp.stats.TotalProcessed++

	blocks := CountBlocks(raw)
	result := &ProcessResult{Disposition: disposition}

	if disposition != types.DispositionImplement {
		if blocks != 0 {
			rp.stats.ValidationFailures++
			return nil, fmt.Errorf("%s response contains %d change blocks, expected none", disposition, blocks)
		}
		rp.stats.ValidResponses++
		return result, nil
	}

	if blocks != 1 {
		rp.stats.ValidationFailures++
		return nil, fmt.Errorf("implement response contains %d change blocks, expected exactly one", blocks)
	}

	cs, err := ParseBlock(raw)
	if err != nil {
		rp.stats.ValidationFailures++
		return nil, fmt.Errorf("failed to parse change block: %w", err)
	}
	if err := cs.Validate(rp.Exists); err != nil {
		rp.stats.ValidationFailures++
		return nil, fmt.Errorf("change block violates output contract: %w", err)
	}

	result.Changes = cs
	result.Warnings = Lint(cs)
	rp.stats.ValidResponses++
	rp.stats.LintWarnings += len(result.Warnings)

	if len(result.Warnings) > 0 {
		logging.ArticulationWarn("response passed with %d size warnings", len(result.Warnings))
	}
	return result, nil
}

// GetStats returns current processing statistics.
func (rp *ResponseProcessor) GetStats() ProcessorStats {
	return rp.stats
}

// ResetStats resets the processing statistics.
func (rp *ResponseProcessor) ResetStats() {
	rp.stats = ProcessorStats{}
}
