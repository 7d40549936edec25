package chat

import (
	"fmt"
	"strings"

	"december/internal/types"
)

// View renders the full chat layout.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("december"))
	b.WriteString("\n")
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.busy {
		b.WriteString(m.spinner.View() + m.styles.Muted.Render(" classifying..."))
		b.WriteString("\n")
	}

	b.WriteString(m.styles.InputBorder.Render(m.textarea.View()))
	b.WriteString("\n")
	b.WriteString(m.statusBar())
	return b.String()
}

func (m Model) statusBar() string {
	mode := "request"
	if m.inputMode == InputModeClarification {
		mode = "answering"
	}
	return m.styles.StatusBar.Render(fmt.Sprintf(
		"mode: %s | clarification rounds left: %d | esc to quit", mode, m.session.Remaining()))
}

// renderQuestion formats one clarifying question with its option list.
func (m Model) renderQuestion(q types.ClarifyingQuestion) string {
	var b strings.Builder
	b.WriteString(m.styles.BotLabel.Render("december: "))
	b.WriteString(m.styles.Question.Render(q.Question))
	for _, opt := range q.Options {
		b.WriteString("\n  - " + opt)
	}
	if q.DefaultOption != "" {
		b.WriteString("\n" + m.styles.Muted.Render("  (enter accepts the default: "+q.DefaultOption+")"))
	}
	return b.String()
}

// renderExplain answers a conceptual question from the example catalog.
func (m Model) renderExplain(utterance string) string {
	var b strings.Builder
	b.WriteString(m.styles.BotLabel.Render("december: "))

	if m.catalog == nil {
		b.WriteString("No example catalog is configured, so there is nothing to draw the explanation from.")
		return b.String()
	}

	entries := m.catalog.Lookup(utterance)
	if len(entries) == 0 {
		b.WriteString("No catalog entry covers that topic.")
		return b.String()
	}

	b.WriteString("Relevant examples:\n")
	for _, e := range entries {
		b.WriteString(fmt.Sprintf("  %s", e.Name))
		if e.Description != "" {
			b.WriteString(" - " + e.Description)
		}
		b.WriteString("\n")
	}

	if body, ok := m.catalog.Document(entries[0].Name); ok {
		if rendered, err := m.renderer.Render(body); err == nil {
			b.WriteString(rendered)
		} else {
			b.WriteString(body)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// renderImplement runs the classification through the emitter so the chat
// output obeys the same contract as the respond command.
func (m Model) renderImplement(result types.Classification) string {
	resp, err := m.emitter.Build(result, "Proceeding with the implementation.", nil)
	if err != nil {
		return m.styles.Error.Render(fmt.Sprintf("error: %v", err))
	}
	rendered := strings.TrimRight(m.emitter.Render(resp), "\n")
	return m.styles.BotLabel.Render("december: ") + rendered
}
