// Package chat implements the interactive terminal interface: a classify
// loop that routes each utterance, walks the user through clarifying
// questions, and renders the resulting response.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"december/cmd/december/ui"
	"december/internal/articulation"
	"december/internal/catalog"
	"december/internal/session"
	"december/internal/types"
)

// InputMode is the input handling state machine.
type InputMode int

const (
	InputModeNormal        InputMode = iota // process as a new request
	InputModeClarification                  // answering clarifying questions
)

// ClarificationState tracks an in-progress question round.
type ClarificationState struct {
	Utterance string // the request that triggered the questions
	Questions []types.ClarifyingQuestion
	Index     int
	Answers   []string
}

// classifiedMsg delivers an asynchronous classification result.
type classifiedMsg struct {
	utterance string
	result    types.Classification
	err       error
}

// Model is the bubbletea model for the chat interface.
type Model struct {
	session *session.Session
	emitter *articulation.Emitter
	catalog *catalog.Catalog

	styles   ui.Styles
	textarea textarea.Model
	viewport viewport.Model
	spinner  spinner.Model
	renderer *glamour.TermRenderer

	inputMode     InputMode
	clarification *ClarificationState

	transcript []string
	busy       bool
	width      int
	height     int
	ready      bool
	err        error
}

// New builds the chat model. The catalog may be nil when no manifest is
// configured.
func New(sess *session.Session, emitter *articulation.Emitter, cat *catalog.Catalog) (Model, error) {
	ta := textarea.New()
	ta.Placeholder = "Describe what you want built, or ask a question..."
	ta.Focus()
	ta.SetHeight(3)
	ta.ShowLineNumbers = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return Model{}, fmt.Errorf("failed to create renderer: %w", err)
	}

	return Model{
		session:  sess,
		emitter:  emitter,
		catalog:  cat,
		styles:   ui.NewStyles(),
		textarea: ta,
		spinner:  sp,
		renderer: renderer,
	}, nil
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := msg.Height - m.textarea.Height() - 5
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !m.ready {
			m.viewport = viewport.New(msg.Width, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(msg.Width - 4)
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			input := strings.TrimSpace(m.textarea.Value())
			if input == "" {
				return m, nil
			}
			m.textarea.Reset()
			return m.submit(input)
		}

	case classifiedMsg:
		m.busy = false
		if msg.err != nil {
			m.err = msg.err
			m.appendTranscript(m.styles.Error.Render(fmt.Sprintf("error: %v", msg.err)))
			return m, nil
		}
		return m.handleResult(msg.utterance, msg.result)

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var taCmd, vpCmd tea.Cmd
	m.textarea, taCmd = m.textarea.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	cmds = append(cmds, taCmd, vpCmd)
	return m, tea.Batch(cmds...)
}

// submit routes input by the current mode: a fresh request in normal mode,
// an answer to the pending question in clarification mode.
func (m Model) submit(input string) (tea.Model, tea.Cmd) {
	if m.inputMode == InputModeClarification && m.clarification != nil {
		return m.answerQuestion(input)
	}

	m.appendTranscript(m.styles.UserLabel.Render("you: ") + input)
	m.busy = true
	return m, tea.Batch(m.spinner.Tick, m.classifyCmd(input))
}

// answerQuestion records one clarification answer and either advances to the
// next question or reclassifies with all answers folded into the request.
func (m Model) answerQuestion(answer string) (tea.Model, tea.Cmd) {
	cs := m.clarification
	q := cs.Questions[cs.Index]
	if answer == "" && q.DefaultOption != "" {
		answer = q.DefaultOption
	}
	cs.Answers = append(cs.Answers, fmt.Sprintf("%s: %s", q.Category, answer))
	m.appendTranscript(m.styles.UserLabel.Render("you: ") + answer)
	cs.Index++

	if cs.Index < len(cs.Questions) {
		m.appendTranscript(m.renderQuestion(cs.Questions[cs.Index]))
		return m, nil
	}

	resolved := cs.Utterance + " (" + strings.Join(cs.Answers, "; ") + ")"
	m.inputMode = InputModeNormal
	m.clarification = nil
	m.busy = true
	return m, tea.Batch(m.spinner.Tick, m.classifyCmd(resolved))
}

func (m Model) classifyCmd(utterance string) tea.Cmd {
	sess := m.session
	return func() tea.Msg {
		result, err := sess.Classify(utterance)
		return classifiedMsg{utterance: utterance, result: result, err: err}
	}
}

// handleResult renders a classification and, on clarify, enters question
// answering mode.
func (m Model) handleResult(utterance string, result types.Classification) (tea.Model, tea.Cmd) {
	m.appendTranscript(m.styles.Disposition.Render(fmt.Sprintf("[%s, confidence %.2f]", result.Disposition, result.Confidence)))

	switch result.Disposition {
	case types.DispositionClarify:
		m.inputMode = InputModeClarification
		m.clarification = &ClarificationState{
			Utterance: utterance,
			Questions: result.Questions,
		}
		m.appendTranscript(m.renderQuestion(result.Questions[0]))

	case types.DispositionExplain:
		m.appendTranscript(m.renderExplain(utterance))

	case types.DispositionImplement:
		m.appendTranscript(m.renderImplement(result))
	}

	return m, nil
}

func (m *Model) appendTranscript(block string) {
	m.transcript = append(m.transcript, block)
	m.refreshViewport()
}

func (m *Model) refreshViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(strings.Join(m.transcript, "\n\n"))
	m.viewport.GotoBottom()
}
