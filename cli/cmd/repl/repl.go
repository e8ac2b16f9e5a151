package repl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ardnew/molang/lang"
	"github.com/ardnew/molang/log"
)

// Loader builds a fresh engine whose host output is written to out.
type Loader func(ctx context.Context, out io.Writer) (*lang.Engine, error)

type (
	reloadMsg    struct{ engine *lang.Engine }
	cancelMsg    struct{}
	declinedMsg  struct{}
	editErrorMsg struct{ err error }
)

const (
	evalPrompt = "➜ "
	ctrlPrompt = " :"
)

const helpMessage = `
: Commands (press Esc to toggle mode):

  help     Print this message
  list     List the root bindings
  vars     List the variables assigned so far
  edit     Edit the manifest in $EDITOR and reload it
  clear    Clear screen
  quit     Exit REPL

Usage:
  Type an expression to evaluate it; variables persist between lines
  Completions appear automatically as you type
  Press Tab / Shift-Tab to cycle through candidates
  Press Space to accept the current candidate
  Use Up/Down for history (the mode follows the entry)
  Use Shift+Up/Shift+Down for history in the current mode only
  Press Ctrl+C on an empty line or Ctrl+D to exit
`

// inputMode selects whether a line is evaluated or run as a command.
type inputMode int

const (
	modeEval inputMode = iota
	modeCtrl
)

// prefix tags history lines with their mode.
func (m inputMode) prefix() string {
	if m == modeCtrl {
		return "C:"
	}

	return "E:"
}

var (
	promptStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	ctrlPromptStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	inputStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	resultStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	outputStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	hintStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	suggestionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	matchStyle         = suggestionStyle.Bold(true)
	selectedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("4"))
	selectedMatchStyle = selectedStyle.Bold(true)
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	currentParamStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// model is the Bubble Tea model for the REPL.
type model struct {
	ctxFunc      func() context.Context
	input        textinput.Model
	engine       *lang.Engine
	load         Loader
	manifest     string
	printed      *bytes.Buffer // host output captured during evaluation
	logger       log.Logger
	history      *History
	historyIdx   int
	matches      fuzzy.Matches
	candidates   []string
	parent       string // member-access chain before the current word
	wordStart    int
	wordEnd      int
	suggIdx      int
	tabActive    bool
	preTabText   string
	preTabCursor int
	width        int
	quitting     bool
	mode         inputMode
	saved        [2]struct {
		text   string
		cursor int
	}
}

// Run starts an interactive session over the engine built by load. History
// is kept in cacheDir when it is not blank, and manifest is the file the
// edit command opens.
func Run(
	ctx context.Context,
	load Loader,
	manifest, cacheDir string,
	logger log.Logger,
) (err error) {
	if load == nil {
		return ErrNoEngine
	}

	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	printed := new(bytes.Buffer)

	engine, err := load(ctx, printed)
	if err != nil {
		return err
	}

	historyPath := ""
	if cacheDir != "" {
		historyPath = filepath.Join(cacheDir, baseHistory)
	}

	history := NewHistory(historyPath)
	if err := history.Load(); err != nil {
		logger.WarnContext(ctx, "history not loaded", slog.Any("error", err))
	}

	logger.DebugContext(ctx, "repl start",
		slog.String("manifest", manifest),
		slog.String("history", historyPath),
		slog.Int("history_len", history.Len()),
	)

	m := newModel(ctx, engine, history, logger)
	m.load = load
	m.manifest = manifest
	m.printed = printed

	_, err = tea.NewProgram(m, tea.WithContext(ctx)).Run()

	return err
}

const defaultWidth = 80

func newModel(
	ctx context.Context,
	engine *lang.Engine,
	history *History,
	logger log.Logger,
) model {
	ti := textinput.New()
	ti.Prompt = promptStyle.Render(evalPrompt)
	ti.Focus()
	ti.CharLimit = 1024
	ti.Width = defaultWidth

	return model{
		ctxFunc:    func() context.Context { return ctx },
		input:      ti,
		engine:     engine,
		printed:    new(bytes.Buffer),
		logger:     logger,
		history:    history,
		historyIdx: history.Len(),
		suggIdx:    -1,
		width:      defaultWidth,
		mode:       modeEval,
	}
}

func (m model) scope() *lang.Scope {
	if m.engine == nil {
		return nil
	}

	return m.engine.Scope()
}

// isFunction reports whether a candidate completing the current word names
// a function.
func (m model) isFunction(name string) bool {
	if m.mode != modeEval || m.scope() == nil {
		return false
	}

	if m.parent != "" {
		name = m.parent + "." + name
	}

	v, ok := resolve(m.scope(), name)
	if !ok {
		return false
	}

	_, ok = v.(lang.Function)

	return ok
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = msg.Width - lipgloss.Width(evalPrompt) - 2

		return m, nil

	case reloadMsg:
		for name, v := range m.engine.Variable().Entries() {
			msg.engine.Variable().Set(name, v)
		}

		m.engine = msg.engine

		return m, tea.Println(resultStyle.Render("✔ manifest reloaded"))

	case cancelMsg:
		return m, tea.Println(hintStyle.Render("✘ edit cancelled"))

	case declinedMsg:
		m.quitting = true

		return m, tea.Quit

	case editErrorMsg:
		return m, tea.Println(errorStyle.Render("✘ " + msg.err.Error()))
	}

	var cmd tea.Cmd

	m.input, cmd = m.input.Update(msg)

	return m, cmd
}

func (m model) View() string {
	if m.quitting {
		return ""
	}

	input := m.input.Value()

	var hint string

	switch call := detectFunctionCall(input, m.input.Position()); {
	case m.historyIdx < m.history.Len():
		hint = hintStyle.Render(fmt.Sprintf("%s/%d",
			lipgloss.NewStyle().Bold(true).Render(strconv.Itoa(m.historyIdx+1)),
			m.history.Len()))

	case strings.TrimSpace(input) == "" && m.mode == modeEval:
		hint = hintStyle.Render("Type an expression or press Esc for commands")

	case strings.TrimSpace(input) == "":
		hint = hintStyle.Render("Type: " + strings.Join(ctrlCommands, ", ") + " (press Esc to return)")

	case call.inCall && m.mode == modeEval && len(m.matches) == 0:
		if sig, params := getSignature(m.scope(), call.name); sig != "" {
			hint = renderSignatureHint(sig, params, call.argIndex)
		}

	default:
		hint = renderCandidateBar(m.matches, m.suggIdx, m.tabActive, m.width, m.isFunction)
	}

	return m.input.View() + "\n" + hint + "\n"
}

func (m model) handleKey(msg tea.KeyMsg) (model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		m.input.SetValue("")
		m.tabActive = false
		m.historyIdx = m.history.Len()
		refreshMatches(&m, false)

		return m, nil

	case tea.KeyCtrlD:
		if m.input.Value() == "" {
			m.quitting = true

			return m, tea.Quit
		}

		return m, nil

	case tea.KeyEnter:
		if m.tabActive && len(m.matches) > 0 {
			m.tabActive = false
			refreshMatches(&m, true)

			return m, nil
		}

		return m.submit()

	case tea.KeyTab:
		return m.cycle(1), nil

	case tea.KeyShiftTab:
		return m.cycle(-1), nil

	case tea.KeyUp:
		return m.recall(-1, false), nil

	case tea.KeyDown:
		return m.recall(1, false), nil

	case tea.KeyShiftUp:
		return m.recall(-1, true), nil

	case tea.KeyShiftDown:
		return m.recall(1, true), nil

	case tea.KeyEsc:
		if m.tabActive {
			m.tabActive = false
			m.input.SetValue(m.preTabText)
			m.input.SetCursor(m.preTabCursor)
			refreshMatches(&m, false)

			return m, nil
		}

		if m.mode == modeEval {
			return m.switchMode(modeCtrl), nil
		}

		return m.switchMode(modeEval), nil
	}

	typing := msg.Type == tea.KeyRunes
	if !typing || msg.String() == " " {
		m.tabActive = false
	}

	var cmd tea.Cmd

	m.historyIdx = m.history.Len()
	m.input, cmd = m.input.Update(msg)
	refreshMatches(&m, typing)

	return m, cmd
}

// cycle steps through the candidates in direction dir, completing the word
// outright when only one candidate remains.
func (m model) cycle(dir int) model {
	n := len(m.matches)
	if n == 0 {
		return m
	}

	if n == 1 {
		replaceCurrentWord(&m, m.matches[0].Str)
		m.tabActive = false
		m.suggIdx = -1
		m.matches = nil

		return m
	}

	switch {
	case m.tabActive:
		m.suggIdx = (m.suggIdx + dir + n) % n
	case dir > 0:
		m.tabActive = true
		m.preTabText, m.preTabCursor = m.input.Value(), m.input.Position()
		m.suggIdx = 0
	default:
		m.tabActive = true
		m.preTabText, m.preTabCursor = m.input.Value(), m.input.Position()
		m.suggIdx = n - 1
	}

	replaceCurrentWord(&m, m.matches[m.suggIdx].Str)

	return m
}

func replaceCurrentWord(m *model, replacement string) {
	input := m.input.Value()

	m.input.SetValue(input[:m.wordStart] + replacement + input[m.wordEnd:])
	m.input.SetCursor(m.wordStart + len(replacement))
	m.wordEnd = m.wordStart + len(replacement)
}

// refreshMatches recomputes the candidates. With autoConfirm, a word that
// already equals its only candidate is accepted so the bar disappears.
func refreshMatches(m *model, autoConfirm bool) {
	m.matches, m.candidates, m.wordStart, m.wordEnd = m.computeMatches()

	m.parent = ""
	if m.mode == modeEval {
		m.parent = parentPath(m.input.Value(), m.wordStart)
	}

	if !m.tabActive {
		m.suggIdx = -1
	}

	if autoConfirm && len(m.matches) == 1 &&
		strings.EqualFold(m.input.Value()[m.wordStart:m.wordEnd], m.matches[0].Str) {
		m.matches = nil
	}
}

// recall moves through history by dir. With sameMode it skips entries from
// the other mode; otherwise the mode follows the recalled entry.
func (m model) recall(dir int, sameMode bool) model {
	for i := m.historyIdx + dir; i >= 0 && i < m.history.Len(); i += dir {
		entry, err := m.history.Entry(i)
		if err != nil {
			break
		}

		if sameMode && entry.Mode != m.mode {
			continue
		}

		if entry.Mode != m.mode {
			m = m.switchMode(entry.Mode)
		}

		m.historyIdx = i
		m.input.SetValue(entry.Line)
		m.input.SetCursor(len(entry.Line))
		refreshMatches(&m, false)

		return m
	}

	if dir > 0 && m.historyIdx < m.history.Len() {
		m.historyIdx = m.history.Len()
		m.input.SetValue("")
		refreshMatches(&m, false)
	}

	return m
}

// switchMode changes mode, saving the current line and restoring the one
// last typed in the target mode.
func (m model) switchMode(mode inputMode) model {
	m.saved[m.mode].text = m.input.Value()
	m.saved[m.mode].cursor = m.input.Position()

	m.mode = mode
	if mode == modeEval {
		m.input.Prompt = promptStyle.Render(evalPrompt)
	} else {
		m.input.Prompt = ctrlPromptStyle.Render(ctrlPrompt)
	}

	m.input.SetValue(m.saved[mode].text)
	m.input.SetCursor(m.saved[mode].cursor)
	refreshMatches(&m, false)

	return m
}

func (m model) submit() (model, tea.Cmd) {
	line := strings.TrimSpace(m.input.Value())
	if line == "" {
		return m, nil
	}

	m.saved = [2]struct {
		text   string
		cursor int
	}{}
	m.input.SetValue("")
	m.matches = nil

	if err := m.history.Add(line, m.mode); err != nil {
		m.logger.WarnContext(m.ctxFunc(), "history not saved", slog.Any("error", err))
	}

	m.historyIdx = m.history.Len()

	if m.mode == modeCtrl {
		return m.command(line)
	}

	return m, tea.Sequence(
		tea.Println(promptStyle.Render(evalPrompt)+inputStyle.Render(line)),
		m.eval(line),
	)
}

// eval runs one line against the engine and prints any host output followed
// by the result.
func (m model) eval(line string) tea.Cmd {
	ctx := m.ctxFunc()

	exprs, err := m.engine.Parse(ctx, line)
	if err != nil {
		m.logger.DebugContext(ctx, "repl parse failed", slog.Any("error", err))

		return tea.Println(errorStyle.Render("error: " + err.Error()))
	}

	result := m.engine.Eval(ctx, nil, exprs)

	m.logger.TraceContext(ctx, "repl eval",
		slog.String("input", line),
		slog.String("type", result.Type().String()),
	)

	var cmds []tea.Cmd

	if out := strings.TrimRight(m.printed.String(), "\n"); out != "" {
		cmds = append(cmds, tea.Println(outputStyle.Render(out)))
	}

	m.printed.Reset()

	return tea.Sequence(append(cmds, tea.Println(resultStyle.Render(lang.AsString(result))))...)
}

func (m model) command(line string) (model, tea.Cmd) {
	fields := strings.Fields(line)
	echo := tea.Println(ctrlPromptStyle.Render(ctrlPrompt) + inputStyle.Render(line))

	m.logger.TraceContext(m.ctxFunc(), "repl command", slog.String("command", fields[0]))

	switch fields[0] {
	case "q", "quit", "exit":
		m.quitting = true

		return m, tea.Sequence(echo, tea.Quit)

	case "h", "help":
		return m, tea.Sequence(echo, tea.Println(helpMessage))

	case "l", "list":
		return m, tea.Sequence(echo, tea.Println(listScope(m.engine.Scope())))

	case "v", "vars":
		return m, tea.Sequence(echo, tea.Println(listScope(m.engine.Variable())))

	case "c", "clear":
		return m, tea.ClearScreen

	case "e", "edit":
		return m, tea.Sequence(echo, m.edit())
	}

	return m, tea.Println(errorStyle.Render("unknown command: " + fields[0] + " (try 'help')"))
}

func (m model) edit() tea.Cmd {
	if m.manifest == "" {
		return tea.Println(errorStyle.Render(ErrNoManifest.Error()))
	}

	cmd := &editManifestCommand{
		path:    m.manifest,
		load:    m.load,
		out:     m.printed,
		ctxFunc: m.ctxFunc,
		logger:  m.logger,
	}

	return tea.Exec(cmd, func(err error) tea.Msg {
		switch {
		case errors.Is(err, ErrEditDeclined):
			return declinedMsg{}
		case err != nil:
			return editErrorMsg{err: err}
		case cmd.engine == nil:
			return cancelMsg{}
		}

		return reloadMsg{engine: cmd.engine}
	})
}

func listScope(s *lang.Scope) string {
	if s.Len() == 0 {
		return hintStyle.Render("  (empty)")
	}

	var b strings.Builder

	for name, v := range s.Entries() {
		fmt.Fprintf(&b, "  %s %s\n", name, hintStyle.Render(describe(v)))
	}

	return strings.TrimSuffix(b.String(), "\n")
}
