// Package ui presents the orchestrator workflow: a bubbletea program for
// interactive terminals and a plain line-oriented presenter otherwise.
package ui

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/conn-castle/prelaunch/internal/locale"
	"github.com/conn-castle/prelaunch/internal/orchestrator"
)

// forceDownloadValue is the select value of the "download instead" option.
// It cannot collide with an absolute executable path.
const forceDownloadValue = "\x00download"

const maxBarWidth = 60

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
	newProgramFn = func(m tea.Model, opts ...tea.ProgramOption) program { return tea.NewProgram(m, opts...) }
)

type program interface {
	Run() (tea.Model, error)
	Send(msg tea.Msg)
}

type (
	eventMsg  orchestrator.Event
	choiceMsg struct {
		candidates []string
		reply      chan<- orchestrator.Decision
	}
	ackMsg struct {
		text  string
		reply chan<- orchestrator.Ack
	}
	doneMsg struct{ outcome orchestrator.Outcome }
)

type keyMap struct {
	Cancel key.Binding
}

func newKeyMap(tr *locale.Catalog) keyMap {
	return keyMap{
		Cancel: key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", strings.ToLower(tr.T(locale.Cancel)))),
	}
}

// model owns all UI state. The worker reaches it only through messages.
type model struct {
	title  string
	tr     *locale.Catalog
	keys   keyMap
	cancel context.CancelFunc

	bar        progress.Model
	showBar    bool
	percent    int
	status     string
	severity   orchestrator.Severity
	cancelling bool

	form    *huh.Form
	resolve func(aborted bool)

	outcome *orchestrator.Outcome
}

func newModel(title string, tr *locale.Catalog, cancel context.CancelFunc) *model {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithWidth(maxBarWidth))
	return &model{
		title:  title,
		tr:     tr,
		keys:   newKeyMap(tr),
		cancel: cancel,
		bar:    bar,
		status: tr.T(locale.Preparing),
	}
}

func (m *model) Init() tea.Cmd { return nil }

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), maxBarWidth)
		if m.form != nil {
			m.form = m.form.WithWidth(msg.Width)
		}
		return m, nil
	case eventMsg:
		m.status = msg.Message
		m.severity = msg.Severity
		if msg.Percent >= 0 {
			m.showBar = true
			m.percent = msg.Percent
		} else if msg.State != orchestrator.StateDownload {
			m.showBar = false
		}
		return m, nil
	case choiceMsg:
		return m, m.openChoice(msg)
	case ackMsg:
		return m, m.openAck(msg)
	case doneMsg:
		m.outcome = &msg.outcome
		m.closeForm(true)
		return m, tea.Quit
	}

	if m.form != nil {
		return m, m.updateForm(msg)
	}
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Cancel) && !m.cancelling {
		m.cancelling = true
		m.cancel()
	}
	return m, nil
}

func (m *model) updateForm(msg tea.Msg) tea.Cmd {
	if k, ok := msg.(tea.KeyMsg); ok && key.Matches(k, m.keys.Cancel) {
		m.closeForm(true)
		return nil
	}
	next, cmd := m.form.Update(msg)
	if f, ok := next.(*huh.Form); ok {
		m.form = f
	}
	switch m.form.State {
	case huh.StateCompleted:
		m.closeForm(false)
		return nil
	case huh.StateAborted:
		m.closeForm(true)
		return nil
	}
	return cmd
}

func (m *model) closeForm(aborted bool) {
	if m.form == nil {
		return
	}
	resolve := m.resolve
	m.form, m.resolve = nil, nil
	resolve(aborted)
}

func (m *model) openChoice(msg choiceMsg) tea.Cmd {
	var choice string
	var remember bool
	opts := make([]huh.Option[string], 0, len(msg.candidates)+1)
	for _, c := range msg.candidates {
		opts = append(opts, huh.NewOption(c, c))
	}
	opts = append(opts, huh.NewOption(m.tr.T(locale.ForceDownload), forceDownloadValue))

	m.form = huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().
			Title(m.tr.T(locale.ChooseRuntime)).
			Options(opts...).
			Value(&choice),
		huh.NewConfirm().
			Title(m.tr.T(locale.RememberChoice)).
			Value(&remember),
	)).WithShowHelp(false)
	m.resolve = func(aborted bool) {
		switch {
		case aborted:
			msg.reply <- orchestrator.Cancel()
		case choice == forceDownloadValue:
			msg.reply <- orchestrator.ForceDownload()
		default:
			msg.reply <- orchestrator.Selected(choice, remember)
		}
	}
	return m.form.Init()
}

func (m *model) openAck(msg ackMsg) tea.Cmd {
	var accepted, remember bool
	m.form = huh.NewForm(huh.NewGroup(
		huh.NewNote().
			Title(m.tr.T(locale.RulesTitle)).
			Description(msg.text),
		huh.NewConfirm().
			Title(m.tr.T(locale.RulesAccept)).
			Value(&accepted),
		huh.NewConfirm().
			Title(m.tr.T(locale.RulesRemember)).
			Value(&remember),
	)).WithShowHelp(false)
	m.resolve = func(aborted bool) {
		if aborted {
			msg.reply <- orchestrator.Ack{}
			return
		}
		msg.reply <- orchestrator.Ack{Accepted: accepted, Remember: accepted && remember}
	}
	return m.form.Init()
}

func (m *model) View() string {
	if m.outcome != nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	b.WriteString(m.styledStatus())
	b.WriteString("\n")
	if m.showBar {
		b.WriteString("\n")
		b.WriteString(m.bar.ViewAs(float64(m.percent) / 100))
		b.WriteString("\n")
	}
	if m.form != nil {
		b.WriteString("\n")
		b.WriteString(m.form.View())
		b.WriteString("\n")
	}
	if !m.cancelling {
		h := m.keys.Cancel.Help()
		b.WriteString("\n")
		b.WriteString(helpStyle.Render(h.Key + " " + h.Desc))
		b.WriteString("\n")
	}
	return b.String()
}

func (m *model) styledStatus() string {
	switch m.severity {
	case orchestrator.SeverityWarning:
		return warnStyle.Render(m.status)
	case orchestrator.SeverityError:
		return errorStyle.Render(m.status)
	default:
		return m.status
	}
}

// tuiPresenter forwards worker callbacks into the program's message loop.
type tuiPresenter struct {
	send func(tea.Msg)
}

func (p *tuiPresenter) Report(e orchestrator.Event) { p.send(eventMsg(e)) }

func (p *tuiPresenter) RequestRuntimeChoice(candidates []string, reply chan<- orchestrator.Decision) {
	p.send(choiceMsg{candidates: candidates, reply: reply})
}

func (p *tuiPresenter) RequestRuleAck(text string, reply chan<- orchestrator.Ack) {
	p.send(ackMsg{text: text, reply: reply})
}

// TUIOptions configures RunTUI.
type TUIOptions struct {
	Title   string
	Catalog *locale.Catalog
	Input   io.Reader
	Output  io.Writer
}

// RunFunc runs the workflow against a presenter.
type RunFunc func(ctx context.Context, p orchestrator.Presenter) orchestrator.Outcome

// RunTUI runs fn on a worker goroutine while the bubbletea program owns the
// terminal. Quitting the program cancels the worker; RunTUI returns once the
// worker has unwound.
func RunTUI(ctx context.Context, opts TUIOptions, fn RunFunc) (orchestrator.Outcome, error) {
	tr := opts.Catalog
	if tr == nil {
		tr = locale.Builtin(locale.Fallback)
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	progOpts := []tea.ProgramOption{tea.WithContext(ctx)}
	if opts.Input != nil {
		progOpts = append(progOpts, tea.WithInput(opts.Input))
	}
	if opts.Output != nil {
		progOpts = append(progOpts, tea.WithOutput(opts.Output))
	}
	prog := newProgramFn(newModel(opts.Title, tr, cancel), progOpts...)

	done := make(chan orchestrator.Outcome, 1)
	go func() {
		out := fn(ctx, &tuiPresenter{send: prog.Send})
		done <- out
		prog.Send(doneMsg{outcome: out})
	}()

	_, err := prog.Run()
	cancel()
	out := <-done
	return out, ignoreKilled(err)
}

func ignoreKilled(err error) error {
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
