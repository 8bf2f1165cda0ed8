package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/conn-castle/prelaunch/internal/locale"
	"github.com/conn-castle/prelaunch/internal/messages"
	"github.com/conn-castle/prelaunch/internal/orchestrator"
)

// DownloadChoice selects the fresh-download option in PlainOptions.Runtime.
const DownloadChoice = "download"

// progressStep is the percent granularity of plain progress lines.
const progressStep = 10

// PlainOptions carries the answers a headless run gives to decisions.
type PlainOptions struct {
	// Runtime answers an ambiguous discovery: a candidate path, its 1-based
	// index, or DownloadChoice. Empty cancels.
	Runtime string
	// Remember persists the Runtime answer.
	Remember bool
	// AcceptRules acknowledges the rules without prompting.
	AcceptRules bool
}

// Plain is a line-oriented presenter for non-interactive output.
type Plain struct {
	out  io.Writer
	tr   *locale.Catalog
	opts PlainOptions

	mu          sync.Mutex
	lastMessage string
	lastStep    int
}

// NewPlain returns a Plain presenter writing to out.
func NewPlain(out io.Writer, tr *locale.Catalog, opts PlainOptions) *Plain {
	if tr == nil {
		tr = locale.Builtin(locale.Fallback)
	}
	return &Plain{out: out, tr: tr, opts: opts, lastStep: -1}
}

// Report prints the event, collapsing repeated progress to one line per
// progressStep percent.
func (p *Plain) Report(e orchestrator.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if e.Progress {
		step := e.Percent / progressStep
		if step == p.lastStep {
			return
		}
		p.lastStep = step
	} else {
		if e.Message == p.lastMessage {
			return
		}
		p.lastMessage = e.Message
		p.lastStep = -1
	}

	line := e.Message
	if e.Percent > 0 {
		line = fmt.Sprintf(messages.UIPlainProgressFmt, e.Percent, e.Message)
	}
	switch e.Severity {
	case orchestrator.SeverityWarning:
		_, _ = fmt.Fprintln(p.out, color.YellowString(line))
	case orchestrator.SeverityError:
		_, _ = fmt.Fprintln(p.out, color.RedString(line))
	default:
		if e.State == orchestrator.StateDone {
			_, _ = color.New(color.FgGreen).Fprintln(p.out, line)
			return
		}
		_, _ = fmt.Fprintln(p.out, line)
	}
}

// RequestRuntimeChoice lists the candidates and answers from PlainOptions.
func (p *Plain) RequestRuntimeChoice(candidates []string, reply chan<- orchestrator.Decision) {
	p.mu.Lock()
	for i, c := range candidates {
		_, _ = fmt.Fprintf(p.out, messages.UIPlainCandidateFmt, i+1, c)
	}
	p.mu.Unlock()

	d := resolveChoice(p.opts, candidates)
	if d.Kind == orchestrator.DecisionCancelled {
		p.mu.Lock()
		_, _ = fmt.Fprintln(p.out, color.RedString(p.tr.T(locale.NoDecisionAvailable)))
		p.mu.Unlock()
	}
	reply <- d
}

// RequestRuleAck prints the rules and answers from PlainOptions.
func (p *Plain) RequestRuleAck(text string, reply chan<- orchestrator.Ack) {
	p.mu.Lock()
	_, _ = fmt.Fprintln(p.out, color.New(color.Bold).Sprint(p.tr.T(locale.RulesTitle)))
	_, _ = fmt.Fprintln(p.out, strings.TrimSpace(text))
	if !p.opts.AcceptRules {
		_, _ = fmt.Fprintln(p.out, color.RedString(p.tr.T(locale.NoDecisionAvailable)))
	}
	p.mu.Unlock()
	reply <- orchestrator.Ack{Accepted: p.opts.AcceptRules, Remember: p.opts.AcceptRules && p.opts.Remember}
}

func resolveChoice(opts PlainOptions, candidates []string) orchestrator.Decision {
	answer := strings.TrimSpace(opts.Runtime)
	switch {
	case answer == "":
		return orchestrator.Cancel()
	case strings.EqualFold(answer, DownloadChoice):
		return orchestrator.ForceDownload()
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(candidates) {
			return orchestrator.Selected(candidates[n-1], opts.Remember)
		}
		return orchestrator.Cancel()
	}
	want := canonical(answer)
	for _, c := range candidates {
		if c == answer || canonical(c) == want {
			return orchestrator.Selected(c, opts.Remember)
		}
	}
	return orchestrator.Cancel()
}

func canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}
