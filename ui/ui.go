// Package ui provides the terminal reader: the document with the span being
// spoken highlighted, and keys to control the voice.
package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/readaloud/tts"
	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/termenv"
)

const (
	statusBarHeight      = 1
	statusMessageTimeout = 3 * time.Second
	ellipsis             = "…"
	maxCopiedWidth       = 24
)

var (
	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}
	fuchsia   = lipgloss.Color("#EE6FF8")
	red       = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}

	logoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ECFD65")).
			Background(fuchsia).
			Bold(true).
			Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarVoiceStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	statusBarErrorStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FFFFFF")).
				Background(red).
				Render
)

// speechState is what the reader is doing with the document.
type speechState int

const (
	stateIdle speechState = iota
	stateLoading
	stateSpeaking
	statePaused
	stateDone
	stateError
)

func (s speechState) String() string {
	return map[speechState]string{
		stateIdle:     "Press space to start",
		stateLoading:  "Preparing voice",
		stateSpeaking: "Speaking",
		statePaused:   "Paused",
		stateDone:     "Finished",
		stateError:    "Error",
	}[s]
}

type (
	startMsg                struct{}
	reloadMsg               struct{}
	statusMessageTimeoutMsg int
	editorFinishedMsg       struct{ err error }
	documentLoadedMsg       struct {
		doc Document
		err error
	}
)

// sessionMsg wraps an event of the session started for utterance gen.
// Events still queued from an earlier utterance are dropped by gen.
type sessionMsg struct {
	gen int
	msg tea.Msg
}

// sender forwards session events into the running program.
type sender struct {
	fn func(tea.Msg)
}

func (s *sender) send(msg tea.Msg) {
	if s.fn != nil {
		s.fn(msg)
	}
}

type model struct {
	cfg      Config
	provider *tts.Provider
	out      *sender
	doc      Document

	width, height int
	viewport      viewport.Model
	spinner       spinner.Model
	help          help.Model
	keys          keyMap
	highlight     lipgloss.Style

	state  speechState
	gen    int
	offset int      // byte offset of the current utterance in doc.Text
	span   tts.Span // absolute span being spoken
	resume int      // where play resumes after a pause
	fatal  bool     // the last error cannot be fixed by speaking again

	rate, pitch stepper

	statusMessage string
	statusIsError bool
	statusID      int

	watcher *fsnotify.Watcher
}

// NewProgram returns a new Tea program reading doc aloud with sessions from
// provider.
func NewProgram(cfg Config, provider *tts.Provider, doc Document) *tea.Program {
	log.Debug("Starting reader", "document", doc.Name(), "words", doc.WordCount())

	out := &sender{}
	m := newModel(cfg, provider, doc, out)
	if cfg.Watch && doc.Path != "" {
		m.initWatcher()
	}

	opts := []tea.ProgramOption{tea.WithAltScreen()}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	p := tea.NewProgram(m, opts...)
	out.fn = p.Send
	return p
}

func newModel(cfg Config, provider *tts.Provider, doc Document, out *sender) model {
	voice := provider.Session().Voice()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(fuchsia)

	return model{
		cfg:       cfg,
		provider:  provider,
		out:       out,
		doc:       doc,
		viewport:  viewport.New(0, 0),
		spinner:   sp,
		help:      help.New(),
		keys:      newKeyMap(),
		highlight: HighlightStyle(lipgloss.DefaultRenderer(), cfg.HighlightColor),
		rate:      newStepper(voice.Rate),
		pitch:     newStepper(voice.Pitch),
	}
}

func (m model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.cfg.AutoStart {
		cmds = append(cmds, func() tea.Msg { return startMsg{} })
	}
	if m.watcher != nil {
		cmds = append(cmds, m.watchFile)
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.setSize()
		m.render()

	case startMsg:
		return m, m.speak(0)

	case sessionMsg:
		if msg.gen != m.gen {
			return m, nil
		}
		return m.Update(msg.msg)

	case tts.SpeakRequestedMsg:
		log.Debug("Speak requested", "bytes", len(msg.Text), "voice", msg.Voice)

	case tts.StartedMsg:
		if m.state == stateLoading {
			m.state = stateSpeaking
		}

	case tts.HighlightMsg:
		if m.state != stateLoading && m.state != stateSpeaking {
			break
		}
		m.state = stateSpeaking
		abs := tts.Span{Start: m.offset + msg.Span.Start, End: m.offset + msg.Span.End}
		if !abs.Valid(m.doc.Text) {
			log.Debug("Ignoring span outside the document", "span", abs)
			break
		}
		m.span = abs
		m.resume = abs.Start
		m.render()

	case tts.DoneMsg:
		if m.state != stateSpeaking && m.state != stateLoading {
			break
		}
		m.state = stateDone
		m.span = tts.Span{}
		m.resume = 0
		m.render()

	case tts.ErrorMsg:
		// A paused session is destroyed on purpose; its complaints are noise.
		if m.state == statePaused || m.state == stateIdle {
			break
		}
		m.state = stateError
		m.fatal = !msg.Recoverable
		text := msg.Message
		if msg.Recoverable {
			text += " (space to retry)"
		}
		cmds = append(cmds, m.showStatusMessage(text, true))

	case spinner.TickMsg:
		if m.state == stateLoading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case statusMessageTimeoutMsg:
		if int(msg) == m.statusID {
			m.statusMessage = ""
		}

	case reloadMsg:
		cmds = append(cmds, m.reload(), m.watchFile)

	case editorFinishedMsg:
		if msg.err != nil {
			cmds = append(cmds, m.showStatusMessage(msg.err.Error(), true))
			break
		}
		cmds = append(cmds, m.reload())

	case documentLoadedMsg:
		if msg.err != nil {
			cmds = append(cmds, m.showStatusMessage(msg.err.Error(), true))
			break
		}
		m.provider.Destroy()
		m.doc = msg.doc
		m.span = tts.Span{}
		m.resume = 0
		m.state = stateIdle
		m.render()
		cmds = append(cmds, m.speak(0))
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.provider.Destroy()
		m.closeWatcher()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		switch m.state {
		case stateLoading, stateSpeaking:
			m.pause()
			return m, nil
		case stateError:
			if m.fatal {
				return m, m.showStatusMessage("Speech engine unavailable", true)
			}
			return m, m.speak(m.resume)
		case statePaused:
			return m, m.speak(m.resume)
		default:
			return m, m.speak(0)
		}

	case key.Matches(msg, m.keys.Restart):
		return m, m.speak(0)

	case key.Matches(msg, m.keys.Faster):
		return m, m.changeVoice(m.rate.next())
	case key.Matches(msg, m.keys.Slower):
		return m, m.changeVoice(m.rate.prev())
	case key.Matches(msg, m.keys.Higher):
		return m, m.changeVoice(m.pitch.next())
	case key.Matches(msg, m.keys.Lower):
		return m, m.changeVoice(m.pitch.prev())
	case key.Matches(msg, m.keys.ResetVoice):
		m.provider.Session().ResetPitchAndRate()
		m.rate.set(tts.DefaultPitchAndRate)
		m.pitch.set(tts.DefaultPitchAndRate)
		return m, m.changeVoice(true)

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyWord()

	case key.Matches(msg, m.keys.Edit):
		if m.doc.Path == "" {
			return m, m.showStatusMessage("Nothing to edit", true)
		}
		m.pause()
		return m, openEditor(m.doc.Path, m.editorLine())

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.setSize()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// speak starts reading at byte offset from, on the live session.
func (m *model) speak(from int) tea.Cmd {
	if from < 0 || from >= len(m.doc.Text) {
		from = 0
	}
	text := m.doc.Text[from:]
	if strings.TrimSpace(text) == "" {
		return m.showStatusMessage("Nothing to read", true)
	}

	m.gen++
	gen, out := m.gen, m.out
	s := m.provider.Session().Notify(func(msg tea.Msg) {
		out.send(sessionMsg{gen: gen, msg: msg})
	})
	if err := s.SetPitchAndRate(m.pitch.value(), m.rate.value()); err != nil {
		log.Warn("Could not apply voice", "err", err)
	}

	m.offset = from
	m.resume = from
	m.fatal = false
	m.state = stateLoading
	return tea.Batch(tts.SpeakCmd(s, text), m.spinner.Tick)
}

// pause destroys the session; resuming starts a fresh one at the last word.
func (m *model) pause() {
	m.provider.Destroy()
	m.gen++
	m.state = statePaused
}

// changeVoice restarts the current utterance from the word being spoken so
// the new voice applies right away.
func (m *model) changeVoice(changed bool) tea.Cmd {
	if !changed {
		return nil
	}
	msg := m.showStatusMessage(fmt.Sprintf("Rate %gx, pitch %gx", m.rate.value(), m.pitch.value()), false)
	if m.state == stateLoading || m.state == stateSpeaking {
		return tea.Batch(msg, m.speak(m.resume))
	}
	return msg
}

func (m *model) copyWord() tea.Cmd {
	if m.span.Empty() {
		return m.showStatusMessage("No word to copy", true)
	}
	word := m.span.Slice(m.doc.Text)
	termenv.Copy(word)
	_ = clipboard.WriteAll(word)
	return m.showStatusMessage("Copied "+runewidth.Truncate(word, maxCopiedWidth, ellipsis), false)
}

func (m *model) showStatusMessage(text string, isError bool) tea.Cmd {
	m.statusID++
	m.statusMessage = text
	m.statusIsError = isError
	id := m.statusID
	return tea.Tick(statusMessageTimeout, func(time.Time) tea.Msg {
		return statusMessageTimeoutMsg(id)
	})
}

func (m *model) reload() tea.Cmd {
	path, markdown := m.doc.Path, m.doc.Markdown
	return func() tea.Msg {
		doc, err := LoadDocument(path, markdown)
		return documentLoadedMsg{doc: doc, err: err}
	}
}

// editorLine maps the resume point to a line of the source. Flattened
// markdown has no such mapping.
func (m model) editorLine() int {
	if m.doc.Markdown {
		return 0
	}
	return strings.Count(m.doc.Text[:m.resume], "\n") + 1
}

func (m *model) setSize() {
	m.viewport.Width = m.width
	m.viewport.Height = m.height - statusBarHeight
	if m.help.ShowAll {
		m.viewport.Height -= lipgloss.Height(m.help.View(m.keys))
	}
	m.help.Width = m.width
}

func (m model) wrapWidth() int {
	w := m.viewport.Width
	if m.cfg.Width > 0 && int(m.cfg.Width) < w {
		w = int(m.cfg.Width)
	}
	return max(w, 1)
}

// render refreshes the viewport and keeps the highlighted span in view.
func (m *model) render() {
	width := m.wrapWidth()
	m.viewport.SetContent(wordwrap.String(Highlight(m.doc.Text, m.span, m.highlight), width))

	if m.span.Empty() {
		return
	}
	line := strings.Count(wordwrap.String(m.doc.Text[:m.span.Start], width), "\n")
	if line < m.viewport.YOffset || line >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(max(0, line-m.viewport.Height/3))
	}
}

func (m model) View() string {
	var b strings.Builder
	fmt.Fprint(&b, m.viewport.View()+"\n")
	m.statusBarView(&b)
	if m.help.ShowAll {
		fmt.Fprint(&b, "\n"+m.help.View(m.keys))
	}
	return b.String()
}

func (m model) statusBarView(b *strings.Builder) {
	logo := logoStyle(" readaloud ")
	voice := statusBarVoiceStyle(fmt.Sprintf(" %gx ", m.rate.value()))

	var note string
	switch {
	case m.statusMessage != "":
		note = m.statusMessage
	case m.state == stateLoading:
		note = m.spinner.View() + " " + m.state.String()
	default:
		note = m.state.String()
		if idx := m.doc.WordAt(m.resume); (m.state == stateSpeaking || m.state == statePaused) && idx >= 0 {
			note = fmt.Sprintf("%s · word %s of %s", note,
				humanize.Comma(int64(idx+1)), humanize.Comma(int64(m.doc.WordCount())))
		}
	}
	note = fmt.Sprintf(" %s · %s ", m.doc.Name(), note)
	note = truncate.StringWithTail(note, uint(max(0, //nolint:gosec
		m.width-ansi.PrintableRuneWidth(logo)-ansi.PrintableRuneWidth(voice))), ellipsis)

	style := statusBarNoteStyle
	switch {
	case m.statusMessage != "" && m.statusIsError:
		style = statusBarErrorStyle
	case m.statusMessage != "":
		style = statusBarMessageStyle
	}
	padding := max(0, m.width-ansi.PrintableRuneWidth(logo)-ansi.PrintableRuneWidth(note)-ansi.PrintableRuneWidth(voice))

	fmt.Fprintf(b, "%s%s%s%s", logo, style(note), style(strings.Repeat(" ", padding)), voice)
}
