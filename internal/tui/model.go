// Package tui provides the Bubble Tea drill interface.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/verte-zerg/notedrill/internal/drill"
	"github.com/verte-zerg/notedrill/internal/notes"
)

// MIDIMsg carries an event from the MIDI listener into the program.
type MIDIMsg struct {
	Event drill.Event
}

type presentDoneMsg struct{}

type feedback int

const (
	feedbackNone feedback = iota
	feedbackCorrect
	feedbackWrong
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	targetStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true).Padding(1, 4).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#4A4A4A"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	correctStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A")).Bold(true)
	wrongStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F")).Bold(true)
	reportStyle   = lipgloss.NewStyle().Padding(0, 1).Border(lipgloss.RoundedBorder(), true).BorderForeground(lipgloss.Color("#C89A3A"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	weightBarChar = "▇"
)

// Options configures the drill model.
type Options struct {
	ShowNote bool
	// Player sounds targets. Nil means targets are only shown on screen.
	Player drill.Presenter
	// AwaitDevice holds the first target back until any MIDI note arrives.
	AwaitDevice bool
	Logger      *zap.Logger
}

// Model implements the Bubble Tea drill UI. It is also the session's
// Presenter and Reporter: presentations are queued and flushed as commands
// after each update.
type Model struct {
	params  drill.Params
	session *drill.Session
	keys    keyMap
	noteKey notes.KeyMap
	help    help.Model
	opts    Options
	logger  *zap.Logger

	width  int
	height int

	waitingForDevice bool
	playing          bool
	queued           []notes.Note

	feedback  feedback
	lastWrong notes.Note
	report    *drill.WindowStats
}

// NewModel builds the drill UI around a fresh session.
func NewModel(params drill.Params, selector *drill.Selector, opts Options, sessionOpts ...drill.Option) *Model {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Player == nil {
		opts.ShowNote = true
	}
	noteKey := notes.BindKeys(params.Scale)
	m := &Model{
		params:           params,
		keys:             newKeyMap(noteKey, params.Scale),
		noteKey:          noteKey,
		help:             help.New(),
		opts:             opts,
		logger:           opts.Logger,
		waitingForDevice: opts.AwaitDevice,
	}
	sessionOpts = append([]drill.Option{drill.WithLogger(opts.Logger)}, sessionOpts...)
	m.session = drill.NewSession(params, selector, m, m, sessionOpts...)
	if !m.waitingForDevice {
		m.session.Start(context.Background())
	}
	return m
}

// Session exposes the underlying session.
func (m *Model) Session() *drill.Session {
	return m.session
}

// Present implements drill.Presenter by queueing the note for playback.
func (m *Model) Present(_ context.Context, n notes.Note) error {
	m.queued = append(m.queued, n)
	return nil
}

// Report implements drill.Reporter.
func (m *Model) Report(_ context.Context, stats drill.WindowStats) {
	m.report = &stats
	m.logger.Info("window report",
		zap.Int("correct", stats.Correct),
		zap.Int("total", stats.Total))
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.flush()
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case presentDoneMsg:
		m.playing = false
		return m, m.flush()
	case MIDIMsg:
		if m.waitingForDevice {
			if msg.Event.Kind != drill.EventAttempt {
				return m, nil
			}
			m.waitingForDevice = false
			m.logger.Info("MIDI input confirmed", zap.String("note", msg.Event.Note.Name))
			m.session.Start(context.Background())
			return m, m.flush()
		}
		return m, m.handle(msg.Event)
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.session.Stop()
			return m, tea.Quit
		case m.waitingForDevice:
			return m, nil
		case key.Matches(msg, m.keys.Replay):
			return m, m.handle(drill.Replay())
		case key.Matches(msg, m.keys.Notes):
			n := m.noteKey[msg.String()]
			return m, m.handle(drill.Event{Kind: drill.EventAttempt, Note: n, At: time.Now()})
		}
		return m, nil
	}
	return m, nil
}

func (m *Model) handle(ev drill.Event) tea.Cmd {
	if m.playing {
		// input during playback is discarded
		return nil
	}
	out := m.session.Handle(context.Background(), ev)
	switch out.Kind {
	case drill.OutcomeCorrect:
		m.feedback = feedbackCorrect
		if out.Report == nil {
			m.report = nil
		}
	case drill.OutcomeWrong:
		m.feedback = feedbackWrong
		m.lastWrong = out.Attempted
	}
	return m.flush()
}

// flush turns queued presentations into playback commands.
func (m *Model) flush() tea.Cmd {
	if len(m.queued) == 0 || m.playing {
		return nil
	}
	queued := m.queued
	m.queued = nil
	if m.opts.Player == nil {
		return nil
	}
	m.playing = true
	player := m.opts.Player
	logger := m.logger
	return func() tea.Msg {
		for _, n := range queued {
			if err := player.Present(context.Background(), n); err != nil {
				logger.Warn("failed to play note", zap.String("note", n.Name), zap.Error(err))
			}
		}
		return presentDoneMsg{}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	sections := []string{titleStyle.Render("Note Drill · " + m.params.Scale.String())}
	if m.waitingForDevice {
		sections = append(sections, "Play any note on your instrument to confirm the connection...")
		return m.place(strings.Join(sections, "\n\n"))
	}
	sections = append(sections, targetStyle.Render(m.renderTarget()))
	if line := m.renderFeedback(); line != "" {
		sections = append(sections, line)
	}
	if m.report != nil {
		sections = append(sections, reportStyle.Render(renderReport(*m.report)))
	}
	if strip := renderRecent(m.session.Tracker().Recent()); strip != "" {
		sections = append(sections, strip)
	}
	sections = append(sections, m.renderWeights())
	body := lipgloss.JoinVertical(lipgloss.Center, sections...)
	return m.place(body)
}

func (m *Model) place(body string) string {
	footer := m.renderFooter() + "\n" + m.help.View(m.keys)
	if m.width == 0 || m.height == 0 {
		return body + "\n\n" + footer
	}
	footerHeight := lipgloss.Height(footer)
	bodyHeight := max(1, m.height-footerHeight)
	return lipgloss.Place(m.width, bodyHeight, lipgloss.Center, lipgloss.Center, body) + "\n" +
		lipgloss.PlaceHorizontal(m.width, lipgloss.Center, footer)
}

func (m *Model) renderTarget() string {
	if m.playing {
		return "♪ Playing..."
	}
	target := m.session.Target()
	if !m.opts.ShowNote {
		return "♪ Which note was that?"
	}
	label := target.Name
	if k, ok := m.noteKey.KeyFor(target); ok {
		label += mutedStyle.Render(fmt.Sprintf("  [%s]", k))
	}
	return label + "\n" + mutedStyle.Render(fmt.Sprintf("%.2f Hz", target.Frequency()))
}

func (m *Model) renderFeedback() string {
	switch m.feedback {
	case feedbackCorrect:
		return correctStyle.Render("✓ Correct!")
	case feedbackWrong:
		return wrongStyle.Render(fmt.Sprintf("✗ Wrong! (%s) Try again.", m.lastWrong.Name))
	default:
		return ""
	}
}

func renderReport(s drill.WindowStats) string {
	return fmt.Sprintf("Last %d notes\nCorrect: %d  Wrong: %d\nAccuracy: %.1f%%",
		s.Total, s.Correct, s.Wrong(), s.Accuracy()*100)
}

func renderRecent(outcomes []bool) string {
	if len(outcomes) == 0 {
		return ""
	}
	var b strings.Builder
	for _, ok := range outcomes {
		if ok {
			b.WriteString(correctStyle.Render("●"))
		} else {
			b.WriteString(wrongStyle.Render("○"))
		}
	}
	return b.String()
}

// renderWeights draws one bar per note scaled to its current weight.
func (m *Model) renderWeights() string {
	tracker := m.session.Tracker()
	const barWidth = 8
	cols := make([]string, 0, len(m.params.Scale))
	for _, n := range m.params.Scale {
		w := tracker.Weight(n)
		filled := int(w*barWidth + 0.5)
		rec := tracker.Record(n)
		col := fmt.Sprintf("%-3s %s%s %d/%d",
			n.Name,
			strings.Repeat(weightBarChar, filled),
			strings.Repeat(" ", barWidth-filled),
			rec.Correct, rec.Total())
		cols = append(cols, mutedStyle.Render(col))
	}
	return strings.Join(cols, "\n")
}

func (m *Model) renderFooter() string {
	tracker := m.session.Tracker()
	ws := tracker.WindowStats()
	segments := []string{fmt.Sprintf("Attempts %d", tracker.TotalAttempts())}
	if ws.Total > 0 {
		segments = append(segments, fmt.Sprintf("Last %d · %.1f%%", ws.Total, ws.Accuracy()*100))
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
