package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/text/transform"

	"go-smf/midi"
	"go-smf/theme"
	"go-smf/widgets"
)

// chrome is the number of lines View uses besides the event rows
const chrome = 8

// stripWidth is the number of cells in the activity strip
const stripWidth = 48

var keyHelp = []widgets.HelpGroup{
	{Title: "Events", Bindings: []widgets.Binding{
		{Keys: "j/k", Action: "move"},
		{Keys: "space/pgup", Action: "page down/up"},
		{Keys: "g/G", Action: "first/last event"},
	}},
	{Title: "Tracks", Bindings: []widgets.Binding{
		{Keys: "tab/l", Action: "next track"},
		{Keys: "shift+tab/h", Action: "previous track"},
	}},
	{Title: "Viewer", Bindings: []widgets.Binding{
		{Keys: "?", Action: "toggle help"},
		{Keys: "q", Action: "quit"},
	}},
}

type Model struct {
	Path   string
	Header midi.Header
	Tracks [][]Row
	Theme  *theme.Theme
	Text   transform.Transformer // decodes text meta events, may be nil

	track    int
	cursor   int
	offset   int
	pageSize int
	help     bool
	quitting bool
}

// NewModel builds the viewer for a decoded file. A file without tracks is
// shown as a single empty track.
func NewModel(path string, header midi.Header, messages []midi.Message, th *theme.Theme, pageSize int) Model {
	var tracks [][]Row
	for _, t := range midi.SplitTracks(messages) {
		tracks = append(tracks, Rows(t))
	}
	if len(tracks) == 0 {
		tracks = [][]Row{{}}
	}

	if pageSize <= 0 {
		pageSize = 20
	}
	return Model{
		Path:     path,
		Header:   header,
		Tracks:   tracks,
		Theme:    th,
		pageSize: pageSize,
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

// Track returns the selected track index
func (m Model) Track() int { return m.track }

// Cursor returns the selected row within the track
func (m Model) Cursor() int { return m.cursor }

func (m Model) rows() []Row {
	return m.Tracks[m.track]
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "j", "down":
			m.move(1)
		case "k", "up":
			m.move(-1)
		case "pgdown", " ", "space":
			m.move(m.pageSize)
		case "pgup":
			m.move(-m.pageSize)
		case "g", "home":
			m.move(-len(m.rows()))
		case "G", "end":
			m.move(len(m.rows()))
		case "tab", "l", "right":
			m.selectTrack(m.track + 1)
		case "shift+tab", "h", "left":
			m.selectTrack(m.track - 1)
		case "?":
			m.help = !m.help
		}

	case tea.WindowSizeMsg:
		if msg.Height > chrome {
			m.pageSize = msg.Height - chrome
			m.move(0)
		}
	}
	return m, nil
}

func (m *Model) move(delta int) {
	n := len(m.rows())
	m.cursor = max(0, min(n-1, m.cursor+delta))
	if n == 0 {
		m.cursor = 0
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.pageSize {
		m.offset = m.cursor - m.pageSize + 1
	}
}

func (m *Model) selectTrack(i int) {
	n := len(m.Tracks)
	m.track = (i%n + n) % n
	m.cursor, m.offset = 0, 0
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := m.Theme.HeaderStyle()
	dimStyle := m.Theme.DimStyle()
	cursorStyle := lipgloss.NewStyle().Foreground(m.Theme.Cursor()).Bold(true)

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(headerStyle.Render(fmt.Sprintf("go-smf  %s  format:%d  tracks:%d  timebase:%d",
		m.Path, m.Header.Format, m.Header.Tracks, m.Header.TimeBase)))
	out.WriteString("\n")

	// Track tabs
	var tabs []string
	for i, t := range m.Tracks {
		label := fmt.Sprintf(" %d (%d) ", i+1, len(t))
		if i == m.track {
			tabs = append(tabs, cursorStyle.Render("["+label+"]"))
		} else {
			tabs = append(tabs, dimStyle.Render(" "+label+" "))
		}
	}
	out.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
	out.WriteString("\n")

	rows := m.rows()
	messages := make([]midi.Message, len(rows))
	for i, r := range rows {
		messages[i] = r.Msg
	}
	out.WriteString(" " + widgets.RenderActivity(m.Theme, messages, stripWidth))
	out.WriteString("\n\n")

	if m.help {
		out.WriteString(widgets.RenderHelp(m.Theme, keyHelp) + "\n\n")
		out.WriteString(widgets.Legend(m.Theme) + "\n")
		return out.String()
	}

	end := min(len(rows), m.offset+m.pageSize)
	for i := m.offset; i < end; i++ {
		r := rows[i]
		prefix := "  "
		if i == m.cursor {
			prefix = cursorStyle.Render("> ")
		}
		tick := dimStyle.Render(fmt.Sprintf("%8d +%-6d", r.Tick, r.Msg.Delta()))
		line := m.Theme.MessageStyle(r.Msg).Render(Summary(r.Msg, m.Text))
		out.WriteString(prefix + tick + " " + line + "\n")
	}
	if len(rows) == 0 {
		out.WriteString(dimStyle.Render("  (empty track)") + "\n")
	}

	out.WriteString("\n")
	if m.cursor < len(rows) {
		out.WriteString(dimStyle.Render(Detail(rows[m.cursor].Msg)))
	}
	out.WriteString("\n")
	out.WriteString(dimStyle.Render("j/k:move  space/pgup:page  g/G:top/bottom  tab/h/l:track  ?:help  q:quit"))

	return out.String()
}
