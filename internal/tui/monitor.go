package tui

import (
	"fmt"
	"strings"

	"waveform/internal/analysis"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#767676"))
)

const (
	labelWidth  = 8
	valueWidth  = 10
	minBarWidth = 10
)

type frameMsg analysis.Frame

type monitorKeys struct {
	quit  key.Binding
	pause key.Binding
}

// MonitorModel renders the latest frame: one bar per capture channel in
// meter mode, one bar per frequency band and channel in spectrum mode.
type MonitorModel struct {
	title      string
	sampleRate float64
	floor      float32
	bands      []analysis.FrequencyBand
	keys       monitorKeys
	bar        progress.Model

	frame  analysis.Frame
	levels [][]float32
	seen   bool
	paused bool
}

// NewMonitorModel creates a monitor for a stream at sampleRate. Levels at or
// below floor dB draw an empty bar.
func NewMonitorModel(title string, sampleRate float64, floor float32) MonitorModel {
	return MonitorModel{
		title:      title,
		sampleRate: sampleRate,
		floor:      floor,
		bands:      analysis.DefaultBands(sampleRate),
		keys: monitorKeys{
			quit:  key.NewBinding(key.WithKeys("q", "ctrl+c")),
			pause: key.NewBinding(key.WithKeys(" ", "p")),
		},
		bar: progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage(), progress.WithWidth(40)),
	}
}

func (m MonitorModel) Init() tea.Cmd {
	return nil
}

func (m MonitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.bar.Width = max(minBarWidth, msg.Width-labelWidth-valueWidth-4)

	case frameMsg:
		if m.paused {
			break
		}
		m.frame = analysis.Frame(msg)
		m.seen = true
		if len(m.levels) != len(m.frame.Spectrum) {
			m.levels = make([][]float32, len(m.frame.Spectrum))
		}
		for ch, db := range m.frame.Spectrum {
			if len(m.levels[ch]) != len(m.bands) {
				m.levels[ch] = make([]float32, len(m.bands))
			}
			analysis.BandLevels(m.levels[ch], db, m.bands, m.sampleRate)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.pause):
			m.paused = !m.paused
		}
	}
	return m, nil
}

// fraction maps a dB value onto [0, 1] between the floor and 0 dB.
func (m MonitorModel) fraction(db float32) float64 {
	if m.floor >= 0 {
		return 0
	}
	return float64(min(max((db-m.floor)/-m.floor, 0), 1))
}

func (m MonitorModel) row(sb *strings.Builder, label string, db float32) {
	value := "   -inf dB"
	if db > analysis.MinDecibels {
		value = fmt.Sprintf("%7.1f dB", db)
	}
	fmt.Fprintf(sb, "%-*s %s %s\n", labelWidth, label, m.bar.ViewAs(m.fraction(db)), value)
}

func channelName(ch, channels int) string {
	if channels == 2 {
		return [...]string{"L", "R"}[ch]
	}
	return fmt.Sprintf("ch%d", ch+1)
}

func (m MonitorModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.title))
	sb.WriteString("\n\n")

	switch {
	case !m.seen:
		sb.WriteString(mutedStyle.Render("Waiting for audio..."))
		sb.WriteString("\n")

	case m.frame.Mode == analysis.ModeMeter.String():
		for ch, db := range m.frame.Meter {
			m.row(&sb, channelName(ch, len(m.frame.Meter)), db)
		}

	default:
		for ch := range m.levels {
			if len(m.levels) > 1 {
				sb.WriteString(highlightStyle.Render(channelName(ch, len(m.levels))))
				sb.WriteString("\n")
			}
			for i, band := range m.bands {
				m.row(&sb, band.Name, m.levels[ch][i])
			}
		}
	}

	status := fmt.Sprintf("frame %d", m.frame.Seq)
	if m.frame.Silent {
		status += " • silent"
	}
	if m.paused {
		status += " • paused"
	}
	sb.WriteString("\n")
	sb.WriteString(mutedStyle.Render(status))
	sb.WriteString("\n")
	sb.WriteString(infoStyle.Render("space: Pause • q: Quit"))
	return sb.String()
}

// Monitor runs a MonitorModel and feeds it frames. It satisfies the
// transport interface so the frame loop can treat it like any other sink.
type Monitor struct {
	program *tea.Program
}

// NewMonitor wraps model in a program. Options are passed to bubbletea.
func NewMonitor(model MonitorModel, opts ...tea.ProgramOption) *Monitor {
	return &Monitor{program: tea.NewProgram(model, opts...)}
}

// Run blocks until the user quits or Close is called.
func (m *Monitor) Run() error {
	_, err := m.program.Run()
	return err
}

// Send copies the frame into the program. Other payloads are rejected.
func (m *Monitor) Send(data any) error {
	f, ok := data.(*analysis.Frame)
	if !ok {
		return fmt.Errorf("monitor: unsupported payload %T", data)
	}
	m.program.Send(copyFrame(f))
	return nil
}

// Close asks the program to exit.
func (m *Monitor) Close() error {
	m.program.Quit()
	return nil
}

func copyFrame(f *analysis.Frame) frameMsg {
	c := frameMsg{
		Seq:    f.Seq,
		Mode:   f.Mode,
		Silent: f.Silent,
		Meter:  append([]float32(nil), f.Meter...),
	}
	c.Spectrum = make([][]float32, len(f.Spectrum))
	for ch, bins := range f.Spectrum {
		c.Spectrum[ch] = append([]float32(nil), bins...)
	}
	return c
}
