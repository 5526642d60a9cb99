package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/muurk/smartplug/internal/device"
	"github.com/muurk/smartplug/internal/transport"
)

// historySize is the number of power samples shown in the sparkline
const historySize = 40

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// FetchFunc reads one energy meter sample
type FetchFunc func() (*device.Realtime, error)

type readingMsg struct {
	reading *device.Realtime
	err     error
	at      time.Time
}

type pollMsg struct{}

// Monitor is a Bubble Tea model that polls an energy meter at a fixed
// interval and renders the latest reading with a power history.
type Monitor struct {
	title    string
	fetch    FetchFunc
	interval time.Duration
	limit    int // stop after this many samples, 0 = until quit

	spinner  spinner.Model
	fetching bool
	latest   *device.Realtime
	lastAt   time.Time
	err      error
	samples  int
	failures int
	peak     float64
	history  []float64
	width    int
	quitting bool
}

// NewMonitor creates a monitor that calls fetch every interval.
// limit bounds the number of samples; 0 polls until the user quits.
func NewMonitor(title string, fetch FetchFunc, interval time.Duration, limit int) Monitor {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(PrimaryColor)

	if interval <= 0 {
		interval = time.Second
	}

	return Monitor{
		title:    title,
		fetch:    fetch,
		interval: interval,
		limit:    limit,
		spinner:  s,
		width:    GetTerminalWidth(),
	}
}

// Init implements tea.Model
func (m Monitor) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return pollMsg{} })
}

func (m Monitor) fetchCmd() tea.Cmd {
	fetch := m.fetch
	return func() tea.Msg {
		reading, err := fetch()
		return readingMsg{reading: reading, err: err, at: time.Now()}
	}
}

// Update implements tea.Model
func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = clampWidth(msg.Width)

	case pollMsg:
		m.fetching = true
		return m, m.fetchCmd()

	case readingMsg:
		m.fetching = false
		m.samples++
		m.lastAt = msg.at
		m.err = msg.err
		if msg.err != nil {
			m.failures++
		} else {
			m.record(msg.reading)
		}

		if m.limit > 0 && m.samples >= m.limit {
			m.quitting = true
			return m, tea.Quit
		}
		return m, tea.Tick(m.interval, func(time.Time) tea.Msg { return pollMsg{} })

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *Monitor) record(reading *device.Realtime) {
	m.latest = reading
	watts, ok := reading.Watts()
	if !ok {
		return
	}
	if watts > m.peak {
		m.peak = watts
	}
	m.history = append(m.history, watts)
	if len(m.history) > historySize {
		m.history = m.history[len(m.history)-historySize:]
	}
}

// Samples returns the number of completed polls
func (m Monitor) Samples() int {
	return m.samples
}

// Latest returns the most recent successful reading
func (m Monitor) Latest() *device.Realtime {
	return m.latest
}

// View implements tea.Model
func (m Monitor) View() string {
	var b strings.Builder

	b.WriteString(HeaderTitleStyle.Render(strings.ToUpper(m.title)))
	if m.fetching && !m.quitting {
		b.WriteString(" " + m.spinner.View())
	}
	b.WriteString("\n\n")

	if m.latest == nil && m.err == nil {
		b.WriteString(ProgressLabelStyle.Render("Waiting for first reading..."))
		b.WriteString("\n")
	}

	if m.latest != nil {
		b.WriteString(m.renderReading())
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(ErrorMessageStyle.Render("  " + FailureMarker + " " + transport.ShortErrorMessage(m.err)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	footer := fmt.Sprintf("  %d samples, %d failed, every %s", m.samples, m.failures, m.interval)
	if !m.lastAt.IsZero() {
		footer += ", last " + m.lastAt.Format("15:04:05")
	}
	b.WriteString(StepPendingStyle.Render(footer))
	b.WriteString("\n")
	if !m.quitting {
		b.WriteString(StepPendingStyle.Render("  q to quit"))
		b.WriteString("\n")
	}

	return b.String()
}

func (m Monitor) renderReading() string {
	var b strings.Builder

	row := func(label, value string) {
		b.WriteString(ResultKeyStyle.Render("  " + label))
		b.WriteString(MonitorValueStyle.Render(value))
		b.WriteString("\n")
	}

	if v, ok := m.latest.Volts(); ok {
		row("Voltage", fmt.Sprintf("%.1f V", v))
	}
	if i, ok := m.latest.Amps(); ok {
		row("Current", fmt.Sprintf("%.3f A", i))
	}
	if p, ok := m.latest.Watts(); ok {
		row("Power", fmt.Sprintf("%.1f W", p))
		row("Peak", fmt.Sprintf("%.1f W", m.peak))
	}
	if t, ok := m.latest.KilowattHours(); ok {
		row("Total", fmt.Sprintf("%.3f kWh", t))
	}

	if len(m.history) > 1 {
		b.WriteString("\n  ")
		b.WriteString(lipgloss.NewStyle().Foreground(PrimaryColor).Render(Sparkline(m.history)))
		b.WriteString("\n")
	}

	return b.String()
}

// Sparkline renders values as block characters scaled between their min and max
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}

	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	out := make([]rune, len(values))
	for i, v := range values {
		idx := 0
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1))
		}
		out[i] = sparkBlocks[idx]
	}
	return string(out)
}

// RunMonitor runs the monitor in the terminal until the user quits or the
// sample limit is reached
func RunMonitor(m Monitor, opts ...tea.ProgramOption) (Monitor, error) {
	final, err := tea.NewProgram(m, opts...).Run()
	if err != nil {
		return m, err
	}
	if fm, ok := final.(Monitor); ok {
		return fm, nil
	}
	return m, nil
}
