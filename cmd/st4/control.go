package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/st4/pkg/control"
	"github.com/gwillem/st4/pkg/rig"
)

type ControlCommand struct {
	Hz   int     `long:"hz" default:"10" description:"Maximum jog commands per second"`
	Step float64 `long:"step" default:"1" description:"Degrees per key press"`
}

const (
	headerHeight = 2 // title + blank line
	legendHeight = 2 // legend row + blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
)

// Axis colors - distinct colors for each charted axis
var axisColors = map[rig.AxisName]string{
	rig.Pan:  "196", // red
	rig.Tilt: "51",  // cyan
}

var chartedAxes = []rig.AxisName{rig.Pan, rig.Tilt}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type controlModel struct {
	ctrl     *control.Controller
	chart    *streamlinechart.Model
	width    int      // terminal width
	height   int      // terminal height
	logs     []string // last N log messages
	state    control.State
	quitting bool
}

func (m *controlModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

// Messages from the controller
type stateMsg control.State
type logMsg string

func waitForState(ctrl *control.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ctrl.States())
	}
}

func waitForLog(ctrl *control.Controller) tea.Cmd {
	return func() tea.Msg {
		return logMsg(<-ctrl.Logs())
	}
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *controlModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 20 // default size before we know terminal size
	}
	width = m.width - borderSize - 2
	if width < 40 {
		width = 40
	}
	height = m.height - headerHeight - legendHeight - footerHeight - borderSize
	if height < 10 {
		height = 10
	}
	return width, height
}

func (m *controlModel) resizeChart() {
	w, h := m.chartSize()
	m.chart.Resize(w, h)
}

func initialControlModel(ctrl *control.Controller) controlModel {
	chart := streamlinechart.New(80, 20,
		streamlinechart.WithYRange(-180, 180),
	)

	for _, name := range chartedAxes {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(axisColors[name]))
		chart.SetDataSetStyles(string(name), runes.ThinLineStyle, style)
	}

	return controlModel{
		ctrl:  ctrl,
		chart: &chart,
	}
}

func (m controlModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.ctrl),
		waitForLog(m.ctrl),
	)
}

func (m controlModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeChart()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "left", "h":
			m.ctrl.Nudge(-1, 0)
		case "right", "l":
			m.ctrl.Nudge(1, 0)
		case "up", "k":
			m.ctrl.Nudge(0, 1)
		case "down", "j":
			m.ctrl.Nudge(0, -1)
		case "z":
			m.ctrl.RequestZero()
		}
		return m, nil

	case stateMsg:
		m.state = control.State(msg)
		if m.state.Error == nil {
			m.chart.PushDataSet(string(rig.Pan), m.state.Pan)
			m.chart.PushDataSet(string(rig.Tilt), m.state.Tilt)
			m.chart.DrawAll()
		}
		return m, waitForState(m.ctrl)

	case logMsg:
		m.addLog(string(msg))
		return m, waitForLog(m.ctrl)
	}

	return m, nil
}

func (m controlModel) View() string {
	if m.quitting {
		return "Jog control stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("ST4 Control"))
	sb.WriteString(fmt.Sprintf(" - pan %.2f°  tilt %.2f°", m.state.Pan, m.state.Tilt))
	sb.WriteString(statusStyle.Render(fmt.Sprintf("  [%.2f°/key, %d Hz]", m.ctrl.StepDeg(), m.ctrl.Hz())))
	sb.WriteString("\n\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Legend
	sb.WriteString(renderLegend())
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(m.width - 4).
		Foreground(lipgloss.Color("9")) // bright red

	var logLines string
	if len(m.logs) == 0 {
		logLines = statusStyle.Render("Arrows or hjkl to jog, 'z' to zero, 'q' to quit")
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func renderLegend() string {
	var items []string
	for _, name := range chartedAxes {
		colorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(axisColors[name])).Bold(true)
		item := colorStyle.Render("━━") + " " + string(name)
		items = append(items, item)
	}
	return strings.Join(items, "  ")
}

func (c *ControlCommand) Execute(args []string) error {
	r, err := openRig()
	if err != nil {
		return err
	}
	defer r.Close()

	ctrl, err := control.NewController(control.Config{
		Rig:     r,
		Hz:      c.Hz,
		StepDeg: c.Step,
	})
	if err != nil {
		return err
	}

	// Start controller in background
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := ctrl.Start(ctx); err != nil && err != context.Canceled {
			log.Printf("Controller error: %v", err)
		}
	}()

	// Run TUI
	p := tea.NewProgram(initialControlModel(ctrl), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run control: %w", err)
	}

	return nil
}
