package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"

	"github.com/gwillem/clawgantry/pkg/gantry"
	"github.com/gwillem/clawgantry/pkg/journal"
	"github.com/gwillem/clawgantry/pkg/session"
	"github.com/gwillem/clawgantry/pkg/sim"
	"github.com/gwillem/clawgantry/pkg/teleop"
)

type RunCommand struct {
	Sim      bool   `long:"sim" description:"Run against a simulated machine driven from the keyboard"`
	Headless bool   `long:"headless" description:"Log to stderr instead of showing the console"`
	Journal  string `long:"journal" env:"CLAW_JOURNAL" description:"SQLite file to record attempts in (overrides config)"`
}

const (
	headerHeight = 2 // title + blank line
	panelHeight  = 7 // status panel with border
	infoHeight   = 4 // session line, stick line, time bar, blank
	footerHeight = 7 // log box height
	maxLogs      = 5 // number of log messages to show
	borderSize   = 2 // chart border
	stickStep    = 32
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	chartStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("240"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	panelStyle  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Width(30).
			Height(5).
			Align(lipgloss.Center, lipgloss.Center)
)

// Status light colors
var ledColors = map[gantry.LED]string{
	gantry.LEDOff:         "240",
	gantry.LEDOrange:      "208",
	gantry.LEDOrangeFlash: "208",
	gantry.LEDOrangePulse: "214",
	gantry.LEDGreen:       "46",
	gantry.LEDGreenFlash:  "46",
	gantry.LEDRedFlash:    "196",
}

// Axis power colors
var axisColors = map[string]string{
	"x": "51",  // cyan
	"y": "201", // magenta
}

// Messages from the machine
type (
	displayMsg  []string
	ledMsg      gantry.LED
	soundMsg    gantry.Sound
	logMsg      string
	stateMsg    teleop.State
	snapshotMsg session.Snapshot
	doneMsg     struct{ err error }
)

// console is the operator-facing display, light and speaker when running
// with the terminal UI. Everything is forwarded to the program as messages.
type console struct {
	p *tea.Program
}

func (c *console) Show(lines ...string) { c.p.Send(displayMsg(slices.Clone(lines))) }
func (c *console) Clear()               { c.p.Send(displayMsg(nil)) }
func (c *console) SetLED(l gantry.LED)  { c.p.Send(ledMsg(l)) }
func (c *console) Play(s gantry.Sound)  { c.p.Send(soundMsg(s)) }

// logWriter feeds log lines into the console's log box.
type logWriter struct {
	c *console
}

func (w logWriter) Write(b []byte) (int, error) {
	if w.c.p == nil {
		return os.Stderr.Write(b)
	}
	w.c.p.Send(logMsg(strings.TrimRight(string(b), "\n")))
	return len(b), nil
}

type indicators []gantry.Indicator

func (is indicators) SetLED(l gantry.LED) {
	for _, i := range is {
		i.SetLED(l)
	}
}

type speakers []gantry.Speaker

func (ss speakers) Play(s gantry.Sound) {
	for _, sp := range ss {
		sp.Play(s)
	}
}

type runModel struct {
	machine *session.Machine
	sim     *sim.Machine
	cancel  context.CancelFunc
	mode    gantry.Mode
	chart   *streamlinechart.Model
	clock   progress.Model
	keys    keyMap
	help    help.Model
	limit   int
	width   int
	height  int
	lines   []string
	led     gantry.LED
	sound   string
	snap    session.Snapshot
	state   teleop.State
	logs    []string
	err     error
	done    bool
}

func (m *runModel) addLog(msg string) {
	m.logs = append(m.logs, msg)
	if len(m.logs) > maxLogs {
		m.logs = m.logs[len(m.logs)-maxLogs:]
	}
}

func waitForState(ctrl *teleop.Controller) tea.Cmd {
	return func() tea.Msg {
		return stateMsg(<-ctrl.States())
	}
}

func pollSnapshot(mc *session.Machine) tea.Cmd {
	return tea.Tick(200*time.Millisecond, func(time.Time) tea.Msg {
		return snapshotMsg(mc.Snapshot())
	})
}

// chartSize calculates the size of the chart based on terminal dimensions
func (m *runModel) chartSize() (width, height int) {
	if m.width == 0 || m.height == 0 {
		return 80, 10 // default size before we know terminal size
	}
	width = max(m.width-borderSize-2, 40)
	height = max(m.height-headerHeight-panelHeight-infoHeight-footerHeight-borderSize, 5)
	return width, height
}

func newRunModel(mc *session.Machine, sm *sim.Machine, cfg *gantry.Config, cancel context.CancelFunc) runModel {
	chart := streamlinechart.New(80, 10,
		streamlinechart.WithYRange(-100, 100),
	)
	for name, color := range axisColors {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		chart.SetDataSetStyles(name, runes.ThinLineStyle, style)
	}
	return runModel{
		machine: mc,
		sim:     sm,
		cancel:  cancel,
		mode:    cfg.Mode,
		chart:   &chart,
		clock:   progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		keys:    defaultKeyMap(),
		help:    help.New(),
		limit:   cfg.TimeLimitS,
	}
}

func (m runModel) Init() tea.Cmd {
	return tea.Batch(
		waitForState(m.machine.Controller()),
		pollSnapshot(m.machine),
	)
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		w, h := m.chartSize()
		m.chart.Resize(w, h)
		m.clock.Width = max(m.width-lipgloss.Width("time left 00s  ")-2, 10)
		m.help.Width = m.width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.cancel()
			return m, tea.Quit
		}
		if m.sim != nil {
			m.simKey(msg)
		}

	case displayMsg:
		m.lines = msg
	case ledMsg:
		m.led = gantry.LED(msg)
	case soundMsg:
		m.sound = gantry.Sound(msg).String()
	case logMsg:
		m.addLog(string(msg))

	case stateMsg:
		m.state = teleop.State(msg)
		m.chart.PushDataSet("x", float64(m.state.PowerX))
		m.chart.PushDataSet("y", float64(m.state.PowerY))
		m.chart.DrawAll()
		return m, waitForState(m.machine.Controller())

	case snapshotMsg:
		m.snap = session.Snapshot(msg)
		return m, pollSnapshot(m.machine)

	case doneMsg:
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// simKey maps keys to the simulated operator inputs.
func (m *runModel) simKey(msg tea.KeyMsg) {
	s := m.sim
	cur := s.Stick.Current()
	clamp := func(v int) int { return max(-128, min(128, v)) }
	switch {
	case key.Matches(msg, m.keys.Left):
		cur.X = clamp(cur.X - stickStep)
	case key.Matches(msg, m.keys.Right):
		cur.X = clamp(cur.X + stickStep)
	case key.Matches(msg, m.keys.Up):
		cur.Y = clamp(cur.Y + stickStep)
	case key.Matches(msg, m.keys.Down):
		cur.Y = clamp(cur.Y - stickStep)
	case key.Matches(msg, m.keys.Center):
		cur = gantry.Stick{}
	case key.Matches(msg, m.keys.Confirm):
		s.Stick.Push(gantry.Stick{X: cur.X, Y: cur.Y, Confirm: true}, 1)
		return
	case key.Matches(msg, m.keys.Blue):
		s.Cards.Insert(gantry.ColorBlue)
		return
	case key.Matches(msg, m.keys.Green):
		s.Cards.Insert(gantry.ColorGreen)
		return
	case key.Matches(msg, m.keys.Catch):
		s.World.CatchNext()
		return
	case key.Matches(msg, m.keys.Exit):
		s.Exit.Press()
		return
	default:
		return
	}
	s.Stick.Set(cur)
}

func (m runModel) View() string {
	if m.done {
		return "Machine stopped.\n"
	}

	var sb strings.Builder

	// Header
	sb.WriteString(titleStyle.Render("Claw Gantry"))
	sb.WriteString(fmt.Sprintf(" - %s mode, %d Hz", m.mode, m.machine.Controller().Hz()))
	if m.sim != nil {
		sb.WriteString(statusStyle.Render("  [sim]"))
	}
	sb.WriteString("\n\n")

	// Status panel and light
	ledStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(ledColors[m.led]))
	side := ledStyle.Render("● "+m.led.String()) + "\n" + statusStyle.Render("sound: "+m.sound)
	sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Center,
		panelStyle.Render(strings.Join(m.lines, "\n")),
		"  ",
		side,
	))
	sb.WriteString("\n")

	// Session and stick
	sb.WriteString(fmt.Sprintf("state: %s  credits: %d  attempts: %d  wins: %d",
		m.snap.State, m.snap.Credits, m.snap.Attempts, m.snap.Wins))
	if last := m.snap.Last; last != nil {
		sb.WriteString(statusStyle.Render(fmt.Sprintf("  last: %s (%s, %d)", last.Outcome, last.ID, last.Distance)))
	}
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render(fmt.Sprintf("stick x=%d y=%d  power x=%d y=%d",
		m.state.Stick.X, m.state.Stick.Y, m.state.PowerX, m.state.PowerY)))
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render(fmt.Sprintf("time left %02ds  ", m.state.Remaining)))
	sb.WriteString(m.clock.ViewAs(float64(m.state.Remaining) / float64(max(m.limit, 1))))
	sb.WriteString("\n")

	// Chart
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	// Log box
	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Width(max(m.width-4, 20))

	var logLines string
	if len(m.logs) == 0 {
		logLines = m.help.ShortHelpView(m.keys.ShortHelp(m.sim != nil))
	} else {
		logLines = strings.Join(m.logs, "\n")
	}
	sb.WriteString(logStyle.Render(logLines))
	sb.WriteString("\n")

	return sb.String()
}

func openRecorder(path string) (session.Recorder, func() error, error) {
	if path == "" {
		return nil, func() error { return nil }, nil
	}
	j, err := journal.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return j, j.Close, nil
}

func (c *RunCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	journalPath := cfg.Hardware.Journal
	if c.Journal != "" {
		journalPath = c.Journal
	}
	rec, closeRec, err := openRecorder(journalPath)
	if err != nil {
		return err
	}
	defer closeRec()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if c.Headless {
		if c.Sim {
			return errors.New("--sim needs the console for its inputs")
		}
		return runHeadless(ctx, cfg, rec)
	}

	con := &console{}
	logger := newLogger(logWriter{con})
	hw, err := openHardware(cfg, c.Sim, logger)
	if err != nil {
		return err
	}
	defer hw.Close()

	rig := hw.rig
	rig.Display = con
	if hw.sim != nil {
		rig.LED = con
		rig.Speaker = con
		go hw.sim.World.Run(ctx, 10*time.Millisecond)
	} else {
		rig.LED = indicators{rig.LED, con}
		rig.Speaker = speakers{rig.Speaker, con}
	}

	machine, err := session.New(rig, *cfg, logger, rec)
	if err != nil {
		return err
	}

	p := tea.NewProgram(newRunModel(machine, hw.sim, cfg, cancel), tea.WithAltScreen())
	con.p = p

	runErr := make(chan error, 1)
	go func() {
		err := machine.Run(ctx)
		p.Send(doneMsg{err})
		runErr <- err
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-runErr
		return fmt.Errorf("run console: %w", err)
	}
	cancel()
	if err := <-runErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func runHeadless(ctx context.Context, cfg *gantry.Config, rec session.Recorder) error {
	logger := newLogger(os.Stderr)
	hw, err := openHardware(cfg, false, logger)
	if err != nil {
		return err
	}
	defer hw.Close()

	machine, err := session.New(hw.rig, *cfg, logger, rec)
	if err != nil {
		return err
	}
	if err := machine.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
