package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/NimbleMarkets/ntcharts/canvas/runes"
	"github.com/NimbleMarkets/ntcharts/linechart/streamlinechart"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gwillem/clawgantry/pkg/gantry"
)

var rangeColors = map[string]string{
	"raw":     "241",
	"trusted": "10",
}

type MonitorCommand struct {
	Sim   bool `long:"sim" description:"Read a simulated, noisy range finder"`
	Noise int  `long:"noise" default:"3" description:"Noise amplitude of the simulated range finder"`
}

type (
	rawMsg      int
	trustedMsg  int
	rejectMsg   struct{}
	rangeErrMsg struct{ err error }
)

type monitorModel struct {
	cfg      gantry.Config
	chart    *streamlinechart.Model
	raw      int
	trusted  int
	accepted int
	rejected int
	err      error
	width    int
	height   int
}

func newMonitorModel(cfg gantry.Config) monitorModel {
	chart := streamlinechart.New(80, 12,
		streamlinechart.WithYRange(0, 300),
	)
	for name, color := range rangeColors {
		style := lipgloss.NewStyle().Foreground(lipgloss.Color(color))
		chart.SetDataSetStyles(name, runes.ThinLineStyle, style)
	}
	return monitorModel{cfg: cfg, chart: &chart, trusted: -1}
}

func (m monitorModel) Init() tea.Cmd { return nil }

func (m monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.chart.Resize(max(m.width-borderSize-2, 40), max(m.height-headerHeight-borderSize-3, 5))
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		}

	case rawMsg:
		m.raw = int(msg)
		m.chart.PushDataSet("raw", float64(msg))
		if m.trusted >= 0 {
			m.chart.PushDataSet("trusted", float64(m.trusted))
		}
		m.chart.DrawAll()

	case trustedMsg:
		m.trusted = int(msg)
		m.accepted++

	case rejectMsg:
		m.rejected++

	case rangeErrMsg:
		m.err = msg.err
		return m, tea.Quit
	}
	return m, nil
}

func (m monitorModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("Range Finder Monitor"))
	sb.WriteString("\n\n")
	sb.WriteString(chartStyle.Render(m.chart.View()))
	sb.WriteString("\n")

	trusted := "-"
	if m.trusted >= 0 {
		trusted = fmt.Sprint(m.trusted)
	}
	info := fmt.Sprintf("raw %3d  trusted %s  rounds accepted %d  rejected %d  (%d samples, tol %d, need %d)",
		m.raw, trusted, m.accepted, m.rejected,
		m.cfg.RangingSamples, m.cfg.RangingTolerance, m.cfg.RangingAgreement)
	sb.WriteString(statusStyle.Render(info))
	sb.WriteString("\n")
	sb.WriteString(statusStyle.Render("Press q to quit"))
	return sb.String()
}

// sampleRanges reads rounds of samples like ConsistentDistance does and
// reports every raw reading plus the outcome of each round.
func sampleRanges(ctx context.Context, ranger gantry.RangeFinder, cfg gantry.Config, p *tea.Program) {
	samples := make([]int, cfg.RangingSamples)
	for {
		for i := range samples {
			d, err := ranger.Distance()
			if err != nil {
				p.Send(rangeErrMsg{err})
				return
			}
			samples[i] = d
			p.Send(rawMsg(d))

			select {
			case <-ctx.Done():
				return
			case <-time.After(cfg.RangingSpacing()):
			}
		}
		if gantry.Agrees(samples, cfg.RangingTolerance, cfg.RangingAgreement) {
			p.Send(trustedMsg(samples[0]))
		} else {
			p.Send(rejectMsg{})
		}
	}
}

func (c *MonitorCommand) Execute(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	hw, err := openHardware(cfg, c.Sim, newLogger(io.Discard))
	if err != nil {
		return err
	}
	defer hw.Close()
	if hw.sim != nil {
		hw.sim.World.SetNoise(c.Noise, uint64(time.Now().UnixNano()))
		go hw.sim.World.Run(ctx, 10*time.Millisecond)
	}

	p := tea.NewProgram(newMonitorModel(*cfg), tea.WithAltScreen())
	go sampleRanges(ctx, hw.rig.Ranger, *cfg, p)

	final, err := p.Run()
	cancel()
	if err != nil {
		return fmt.Errorf("run monitor: %w", err)
	}
	if m, ok := final.(monitorModel); ok && m.err != nil {
		return fmt.Errorf("read distance: %w", m.err)
	}
	return nil
}
