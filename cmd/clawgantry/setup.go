package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/hipsterbrown/feetech-servo/feetech"
	"go.bug.st/serial"

	"github.com/gwillem/clawgantry/pkg/board"
	"github.com/gwillem/clawgantry/pkg/gantry"
)

var (
	headerStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	subHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	successStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	failStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type SetupCommand struct{}

func (c *SetupCommand) Execute(args []string) error {
	fmt.Println(headerStyle.Render("Claw Gantry Setup"))
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━"))
	fmt.Println()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ports, err := listPorts()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		return errors.New("no serial ports found; is the controller board plugged in?")
	}

	// Step 1: controller board
	fmt.Println(subHeaderStyle.Render("━━━ Controller Board ━━━"))
	fmt.Println()
	cfg.Hardware.BoardPort = selectPort("Which port is the controller board on?", ports)
	probeBoard(cfg.Hardware.BoardPort, cfg.Hardware.BoardBaud)

	// Step 2: mode
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Mode ━━━"))
	fmt.Println()
	cfg.Mode = selectMode(cfg.Mode)

	// Step 3: gripper
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Gripper ━━━"))
	fmt.Println()
	if confirm("Is the claw driven by a Feetech bus servo?", cfg.Hardware.ServoPort != "") {
		setupServo(cfg, ports)
	} else {
		cfg.Hardware.ServoPort = ""
	}

	// Step 4: GPIO inputs
	fmt.Println()
	fmt.Println(subHeaderStyle.Render("━━━ Limit Switches ━━━"))
	fmt.Println()
	if confirm("Are the limit switches and exit button wired to Raspberry Pi GPIO?", cfg.Hardware.GPIO != nil) {
		cfg.Hardware.GPIO = askPins(cfg.Hardware.GPIO)
	} else {
		cfg.Hardware.GPIO = nil
	}

	// Step 5: journal
	if cfg.Hardware.Journal == "" {
		cfg.Hardware.Journal = "clawgantry.db"
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Attempt journal").
				Description("SQLite file for the attempt log, empty to disable").
				Value(&cfg.Hardware.Journal),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.SaveTo(opts.Config); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	fmt.Println()
	fmt.Println(dimStyle.Render("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"))
	fmt.Println(successStyle.Render("Setup complete!"))
	fmt.Printf("Configuration saved to %s\n", opts.Config)
	fmt.Println()
	fmt.Println("Home the gantry with: " + headerStyle.Render("clawgantry home"))
	fmt.Println("Start the machine with: " + headerStyle.Render("clawgantry run"))
	return nil
}

func listPorts() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("list serial ports: %w", err)
	}
	var out []string
	for _, port := range ports {
		// Skip Bluetooth ports on macOS
		if strings.Contains(port, "Bluetooth") {
			continue
		}
		out = append(out, port)
	}
	return out, nil
}

func selectPort(title string, ports []string) string {
	options := make([]huh.Option[string], 0, len(ports))
	for _, p := range ports {
		options = append(options, huh.NewOption(p, p))
	}

	var port string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(title).
				Options(options...).
				Value(&port),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	return port
}

func probeBoard(port string, baud int) {
	b, err := board.Open(port, baud, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		fmt.Println(failStyle.Render("  Could not open board: " + err.Error()))
		return
	}
	defer b.Close()

	if err := b.Ping(); err != nil {
		fmt.Println(failStyle.Render("  Board did not answer: " + err.Error()))
		return
	}
	d, _ := b.Distance()
	fmt.Println(successStyle.Render(fmt.Sprintf("  Board answered on %s (range finder reads %d)", port, d)))
}

func selectMode(current gantry.Mode) gantry.Mode {
	mode := string(current)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("What does this machine do?").
				Options(
					huh.NewOption("Claw machine (credit-gated prize attempts)", string(gantry.ModeClaw)),
					huh.NewOption("Warehouse (operator-guided storage)", string(gantry.ModeWarehouse)),
				).
				Value(&mode),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	return gantry.Mode(mode)
}

func confirm(title string, def bool) bool {
	v := def
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(&v),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	return v
}

type servoInfo struct {
	port  string
	found feetech.FoundServo
}

// findServos scans every port except the board's for servos with IDs 1-10.
func findServos(ports []string, skip string) []servoInfo {
	var servos []servoInfo
	for _, port := range ports {
		if port == skip {
			continue
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		bus, err := feetech.NewBus(feetech.BusConfig{
			Port:     port,
			BaudRate: 1_000_000,
			Protocol: feetech.ProtocolSTS,
			Timeout:  100 * time.Millisecond,
		})
		if err != nil {
			cancel()
			continue
		}
		found, err := bus.Scan(ctx, 1, 10)
		cancel()
		bus.Close()
		if err != nil {
			continue
		}
		for _, s := range found {
			fmt.Printf("  Found servo %d on %s\n", s.ID, port)
			servos = append(servos, servoInfo{port: port, found: s})
		}
	}
	return servos
}

func setupServo(cfg *gantry.Config, ports []string) {
	fmt.Println("Scanning for servos...")
	servos := findServos(ports, cfg.Hardware.BoardPort)
	if len(servos) == 0 {
		fmt.Println(failStyle.Render("No servos found. Falling back to the board's gripper motor."))
		cfg.Hardware.ServoPort = ""
		return
	}

	options := make([]huh.Option[int], 0, len(servos))
	for i, s := range servos {
		options = append(options, huh.NewOption(fmt.Sprintf("ID %d on %s", s.found.ID, s.port), i))
	}
	var idx int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Which servo drives the claw?").
				Options(options...).
				Value(&idx),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	chosen := servos[idx]
	cfg.Hardware.ServoPort = chosen.port
	cfg.Hardware.ServoID = chosen.found.ID

	open, closed, err := calibrateServo(chosen)
	if err != nil {
		fmt.Println(failStyle.Render("Calibration failed: " + err.Error()))
		return
	}
	cfg.Hardware.ServoOpen = open
	cfg.Hardware.ServoClosed = closed
	fmt.Println(successStyle.Render(fmt.Sprintf("Claw servo: open=%d closed=%d", open, closed)))
}

// calibrateServo records the open and closed positions moved by hand.
func calibrateServo(s servoInfo) (open, closed int, err error) {
	bus, err := feetech.NewBus(feetech.BusConfig{
		Port:     s.port,
		BaudRate: 1_000_000,
		Protocol: feetech.ProtocolSTS,
		Timeout:  100 * time.Millisecond,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("open bus: %w", err)
	}
	defer bus.Close()

	ctx := context.Background()
	servo := feetech.NewServo(bus, s.found.ID, s.found.Model)
	servo.Disable(ctx)

	waitForUser("Open the claw fully by hand.")
	if open, err = servo.Position(ctx); err != nil {
		return 0, 0, fmt.Errorf("read open position: %w", err)
	}
	waitForUser("Close the claw fully by hand.")
	if closed, err = servo.Position(ctx); err != nil {
		return 0, 0, fmt.Errorf("read closed position: %w", err)
	}
	return open, closed, nil
}

func askPins(cur *gantry.GPIOConfig) *gantry.GPIOConfig {
	g := gantry.GPIOConfig{HomeX: 17, HomeY: 27, Exit: 22, ActiveLow: true}
	if cur != nil {
		g = *cur
	}
	homeX, homeY, exit := strconv.Itoa(g.HomeX), strconv.Itoa(g.HomeY), strconv.Itoa(g.Exit)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Forward limit switch (BCM pin)").Value(&homeX).Validate(validPin),
			huh.NewInput().Title("Left limit switch (BCM pin)").Value(&homeY).Validate(validPin),
			huh.NewInput().Title("Exit button (BCM pin)").Value(&exit).Validate(validPin),
			huh.NewConfirm().
				Title("Do the inputs pull to ground when pressed?").
				Affirmative("Yes").
				Negative("No").
				Value(&g.ActiveLow),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
	g.HomeX, _ = strconv.Atoi(homeX)
	g.HomeY, _ = strconv.Atoi(homeY)
	g.Exit, _ = strconv.Atoi(exit)
	return &g
}

func validPin(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 27 {
		return errors.New("enter a BCM pin number between 0 and 27")
	}
	return nil
}

func waitForUser(prompt string) {
	fmt.Println(prompt)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("").
				Affirmative("Continue").
				Negative("").
				Value(new(bool)),
		),
	)
	if err := form.Run(); err != nil {
		fmt.Println()
		os.Exit(0)
	}
}
