// Package session sequences credits, attempts and outcome feedback for the
// claw machine.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gwillem/clawgantry/pkg/gantry"
	"github.com/gwillem/clawgantry/pkg/teleop"
)

const winToneGap = 300 * time.Millisecond

// State is the phase the machine is in.
type State int

const (
	WaitingForCredit State = iota
	AttemptLoop
	Exited
)

func (s State) String() string {
	switch s {
	case WaitingForCredit:
		return "waiting"
	case AttemptLoop:
		return "playing"
	default:
		return "exited"
	}
}

// Snapshot is a point-in-time view of the session.
type Snapshot struct {
	State    State
	Credits  int
	Attempts int
	Wins     int
	Last     *Attempt
}

// Machine runs the session loop on one rig.
type Machine struct {
	gantry   *gantry.Gantry
	ctrl     *teleop.Controller
	reader   gantry.ColorSensor
	exit     gantry.Switch
	display  gantry.Display
	led      gantry.Indicator
	speaker  gantry.Speaker
	clock    gantry.Clock
	cfg      gantry.Config
	msgs     Messages
	recorder Recorder
	logger   *slog.Logger

	mu   sync.Mutex
	snap Snapshot
}

// New creates a session machine. A nil recorder discards attempts.
func New(rig gantry.Rig, cfg gantry.Config, logger *slog.Logger, rec Recorder) (*Machine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if rec == nil {
		rec = noopRecorder{}
	}
	g, err := gantry.New(rig, cfg, logger.With("component", "gantry"))
	if err != nil {
		return nil, err
	}
	return &Machine{
		gantry:   g,
		ctrl:     teleop.NewController(g, rig.Stick, rig.Display, logger.With("component", "teleop")),
		reader:   rig.Reader,
		exit:     rig.Exit,
		display:  rig.Display,
		led:      rig.LED,
		speaker:  rig.Speaker,
		clock:    rig.Clock,
		cfg:      cfg,
		msgs:     MessagesFor(cfg.Mode),
		recorder: rec,
		logger:   logger,
	}, nil
}

// Controller returns the manual control loop, for observing its states.
func (m *Machine) Controller() *teleop.Controller {
	return m.ctrl
}

// Snapshot returns the current session state.
func (m *Machine) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.snap
	if s.Last != nil {
		last := *s.Last
		s.Last = &last
	}
	return s
}

func (m *Machine) update(fn func(*Snapshot)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(&m.snap)
}

// Run homes the gantry and serves credits until the exit button is pressed
// between attempts. Any device error stops all axes and ends the run.
func (m *Machine) Run(ctx context.Context) error {
	err := m.run(ctx)
	if err != nil {
		if stopErr := m.gantry.StopAll(); stopErr != nil {
			err = errors.Join(err, stopErr)
		}
	}
	m.update(func(s *Snapshot) { s.State = Exited })
	return err
}

func (m *Machine) run(ctx context.Context) error {
	if err := m.gantry.Home(ctx); err != nil {
		return err
	}
	m.welcome()
	m.logger.Info("session started", "mode", m.cfg.Mode)

	for {
		pressed, err := m.exit.Pressed()
		if err != nil {
			return fmt.Errorf("read exit button: %w", err)
		}
		if pressed {
			m.logger.Info("exit requested")
			return nil
		}

		card, err := m.reader.Color()
		if err != nil {
			return fmt.Errorf("read card: %w", err)
		}
		credits := CreditsFor(card, m.cfg)
		if credits == 0 {
			if err := m.clock.Sleep(ctx, m.cfg.CreditPoll()); err != nil {
				return err
			}
			continue
		}

		m.logger.Info("card inserted", "card", card, "credits", credits)
		m.update(func(s *Snapshot) {
			s.State = AttemptLoop
			s.Credits = credits
		})
		m.ready()
		for credits > 0 {
			credits--
			m.update(func(s *Snapshot) { s.Credits = credits })
			if err := m.attempt(ctx, card, credits); err != nil {
				return err
			}
		}
		m.update(func(s *Snapshot) { s.State = WaitingForCredit })
	}
}

func (m *Machine) attempt(ctx context.Context, card gantry.Color, left int) error {
	a := Attempt{
		ID:   uuid.New().String()[:8],
		Mode: m.cfg.Mode,
		Card: card,
	}
	log := m.logger.With("attempt", a.ID)

	if err := m.ctrl.WaitForInput(ctx); err != nil {
		return err
	}
	a.Started = m.clock.Now()
	m.display.Clear()

	reason, err := m.ctrl.Run(ctx)
	a.Exit = reason
	if err != nil {
		return fmt.Errorf("manual control: %w", err)
	}

	if a.Grab, err = m.gantry.Grab(ctx); err != nil {
		return fmt.Errorf("grab: %w", err)
	}
	if a.Distance, err = m.gantry.ConsistentDistance(ctx); err != nil {
		return fmt.Errorf("evaluate outcome: %w", err)
	}
	if a.Distance > m.cfg.WinThreshold {
		a.Outcome = Win
	}

	if err := m.gantry.Home(ctx); err != nil {
		return err
	}
	if err := m.clock.Sleep(ctx, m.cfg.Settle()); err != nil {
		return err
	}
	if err := m.gantry.ReleaseGrip(ctx); err != nil {
		return err
	}

	if err := m.feedback(ctx, a.Outcome); err != nil {
		return err
	}
	if err := m.clock.Sleep(ctx, m.cfg.Feedback()); err != nil {
		return err
	}
	m.erase()
	if left > 0 {
		m.led.SetLED(gantry.LEDGreen)
		m.display.Show(m.msgs.Credits(left)...)
	} else {
		m.welcome()
	}

	a.Ended = m.clock.Now()
	m.update(func(s *Snapshot) {
		s.Attempts++
		a.Number = s.Attempts
		if a.Outcome == Win {
			s.Wins++
		}
		last := a
		s.Last = &last
	})
	log.Info("attempt finished", "outcome", a.Outcome, "exit", a.Exit, "sensed", a.Grab.Sensed, "distance", a.Distance)
	if err := m.recorder.Record(ctx, a); err != nil {
		log.Warn("record attempt", "error", err)
	}
	return nil
}

func (m *Machine) welcome() {
	m.led.SetLED(gantry.LEDOrangeFlash)
	m.display.Show(m.msgs.Welcome...)
}

func (m *Machine) ready() {
	m.led.SetLED(gantry.LEDOrangePulse)
	m.display.Show(m.msgs.Ready...)
	m.speaker.Play(gantry.SoundShortBlip)
}

func (m *Machine) erase() {
	m.led.SetLED(gantry.LEDOrange)
	m.display.Clear()
}

func (m *Machine) feedback(ctx context.Context, o Outcome) error {
	if o == Lose {
		m.led.SetLED(gantry.LEDRedFlash)
		m.display.Show(m.msgs.Lose...)
		m.speaker.Play(gantry.SoundDownwardTones)
		return nil
	}
	m.led.SetLED(gantry.LEDGreenFlash)
	m.display.Show(m.msgs.Win...)
	for range 3 {
		m.speaker.Play(gantry.SoundFastUpwardTones)
		if err := m.clock.Sleep(ctx, winToneGap); err != nil {
			return err
		}
	}
	return nil
}
