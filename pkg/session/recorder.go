package session

import (
	"context"
	"time"

	"github.com/gwillem/clawgantry/pkg/gantry"
	"github.com/gwillem/clawgantry/pkg/teleop"
)

// Outcome is the result of one attempt.
type Outcome int

const (
	Lose Outcome = iota
	Win
)

func (o Outcome) String() string {
	if o == Win {
		return "win"
	}
	return "lose"
}

// Attempt is the record of one credit spent.
type Attempt struct {
	ID       string
	Mode     gantry.Mode
	Card     gantry.Color
	Number   int // attempt number within the run
	Exit     teleop.ExitReason
	Grab     gantry.GrabReport
	Distance int // trusted distance at evaluation
	Outcome  Outcome
	Started  time.Time
	Ended    time.Time
}

// Recorder stores finished attempts.
type Recorder interface {
	Record(ctx context.Context, a Attempt) error
}

type noopRecorder struct{}

func (noopRecorder) Record(context.Context, Attempt) error { return nil }

var _ Recorder = noopRecorder{}
