package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/gwillem/clawgantry/pkg/gantry"
	"github.com/gwillem/clawgantry/pkg/session"
	"github.com/gwillem/clawgantry/pkg/teleop"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "data", "journal.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	attempts := []session.Attempt{
		{
			ID: "aaaa1111", Mode: gantry.ModeClaw, Card: gantry.ColorBlue, Number: 1,
			Exit: teleop.ExitConfirm, Grab: gantry.GrabReport{Sensed: 30, Drop: 26, Descended: true},
			Distance: 29, Outcome: session.Lose, Started: start, Ended: start.Add(30 * time.Second),
		},
		{
			ID: "bbbb2222", Mode: gantry.ModeClaw, Card: gantry.ColorBlue, Number: 2,
			Exit: teleop.ExitTimeout, Grab: gantry.GrabReport{Sensed: 25, Drop: 21, Descended: true},
			Distance: 300, Outcome: session.Win, Started: start.Add(time.Minute), Ended: start.Add(2 * time.Minute),
		},
	}
	for _, a := range attempts {
		if err := j.Record(ctx, a); err != nil {
			t.Fatalf("Record(%s): %v", a.ID, err)
		}
	}

	entries, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	e := entries[0]
	if e.ID != "bbbb2222" || e.Outcome != "win" || e.Exit != "timeout" || e.Card != "blue" {
		t.Errorf("newest entry = %+v", e)
	}
	if !e.Started.Equal(start.Add(time.Minute)) || e.Drop != 21 || !e.Descended {
		t.Errorf("newest entry = %+v", e)
	}

	limited, err := j.Recent(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("limit 1 returned %d entries", len(limited))
	}
}

func TestRecord_DuplicateID(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()
	a := session.Attempt{ID: "dup00000", Mode: gantry.ModeClaw}

	if err := j.Record(ctx, a); err != nil {
		t.Fatal(err)
	}
	if err := j.Record(ctx, a); err == nil {
		t.Error("expected error for duplicate id")
	}
}

func TestStats(t *testing.T) {
	j := openTestJournal(t)
	ctx := context.Background()

	s, err := j.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if s.Attempts != 0 || s.Wins != 0 {
		t.Errorf("empty stats = %+v", s)
	}

	for i, o := range []session.Outcome{session.Win, session.Lose, session.Win} {
		a := session.Attempt{ID: string(rune('a' + i)), Mode: gantry.ModeClaw, Outcome: o}
		if err := j.Record(ctx, a); err != nil {
			t.Fatal(err)
		}
	}
	if s, err = j.Stats(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Attempts != 3 || s.Wins != 2 {
		t.Errorf("stats = %+v, want 3 attempts 2 wins", s)
	}
}
