package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
)

func TestRunner_RegisterValidatesSpec(t *testing.T) {
	r := NewRunner(zerolog.Nop())

	if err := r.Register("0 0 * * *", "nightly", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("valid spec rejected: %v", err)
	}
	if err := r.Register("not a cron spec", "broken", func(context.Context) error { return nil }); err == nil {
		t.Fatal("expected error for malformed spec")
	}
}

func TestRunner_StartStop(t *testing.T) {
	r := NewRunner(zerolog.Nop())

	if err := r.Register("@every 1h", "noop", func(context.Context) error { return errors.New("never runs in this test") }); err != nil {
		t.Fatalf("register: %v", err)
	}

	r.Start()
	r.Stop() // Must return promptly with no job in flight.
}
