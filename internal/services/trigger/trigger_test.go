package trigger

import (
	"context"
	"testing"

	logx "coursewatch/pkg/logx"
)

func TestStartRejectsInvalidSchedule(t *testing.T) {
	t.Parallel()
	s := New(Config{Schedule: "not a cron"}, func(ctx context.Context) {}, logx.Nop())
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid schedule")
	}
}

func TestStartRejectsInvalidTimezone(t *testing.T) {
	t.Parallel()
	s := New(Config{Schedule: "@hourly", Timezone: "Mars/Olympus"}, func(ctx context.Context) {}, logx.Nop())
	if err := s.Start(context.Background()); err == nil {
		t.Fatal("expected error for invalid timezone")
	}
}

func TestStartStop(t *testing.T) {
	t.Parallel()
	s := New(Config{Schedule: "0 */12 * * *"}, func(ctx context.Context) {}, logx.Nop())
	ctx := context.Background()
	if err := s.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	// Second Start is a no-op.
	if err := s.Start(ctx); err != nil {
		t.Fatalf("second Start: %v", err)
	}
	s.Stop(ctx)
	// Stop is idempotent.
	s.Stop(ctx)
}

func TestDefaultSchedule(t *testing.T) {
	t.Parallel()
	s := New(Config{}, func(ctx context.Context) {}, logx.Nop())
	if s.cfg.Schedule != "0 */12 * * *" {
		t.Fatalf("default schedule = %q", s.cfg.Schedule)
	}
}
