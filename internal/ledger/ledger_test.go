package ledger

import (
	"context"
	"path/filepath"
	"testing"

	logx "coursewatch/pkg/logx"
)

func testDrivers(t *testing.T) map[string]Config {
	t.Helper()
	return map[string]Config{
		"sqlite": {Driver: "sqlite", Path: filepath.Join(t.TempDir(), "ledger.db")},
		"file":   {Driver: "file", Path: filepath.Join(t.TempDir(), "ledger")},
	}
}

func TestMarkDoneAndLoad(t *testing.T) {
	t.Parallel()
	for name, cfg := range testDrivers(t) {
		cfg := cfg
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			st, err := Open(cfg, logx.Nop())
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer st.Close()

			ctx := context.Background()
			for _, id := range []string{"L1", "L2", "L1"} { // duplicate mark is a no-op
				if err := st.MarkDone(ctx, id); err != nil {
					t.Fatalf("MarkDone(%s): %v", id, err)
				}
			}

			done, err := st.Load(ctx)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(done) != 2 {
				t.Fatalf("got %d ids, want 2: %v", len(done), done)
			}
			for _, id := range []string{"L1", "L2"} {
				if _, ok := done[id]; !ok {
					t.Fatalf("missing %s", id)
				}
			}
		})
	}
}

func TestSurvivesReopen(t *testing.T) {
	t.Parallel()
	for name, cfg := range testDrivers(t) {
		cfg := cfg
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()

			st, err := Open(cfg, logx.Nop())
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			if err := st.MarkDone(ctx, "N9"); err != nil {
				t.Fatalf("MarkDone: %v", err)
			}
			if err := st.Close(); err != nil {
				t.Fatalf("close: %v", err)
			}

			st2, err := Open(cfg, logx.Nop())
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer st2.Close()
			done, err := st2.Load(ctx)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if _, ok := done["N9"]; !ok {
				t.Fatal("N9 lost across reopen")
			}
		})
	}
}

func TestEmptyIDIsIgnored(t *testing.T) {
	t.Parallel()
	for name, cfg := range testDrivers(t) {
		cfg := cfg
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			st, err := Open(cfg, logx.Nop())
			if err != nil {
				t.Fatalf("open: %v", err)
			}
			defer st.Close()

			ctx := context.Background()
			if err := st.MarkDone(ctx, "  "); err != nil {
				t.Fatalf("MarkDone blank: %v", err)
			}
			done, err := st.Load(ctx)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if len(done) != 0 {
				t.Fatalf("blank ids must not be stored: %v", done)
			}
		})
	}
}

func TestUnknownDriver(t *testing.T) {
	t.Parallel()
	if _, err := Open(Config{Driver: "redis", Path: "x"}, logx.Nop()); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
