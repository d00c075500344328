package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dvloznov/wealthsense/internal/config"
	"github.com/dvloznov/wealthsense/internal/session"
)

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		cfg := &config.Config{DataBackend: config.BackendBigQuery}
		b, err := OpenBackend(ctx, cfg)
		if err != nil || b != nil {
			t.Fatalf("OpenBackend() = %v, %v; want nil backend", b, err)
		}
		if err := CloseBackend(b); err != nil {
			t.Errorf("CloseBackend(nil): %v", err)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := &config.Config{DataBackend: config.BackendSQLite, SQLiteDBPath: filepath.Join(t.TempDir(), "app.db")}
		b, err := OpenBackend(ctx, cfg)
		if err != nil {
			t.Fatalf("OpenBackend: %v", err)
		}
		defer CloseBackend(b)

		c := session.NewController(b, nil)
		if err := c.SwitchMode(ctx, session.ModeProduction); err != nil {
			t.Fatal(err)
		}
		if _, err := c.Register(ctx, "sql@example.com", "secret1"); err != nil {
			t.Fatalf("Register: %v", err)
		}
		if c.Snapshot().Mode != session.ModeProduction {
			t.Error("expected production mode with a configured backend")
		}
	})
}

func TestDisabledCollaborators(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{}

	adv, err := NewAdvisor(ctx, cfg)
	if err != nil || adv.Enabled() {
		t.Errorf("NewAdvisor without key: enabled=%v err=%v", adv.Enabled(), err)
	}

	exp, closeFn, err := NewExporter(ctx, cfg)
	if err != nil || exp.Enabled() {
		t.Errorf("NewExporter without bucket: enabled=%v err=%v", exp.Enabled(), err)
	}
	if err := closeFn(); err != nil {
		t.Error(err)
	}
}

func TestDefaultMode(t *testing.T) {
	tests := []struct {
		mode string
		want session.Mode
	}{
		{mode: config.ModeDemo, want: session.ModeDemo},
		{mode: config.ModeProduction, want: session.ModeProduction},
		{mode: "", want: session.ModeDemo},
	}
	for _, tt := range tests {
		if got := DefaultMode(&config.Config{AppMode: tt.mode}); got != tt.want {
			t.Errorf("DefaultMode(%q) = %s, want %s", tt.mode, got, tt.want)
		}
	}
}
