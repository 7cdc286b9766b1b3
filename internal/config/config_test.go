package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("expected default read timeout 15s, got %s", cfg.Server.ReadTimeout)
	}
	if cfg.Solver.DefaultDraws != 5000 {
		t.Errorf("expected default draw count 5000, got %d", cfg.Solver.DefaultDraws)
	}
	if cfg.Solver.BaseSeed != 42 {
		t.Errorf("expected default base seed 42, got %d", cfg.Solver.BaseSeed)
	}
}

func TestLoad_SolverFromEnvironment(t *testing.T) {
	t.Setenv("ASSURANCE_DRAWS", "2500")
	t.Setenv("ASSURANCE_SEED", "12345")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Solver.DefaultDraws != 2500 {
		t.Errorf("expected draw count 2500 from environment, got %d", cfg.Solver.DefaultDraws)
	}
	if cfg.Solver.BaseSeed != 12345 {
		t.Errorf("expected base seed 12345 from environment, got %d", cfg.Solver.BaseSeed)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("PORT", "not-a-port")

	if _, err := Load(); err == nil {
		t.Error("expected validation error for a non-numeric port")
	}
}

func TestLoad_NegativeDraws(t *testing.T) {
	t.Setenv("ASSURANCE_DRAWS", "-5")

	if _, err := Load(); err == nil {
		t.Error("expected validation error for a negative draw count")
	}
}
