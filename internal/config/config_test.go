package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.GroqModel != "llama-3.3-70b-versatile" {
		t.Errorf("GroqModel = %q, want llama-3.3-70b-versatile", cfg.GroqModel)
	}
	if cfg.PromptHistoryTurns != 10 {
		t.Errorf("PromptHistoryTurns = %d, want 10", cfg.PromptHistoryTurns)
	}
	if cfg.ExpansionHistoryTurns != 3 {
		t.Errorf("ExpansionHistoryTurns = %d, want 3", cfg.ExpansionHistoryTurns)
	}
	if cfg.CourseTopK != 3 || cfg.VenueTopK != 10 || cfg.EventTopK != 5 {
		t.Errorf("top-k defaults = (%d, %d, %d), want (3, 10, 5)",
			cfg.CourseTopK, cfg.VenueTopK, cfg.EventTopK)
	}
	if cfg.MaxCompletionTokens != 2000 {
		t.Errorf("MaxCompletionTokens = %d, want 2000", cfg.MaxCompletionTokens)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 30s", cfg.ShutdownTimeout)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvPromptHistoryTurns, "6")
	t.Setenv(EnvSocialTemperature, "0.3")
	t.Setenv(EnvRequestTimeout, "45s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.PromptHistoryTurns != 6 {
		t.Errorf("PromptHistoryTurns = %d, want 6", cfg.PromptHistoryTurns)
	}
	if cfg.SocialTemperature != 0.3 {
		t.Errorf("SocialTemperature = %f, want 0.3", cfg.SocialTemperature)
	}
	if cfg.RequestTimeout != 45*time.Second {
		t.Errorf("RequestTimeout = %v, want 45s", cfg.RequestTimeout)
	}
}

func TestLoadRejectsInvalidWindows(t *testing.T) {
	t.Setenv(EnvPromptHistoryTurns, "0")

	if _, err := Load(); err == nil {
		t.Error("Load() should reject zero prompt history turns")
	}
}

func TestSQLitePath(t *testing.T) {
	cfg := &Config{DataDir: "/var/lib/sage"}
	if got := cfg.SQLitePath(); got != "/var/lib/sage/sage.db" {
		t.Errorf("SQLitePath() = %q", got)
	}
	if got := cfg.ChromemPath(); got != "/var/lib/sage/chromem" {
		t.Errorf("ChromemPath() = %q", got)
	}
}
