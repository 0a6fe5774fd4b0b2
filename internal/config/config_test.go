package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() with defaults should succeed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %q", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %q", cfg.LogLevel)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("expected default shutdown timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.ChatTimeout != 10*time.Second {
		t.Errorf("expected default chat timeout 10s, got %v", cfg.ChatTimeout)
	}
	if !strings.HasSuffix(cfg.SQLitePath(), "hr.db") {
		t.Errorf("unexpected sqlite path: %q", cfg.SQLitePath())
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvPort, "9999")
	t.Setenv(EnvChatTimeout, "3s")
	t.Setenv(EnvMaxQuestionChars, "500")
	t.Setenv(EnvHRMailAddress, "people-ops@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Port != "9999" {
		t.Errorf("expected port override, got %q", cfg.Port)
	}
	if cfg.ChatTimeout != 3*time.Second {
		t.Errorf("expected chat timeout override, got %v", cfg.ChatTimeout)
	}
	if cfg.MaxQuestionChars != 500 {
		t.Errorf("expected question length override, got %d", cfg.MaxQuestionChars)
	}
	if cfg.HRMailAddress != "people-ops@example.com" {
		t.Errorf("expected mail address override, got %q", cfg.HRMailAddress)
	}
}

func TestInvalidEnvFallsBackToDefault(t *testing.T) {
	t.Setenv(EnvChatTimeout, "not-a-duration")
	t.Setenv(EnvMaxQuestionChars, "NaN")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.ChatTimeout != 10*time.Second {
		t.Errorf("expected fallback chat timeout, got %v", cfg.ChatTimeout)
	}
	if cfg.MaxQuestionChars != 2000 {
		t.Errorf("expected fallback question length, got %d", cfg.MaxQuestionChars)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "empty data dir",
			mutate:  func(c *Config) { c.DataDir = "" },
			wantErr: EnvDataDir,
		},
		{
			name:    "non-positive chat timeout",
			mutate:  func(c *Config) { c.ChatTimeout = 0 },
			wantErr: EnvChatTimeout,
		},
		{
			name:    "betterstack token without endpoint",
			mutate:  func(c *Config) { c.BetterStackToken = "tok" },
			wantErr: EnvBetterStackEndpoint,
		},
		{
			name:    "sample rate out of range",
			mutate:  func(c *Config) { c.SentrySampleRate = 2.0 },
			wantErr: EnvSentrySampleRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load() failed: %v", err)
			}
			tt.mutate(cfg)
			err = cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error mentioning %q, got %q", tt.wantErr, err.Error())
			}
		})
	}
}
