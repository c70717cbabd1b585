package main

import (
	"testing"

	"github.com/parterm-dev/parterm/config"
)

func TestRun_InvalidSizeReturnsConfigExitCode(t *testing.T) {
	code := run([]string{"--size", "notasize"})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestRun_InvalidPresetReturnsConfigExitCode(t *testing.T) {
	code := run([]string{"--preset", "missing-equals-sign"})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestRun_InvalidSizeValidationReturnsConfigExitCode(t *testing.T) {
	code := run([]string{"--size", "1x1"})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}

func TestBuildAuth_NoUserUsesAPIKeyOnly(t *testing.T) {
	cfg := config.Default()
	cfg.APIKey = "secret-key"

	auth, err := buildAuth(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth.User != "" || auth.APIKey != "secret-key" {
		t.Fatalf("unexpected auth: %+v", auth)
	}
}

func TestBuildAuth_UserWithPassword(t *testing.T) {
	cfg := config.Default()
	cfg.HTTPUser = "admin"
	cfg.HTTPPassword = "hunter2"

	auth, err := buildAuth(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if auth.User != "admin" || auth.Password != "hunter2" {
		t.Fatalf("unexpected auth: %+v", auth)
	}
}

func TestBuildAuth_MissingPasswordFilePropagatesError(t *testing.T) {
	cfg := config.Default()
	cfg.HTTPUser = "admin"
	cfg.HTTPPasswordFile = "/nonexistent/path/to/password"

	if _, err := buildAuth(cfg); err == nil {
		t.Fatal("expected error reading missing password file")
	}
}
