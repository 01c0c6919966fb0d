// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/termemu/termemu/internal/issue"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ConfigFileName+"."+ConfigFileExt)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.User != "user" {
		t.Errorf("User = %q, want user", cfg.User)
	}
	if cfg.Hostname != "linux" {
		t.Errorf("Hostname = %q, want linux", cfg.Hostname)
	}
	if cfg.History.Limit != 50 || cfg.History.IgnoreDups {
		t.Errorf("History = %+v, want limit 50 without dedup", cfg.History)
	}
	if cfg.Persistence.Backend != PersistenceFile {
		t.Errorf("Persistence.Backend = %q, want file", cfg.Persistence.Backend)
	}
	if !cfg.UI.Welcome {
		t.Error("UI.Welcome should default to true")
	}
	if ok, errs := cfg.IsValid(); !ok {
		t.Errorf("DefaultConfig().IsValid() = false, %v", errs)
	}
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	t.Parallel()

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if diff := cmp.Diff(DefaultConfig(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMergesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	want := writeConfig(t, dir, `
user: "alice"
history: limit: 10
persistence: {
	backend: "sqlite"
	path:    "/tmp/alice.db"
}
ui: welcome: false
`)

	cfg, path, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}
	if path != want {
		t.Errorf("resolved path = %q, want %q", path, want)
	}

	expected := DefaultConfig()
	expected.User = "alice"
	expected.History.Limit = 10
	expected.Persistence = PersistenceConfig{Backend: PersistenceSQLite, Path: "/tmp/alice.db"}
	expected.UI.Welcome = false
	if diff := cmp.Diff(expected, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRejectsSchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		contains string
	}{
		{"bad backend", `persistence: backend: "redis"`, "persistence.backend"},
		{"zero limit", `history: limit: 0`, "history.limit"},
		{"user with slash", `user: "a/b"`, "user"},
		{"unknown field", `colour: "red"`, "colour"},
		{"syntax", `user: "unterminated`, "config.cue"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			writeConfig(t, dir, tt.content)
			_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
			if err == nil {
				t.Fatal("loadWithOptions() should fail")
			}
			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error should be *issue.ActionableError, got %T", err)
			}
			if ae.Guide != issue.ConfigLoadFailedId {
				t.Errorf("Guide = %d, want ConfigLoadFailedId", ae.Guide)
			}
			if !strings.Contains(err.Error(), tt.contains) {
				t.Errorf("error %q should mention %q", err, tt.contains)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, _, err := loadWithOptions(context.Background(), LoadOptions{
		ConfigFilePath: filepath.Join(t.TempDir(), "nope.cue"),
	})
	if err == nil || !strings.Contains(err.Error(), "config file not found") {
		t.Errorf("loadWithOptions() error = %v, want config file not found", err)
	}
}

//nolint:paralleltest // t.Setenv
func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `hostname: "box"`)
	t.Setenv("TERMEMU_HOSTNAME", "override")
	t.Setenv("TERMEMU_HISTORY_IGNORE_DUPS", "true")
	t.Setenv("TERMEMU_PERSISTENCE_BACKEND", "memory")

	cfg, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("loadWithOptions() error: %v", err)
	}
	if cfg.Hostname != "override" {
		t.Errorf("Hostname = %q, want override", cfg.Hostname)
	}
	if !cfg.History.IgnoreDups {
		t.Error("History.IgnoreDups = false, want true")
	}
	if cfg.Persistence.Backend != PersistenceMemory {
		t.Errorf("Persistence.Backend = %q, want memory", cfg.Persistence.Backend)
	}
}

//nolint:paralleltest // t.Setenv
func TestLoadInvalidEnvOverride(t *testing.T) {
	t.Setenv("TERMEMU_PERSISTENCE_BACKEND", "redis")

	_, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, ErrInvalidPersistenceBackend) {
		t.Errorf("loadWithOptions() error = %v, want ErrInvalidPersistenceBackend", err)
	}
}

func TestLoadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := loadWithOptions(ctx, LoadOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("loadWithOptions() error = %v, want context.Canceled", err)
	}
}

func TestGenerateCUERoundTrip(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.User = "bob"
	cfg.Persistence.Path = "/var/lib/termemu/state.toml"
	cfg.SSH.HostKeyPath = "/etc/termemu/key"

	dir := t.TempDir()
	writeConfig(t, dir, GenerateCUE(cfg))
	got, _, err := loadWithOptions(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("generated config does not load: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested")
	path, created, err := CreateDefaultConfig(LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error: %v", err)
	}
	if !created || path != filepath.Join(dir, "config.cue") {
		t.Errorf("CreateDefaultConfig() = %q, %v", path, created)
	}
	if _, created, _ = CreateDefaultConfig(LoadOptions{ConfigDirPath: dir}); created {
		t.Error("second CreateDefaultConfig() should not overwrite")
	}
}

func TestStatePath(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Persistence.Path = "/explicit"
	if got, _ := cfg.StatePath(); got != "/explicit" {
		t.Errorf("StatePath() = %q, want /explicit", got)
	}

	cfg.Persistence.Path = ""
	cfg.Persistence.Backend = PersistenceMemory
	if got, _ := cfg.StatePath(); got != "" {
		t.Errorf("StatePath() for memory = %q, want empty", got)
	}

	cfg.Persistence.Backend = PersistenceSQLite
	got, err := cfg.StatePath()
	if err != nil {
		t.Fatalf("StatePath() error: %v", err)
	}
	if filepath.Base(got) != "state.db" {
		t.Errorf("StatePath() = %q, want a state.db file", got)
	}
}
