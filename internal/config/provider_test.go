// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"testing"
)

func TestProviderLoad(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `ssh: port: 2323`)

	cfg, err := NewProvider().Load(context.Background(), LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.SSH.Port != 2323 {
		t.Errorf("SSH.Port = %d, want 2323", cfg.SSH.Port)
	}
	if cfg.SSH.Host != DefaultSSHHost {
		t.Errorf("SSH.Host = %q, want %q", cfg.SSH.Host, DefaultSSHHost)
	}
}

func TestResolvePath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	if got, err := ResolvePath(LoadOptions{ConfigDirPath: dir}); err != nil || got != "" {
		t.Errorf("ResolvePath() without file = %q, %v", got, err)
	}
	want := writeConfig(t, dir, `user: "x"`)
	if got, _ := ResolvePath(LoadOptions{ConfigDirPath: dir}); got != want {
		t.Errorf("ResolvePath() = %q, want %q", got, want)
	}
	if got, _ := ResolvePath(LoadOptions{ConfigFilePath: want, ConfigDirPath: "/elsewhere"}); got != want {
		t.Errorf("ResolvePath() with explicit file = %q, want %q", got, want)
	}
}
