// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
)

func TestUserNameIsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value UserName
		want  bool
	}{
		{"user", true},
		{"_svc", true},
		{"dev-01", true},
		{"", false},
		{"Alice", false},
		{"a/b", false},
		{"..", false},
		{"1abc", false},
	}
	for _, tt := range tests {
		ok, errs := tt.value.IsValid()
		if ok != tt.want {
			t.Errorf("UserName(%q).IsValid() = %v, want %v", tt.value, ok, tt.want)
		}
		if !ok && !errors.Is(errs[0], ErrInvalidUserName) {
			t.Errorf("UserName(%q) error should wrap ErrInvalidUserName", tt.value)
		}
	}
}

func TestEnumsIsValid(t *testing.T) {
	t.Parallel()

	for _, b := range []PersistenceBackend{PersistenceNone, PersistenceMemory, PersistenceFile, PersistenceSQLite} {
		if ok, _ := b.IsValid(); !ok {
			t.Errorf("PersistenceBackend(%q).IsValid() = false", b)
		}
	}
	if ok, errs := PersistenceBackend("s3").IsValid(); ok || !errors.Is(errs[0], ErrInvalidPersistenceBackend) {
		t.Errorf("PersistenceBackend(s3).IsValid() = %v, %v", ok, errs)
	}
	if ok, errs := ColorScheme("neon").IsValid(); ok || !errors.Is(errs[0], ErrInvalidColorScheme) {
		t.Errorf("ColorScheme(neon).IsValid() = %v, %v", ok, errs)
	}
	if ok, _ := HostName("my-box.local").IsValid(); !ok {
		t.Error("HostName(my-box.local).IsValid() = false")
	}
	if ok, _ := HostName("has space").IsValid(); ok {
		t.Error("HostName(has space).IsValid() = true")
	}
	if ok, _ := SSHPort(0).IsValid(); ok {
		t.Error("SSHPort(0).IsValid() = true")
	}
}

func TestConfigIsValidCollectsErrors(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.User = ""
	cfg.History.Limit = 0
	cfg.SSH.Port = 70000

	ok, errs := cfg.IsValid()
	if ok {
		t.Fatal("IsValid() = true, want false")
	}
	var cfgErr *InvalidConfigError
	if !errors.As(errs[0], &cfgErr) {
		t.Fatalf("error should be *InvalidConfigError, got %T", errs[0])
	}
	if len(cfgErr.FieldErrors) != 3 {
		t.Errorf("len(FieldErrors) = %d, want 3", len(cfgErr.FieldErrors))
	}
	for _, sentinel := range []error{ErrInvalidConfig, ErrInvalidUserName, ErrInvalidHistoryLimit, ErrInvalidSSHPort} {
		if !errors.Is(errs[0], sentinel) && !containsErr(cfgErr.FieldErrors, sentinel) {
			t.Errorf("errors should include %v", sentinel)
		}
	}
}

func containsErr(errs []error, target error) bool {
	for _, err := range errs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
