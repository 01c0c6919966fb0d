// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// PersistenceNone disables saving state between runs.
	// Backend names are defined locally to avoid coupling config to
	// internal/persist; the CLI converts them at the boundary.
	PersistenceNone PersistenceBackend = "none"
	// PersistenceMemory keeps state for the lifetime of the process.
	PersistenceMemory PersistenceBackend = "memory"
	// PersistenceFile stores state in a TOML document.
	PersistenceFile PersistenceBackend = "file"
	// PersistenceSQLite stores state in a SQLite database.
	PersistenceSQLite PersistenceBackend = "sqlite"

	// ColorSchemeAuto detects the terminal color scheme automatically.
	ColorSchemeAuto ColorScheme = "auto"
	// ColorSchemeDark forces dark color scheme.
	ColorSchemeDark ColorScheme = "dark"
	// ColorSchemeLight forces light color scheme.
	ColorSchemeLight ColorScheme = "light"

	// DefaultUser is the session user when none is configured.
	DefaultUser UserName = "user"
	// DefaultHostname is shown in the prompt when none is configured.
	DefaultHostname HostName = "linux"
	// DefaultHistoryLimit is the number of commands kept in history.
	DefaultHistoryLimit = 50
	// MaxHistoryLimit bounds history.limit.
	MaxHistoryLimit = 10000
	// DefaultSSHHost is the address the SSH front end listens on.
	DefaultSSHHost = "localhost"
	// DefaultSSHPort is the port the SSH front end listens on.
	DefaultSSHPort SSHPort = 2222
)

var (
	// ErrInvalidUserName is the sentinel error wrapped by InvalidUserNameError.
	ErrInvalidUserName = errors.New("invalid user name")
	// ErrInvalidHostName is the sentinel error wrapped by InvalidHostNameError.
	ErrInvalidHostName = errors.New("invalid host name")
	// ErrInvalidPersistenceBackend is the sentinel error wrapped by InvalidPersistenceBackendError.
	ErrInvalidPersistenceBackend = errors.New("invalid persistence backend")
	// ErrInvalidColorScheme is returned when a ColorScheme value is not recognized.
	ErrInvalidColorScheme = errors.New("invalid color scheme")
	// ErrInvalidHistoryLimit is the sentinel error wrapped by InvalidHistoryLimitError.
	ErrInvalidHistoryLimit = errors.New("invalid history limit")
	// ErrInvalidSSHPort is the sentinel error wrapped by InvalidSSHPortError.
	ErrInvalidSSHPort = errors.New("invalid ssh port")
	// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
	ErrInvalidConfig = errors.New("invalid config")

	userNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_-]*$`)
	hostNamePattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9.-]*$`)
)

type (
	// UserName is the session user. It names the home directory, so it must
	// be a single path segment: lowercase letters, digits, '_' and '-'.
	UserName string

	// InvalidUserNameError is returned when a UserName value is malformed.
	// It wraps ErrInvalidUserName for errors.Is() compatibility.
	InvalidUserNameError struct {
		Value UserName
	}

	// HostName is the host shown in the prompt and by uname.
	HostName string

	// InvalidHostNameError is returned when a HostName value is malformed.
	InvalidHostNameError struct {
		Value HostName
	}

	// PersistenceBackend selects where session state is saved.
	PersistenceBackend string

	// InvalidPersistenceBackendError is returned when a PersistenceBackend
	// value is not recognized.
	InvalidPersistenceBackendError struct {
		Value PersistenceBackend
	}

	// ColorScheme specifies the terminal color scheme preference.
	ColorScheme string

	// InvalidColorSchemeError is returned when a ColorScheme value is not recognized.
	// It wraps ErrInvalidColorScheme for errors.Is() compatibility.
	InvalidColorSchemeError struct {
		Value ColorScheme
	}

	// InvalidHistoryLimitError is returned when history.limit is out of range.
	InvalidHistoryLimitError struct {
		Value int
	}

	// SSHPort is a TCP port for the SSH front end.
	SSHPort int

	// InvalidSSHPortError is returned when an SSHPort is out of range.
	InvalidSSHPortError struct {
		Value SSHPort
	}

	// InvalidConfigError is returned when a Config has invalid fields.
	// It wraps ErrInvalidConfig for errors.Is() compatibility and collects
	// field-level validation errors from all sub-components.
	InvalidConfigError struct {
		FieldErrors []error
	}

	// Config holds the application configuration.
	Config struct {
		// User is the session user; the home directory is /home/<user>.
		User UserName `json:"user" mapstructure:"user"`
		// Hostname is shown in the prompt.
		Hostname HostName `json:"hostname" mapstructure:"hostname"`
		// History configures command history.
		History HistoryConfig `json:"history" mapstructure:"history"`
		// Persistence configures where state is saved.
		Persistence PersistenceConfig `json:"persistence" mapstructure:"persistence"`
		// UI configures the user interface.
		UI UIConfig `json:"ui" mapstructure:"ui"`
		// SSH configures the SSH front end.
		SSH SSHConfig `json:"ssh" mapstructure:"ssh"`
	}

	// HistoryConfig configures command history.
	HistoryConfig struct {
		// Limit is the number of entries kept (default: 50).
		Limit int `json:"limit" mapstructure:"limit"`
		// IgnoreDups skips a command equal to the previous entry.
		IgnoreDups bool `json:"ignore_dups" mapstructure:"ignore_dups"`
	}

	// PersistenceConfig configures where state is saved.
	PersistenceConfig struct {
		// Backend is one of none, memory, file or sqlite (default: file).
		Backend PersistenceBackend `json:"backend" mapstructure:"backend"`
		// Path overrides the state file location. Empty uses the state directory.
		Path string `json:"path" mapstructure:"path"`
	}

	// UIConfig configures the user interface.
	UIConfig struct {
		// ColorScheme sets the color scheme
		ColorScheme ColorScheme `json:"color_scheme" mapstructure:"color_scheme"`
		// Verbose enables debug logging
		Verbose bool `json:"verbose" mapstructure:"verbose"`
		// Welcome prints the welcome banner when a session starts
		Welcome bool `json:"welcome" mapstructure:"welcome"`
	}

	// SSHConfig configures the SSH front end.
	SSHConfig struct {
		Host string  `json:"host" mapstructure:"host"`
		Port SSHPort `json:"port" mapstructure:"port"`
		// HostKeyPath is generated on first start. Empty uses the config directory.
		HostKeyPath string `json:"host_key_path" mapstructure:"host_key_path"`
	}
)

// String returns the string representation of the UserName.
func (u UserName) String() string { return string(u) }

// IsValid returns whether the UserName is a usable home directory name.
func (u UserName) IsValid() (bool, []error) {
	if !userNamePattern.MatchString(string(u)) {
		return false, []error{&InvalidUserNameError{Value: u}}
	}
	return true, nil
}

func (e *InvalidUserNameError) Error() string {
	return fmt.Sprintf("invalid user name %q (expected lowercase letters, digits, '_' or '-')", e.Value)
}

// Unwrap returns ErrInvalidUserName for errors.Is() compatibility.
func (e *InvalidUserNameError) Unwrap() error { return ErrInvalidUserName }

// String returns the string representation of the HostName.
func (h HostName) String() string { return string(h) }

// IsValid returns whether the HostName is valid.
func (h HostName) IsValid() (bool, []error) {
	if !hostNamePattern.MatchString(string(h)) {
		return false, []error{&InvalidHostNameError{Value: h}}
	}
	return true, nil
}

func (e *InvalidHostNameError) Error() string {
	return fmt.Sprintf("invalid host name %q", e.Value)
}

// Unwrap returns ErrInvalidHostName for errors.Is() compatibility.
func (e *InvalidHostNameError) Unwrap() error { return ErrInvalidHostName }

// String returns the string representation of the PersistenceBackend.
func (b PersistenceBackend) String() string { return string(b) }

// IsValid returns whether the PersistenceBackend is one of the defined backends.
func (b PersistenceBackend) IsValid() (bool, []error) {
	switch b {
	case PersistenceNone, PersistenceMemory, PersistenceFile, PersistenceSQLite:
		return true, nil
	default:
		return false, []error{&InvalidPersistenceBackendError{Value: b}}
	}
}

func (e *InvalidPersistenceBackendError) Error() string {
	return fmt.Sprintf("invalid persistence backend %q (valid: none, memory, file, sqlite)", e.Value)
}

// Unwrap returns ErrInvalidPersistenceBackend for errors.Is() compatibility.
func (e *InvalidPersistenceBackendError) Unwrap() error { return ErrInvalidPersistenceBackend }

// String returns the string representation of the ColorScheme.
func (cs ColorScheme) String() string { return string(cs) }

// IsValid returns whether the ColorScheme is one of the defined color schemes,
// and a list of validation errors if it is not.
func (cs ColorScheme) IsValid() (bool, []error) {
	switch cs {
	case ColorSchemeAuto, ColorSchemeDark, ColorSchemeLight:
		return true, nil
	default:
		return false, []error{&InvalidColorSchemeError{Value: cs}}
	}
}

func (e *InvalidColorSchemeError) Error() string {
	return fmt.Sprintf("invalid color scheme %q (valid: auto, dark, light)", e.Value)
}

// Unwrap returns ErrInvalidColorScheme for errors.Is() compatibility.
func (e *InvalidColorSchemeError) Unwrap() error { return ErrInvalidColorScheme }

func (e *InvalidHistoryLimitError) Error() string {
	return fmt.Sprintf("invalid history limit %d (expected 1..%d)", e.Value, MaxHistoryLimit)
}

// Unwrap returns ErrInvalidHistoryLimit for errors.Is() compatibility.
func (e *InvalidHistoryLimitError) Unwrap() error { return ErrInvalidHistoryLimit }

// IsValid returns whether the port is in the TCP range.
func (p SSHPort) IsValid() (bool, []error) {
	if p < 1 || p > 65535 {
		return false, []error{&InvalidSSHPortError{Value: p}}
	}
	return true, nil
}

func (e *InvalidSSHPortError) Error() string {
	return fmt.Sprintf("invalid ssh port %d", e.Value)
}

// Unwrap returns ErrInvalidSSHPort for errors.Is() compatibility.
func (e *InvalidSSHPortError) Unwrap() error { return ErrInvalidSSHPort }

// IsValid returns whether the Config has valid fields. Every field error is
// collected into a single InvalidConfigError.
func (c Config) IsValid() (bool, []error) {
	var errs []error
	if valid, fieldErrs := c.User.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.Hostname.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if c.History.Limit < 1 || c.History.Limit > MaxHistoryLimit {
		errs = append(errs, &InvalidHistoryLimitError{Value: c.History.Limit})
	}
	if valid, fieldErrs := c.Persistence.Backend.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.UI.ColorScheme.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if valid, fieldErrs := c.SSH.Port.IsValid(); !valid {
		errs = append(errs, fieldErrs...)
	}
	if len(errs) > 0 {
		return false, []error{&InvalidConfigError{FieldErrors: errs}}
	}
	return true, nil
}

// Error implements the error interface for InvalidConfigError.
func (e *InvalidConfigError) Error() string {
	msgs := make([]string, len(e.FieldErrors))
	for i, err := range e.FieldErrors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("invalid config: %s", strings.Join(msgs, "; "))
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		User:     DefaultUser,
		Hostname: DefaultHostname,
		History: HistoryConfig{
			Limit:      DefaultHistoryLimit,
			IgnoreDups: false,
		},
		Persistence: PersistenceConfig{
			Backend: PersistenceFile,
			Path:    "", // resolved by StatePath
		},
		UI: UIConfig{
			ColorScheme: ColorSchemeAuto,
			Verbose:     false,
			Welcome:     true,
		},
		SSH: SSHConfig{
			Host:        DefaultSSHHost,
			Port:        DefaultSSHPort,
			HostKeyPath: "",
		},
	}
}
