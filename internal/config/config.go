// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/termemu/termemu/internal/issue"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "termemu"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "cue"
	// EnvPrefix prefixes environment overrides, e.g. TERMEMU_HISTORY_LIMIT.
	EnvPrefix = "TERMEMU"
	// HostKeyFileName is the default SSH host key file in the config directory.
	HostKeyFileName = "ssh_host_ed25519"

	// maxConfigFileSize rejects config files that are clearly not config.
	maxConfigFileSize = 1 << 20
)

//go:embed config_schema.cue
var configSchema string

// ConfigDir returns the termemu configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// StateDir returns the directory holding saved session state. Linux and others
// use $XDG_STATE_HOME (defaulting to ~/.local/state); Windows uses
// %LOCALAPPDATA%; macOS shares the configuration directory.
func StateDir() (string, error) {
	if stateDirOverride != "" {
		return stateDirOverride, nil
	}

	switch runtime.GOOS {
	case "windows":
		if dir := os.Getenv("LOCALAPPDATA"); dir != "" {
			return filepath.Join(dir, AppName), nil
		}
		return ConfigDir()
	case "darwin":
		return ConfigDir()
	default:
		stateDir := os.Getenv("XDG_STATE_HOME")
		if stateDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			stateDir = filepath.Join(home, ".local", "state")
		}
		return filepath.Join(stateDir, AppName), nil
	}
}

// StatePath returns the file the persistence backend uses: the configured
// path, or a backend-specific file in StateDir. It is empty for backends
// without a file.
func (c *Config) StatePath() (string, error) {
	if c.Persistence.Path != "" {
		return c.Persistence.Path, nil
	}
	var name string
	switch c.Persistence.Backend {
	case PersistenceFile:
		name = "state.toml"
	case PersistenceSQLite:
		name = "state.db"
	default:
		return "", nil
	}
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// HostKeyPath returns the SSH host key location.
func (c *Config) HostKeyPath() (string, error) {
	if c.SSH.HostKeyPath != "" {
		return c.SSH.HostKeyPath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, HostKeyFileName), nil
}

// ResolvePath returns the config file Load would read, or "" when defaults
// apply. An explicit ConfigFilePath that does not exist is an error.
func ResolvePath(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Use 'termemu config dump' to print a default configuration").
				WithGuide(issue.ConfigLoadFailedId).
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}
	cuePath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if fileExists(cuePath) {
		return cuePath, nil
	}
	return "", nil
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	resolvedPath, err := ResolvePath(opts)
	if err != nil {
		return nil, "", err
	}
	if resolvedPath != "" {
		if err := loadCUEIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file contains valid CUE syntax").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithGuide(issue.ConfigLoadFailedId).
				Wrap(err).
				BuildError()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	// Environment overrides bypass the CUE schema, so validate the result.
	if ok, errs := cfg.IsValid(); !ok {
		return nil, "", issue.NewErrorContext().
			WithOperation("validate configuration").
			WithResource(resolvedPath).
			WithSuggestion("Check " + EnvPrefix + "_* environment variables for typos").
			WithGuide(issue.ConfigLoadFailedId).
			Wrap(errs[0]).
			BuildError()
	}

	return &cfg, resolvedPath, nil
}

func setDefaults(v *viper.Viper, defaults *Config) {
	v.SetDefault("user", defaults.User)
	v.SetDefault("hostname", defaults.Hostname)
	v.SetDefault("history.limit", defaults.History.Limit)
	v.SetDefault("history.ignore_dups", defaults.History.IgnoreDups)
	v.SetDefault("persistence.backend", defaults.Persistence.Backend)
	v.SetDefault("persistence.path", defaults.Persistence.Path)
	v.SetDefault("ui.color_scheme", defaults.UI.ColorScheme)
	v.SetDefault("ui.verbose", defaults.UI.Verbose)
	v.SetDefault("ui.welcome", defaults.UI.Welcome)
	v.SetDefault("ssh.host", defaults.SSH.Host)
	v.SetDefault("ssh.port", defaults.SSH.Port)
	v.SetDefault("ssh.host_key_path", defaults.SSH.HostKeyPath)
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}

	return ConfigDir()
}

// loadCUEIntoViper parses a CUE file, validates it against the #Config schema,
// and merges its contents into Viper. Fields are optional, so validation is
// not concrete; defaults stay in Viper.
func loadCUEIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if len(data) > maxConfigFileSize {
		return fmt.Errorf("%s: file size %d bytes exceeds maximum %d bytes", path, len(data), maxConfigFileSize)
	}

	ctx := cuecontext.New()

	schemaValue := ctx.CompileString(configSchema)
	if schemaValue.Err() != nil {
		return fmt.Errorf("internal error: failed to compile config schema: %w", schemaValue.Err())
	}

	userValue := ctx.CompileBytes(data, cue.Filename(path))
	if userValue.Err() != nil {
		return formatCUEError(userValue.Err(), path)
	}

	schema := schemaValue.LookupPath(cue.ParsePath("#Config"))
	unified := schema.Unify(userValue)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return formatCUEError(err, path)
	}

	var configMap map[string]any
	if err := unified.Decode(&configMap); err != nil {
		return formatCUEError(err, path)
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}

	return nil
}

// formatCUEError prefixes each CUE error with its field path:
//
//	config.cue: history.limit: invalid value 0 (out of bound >0)
func formatCUEError(err error, filePath string) error {
	cueErrs := cueerrors.Errors(err)
	if len(cueErrs) == 0 {
		return fmt.Errorf("%s: %w", filePath, err)
	}

	var lines []string
	for _, e := range cueErrs {
		pathStr := strings.Join(cueerrors.Path(e), ".")
		msg := e.Error()
		if pathStr != "" && strings.HasPrefix(msg, pathStr) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, pathStr), ":"))
		}
		// Paths are reported from the schema definition root.
		pathStr = strings.TrimPrefix(strings.TrimPrefix(pathStr, "#Config"), ".")
		if pathStr != "" {
			lines = append(lines, pathStr+": "+msg)
		} else {
			lines = append(lines, msg)
		}
	}

	if len(lines) == 1 {
		return fmt.Errorf("%s: %s", filePath, lines[0])
	}
	return fmt.Errorf("%s: validation failed:\n  %s", filePath, strings.Join(lines, "\n  "))
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// CreateDefaultConfig writes the default config file unless one exists. It
// returns the file path and whether it was created.
func CreateDefaultConfig(opts LoadOptions) (string, bool, error) {
	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", false, err
	}
	cfgPath := filepath.Join(cfgDir, ConfigFileName+"."+ConfigFileExt)
	if opts.ConfigFilePath != "" {
		cfgPath = opts.ConfigFilePath
	}

	if _, err := os.Stat(cfgPath); err == nil {
		return cfgPath, false, nil
	}

	if err := os.MkdirAll(filepath.Dir(cfgPath), 0o755); err != nil {
		return "", false, fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(cfgPath, []byte(GenerateCUE(DefaultConfig())), 0o644); err != nil {
		return "", false, fmt.Errorf("failed to write config file: %w", err)
	}

	return cfgPath, true, nil
}

// GenerateCUE generates a CUE representation of the configuration
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// termemu configuration file\n")
	sb.WriteString("// Every field is optional; TERMEMU_<SECTION>_<KEY> environment variables override it.\n\n")

	fmt.Fprintf(&sb, "user:     %q\n", cfg.User)
	fmt.Fprintf(&sb, "hostname: %q\n", cfg.Hostname)

	sb.WriteString("\nhistory: {\n")
	fmt.Fprintf(&sb, "\tlimit:       %d\n", cfg.History.Limit)
	fmt.Fprintf(&sb, "\tignore_dups: %v\n", cfg.History.IgnoreDups)
	sb.WriteString("}\n")

	sb.WriteString("\npersistence: {\n")
	fmt.Fprintf(&sb, "\tbackend: %q\n", cfg.Persistence.Backend)
	if cfg.Persistence.Path != "" {
		fmt.Fprintf(&sb, "\tpath:    %q\n", cfg.Persistence.Path)
	}
	sb.WriteString("}\n")

	sb.WriteString("\nui: {\n")
	fmt.Fprintf(&sb, "\tcolor_scheme: %q\n", cfg.UI.ColorScheme)
	fmt.Fprintf(&sb, "\tverbose:      %v\n", cfg.UI.Verbose)
	fmt.Fprintf(&sb, "\twelcome:      %v\n", cfg.UI.Welcome)
	sb.WriteString("}\n")

	sb.WriteString("\nssh: {\n")
	fmt.Fprintf(&sb, "\thost: %q\n", cfg.SSH.Host)
	fmt.Fprintf(&sb, "\tport: %d\n", cfg.SSH.Port)
	if cfg.SSH.HostKeyPath != "" {
		fmt.Fprintf(&sb, "\thost_key_path: %q\n", cfg.SSH.HostKeyPath)
	}
	sb.WriteString("}\n")

	return sb.String()
}
