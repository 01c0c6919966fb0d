// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/termemu/termemu/internal/config"
	"github.com/termemu/termemu/internal/issue"
)

// newConfigCommand creates the `termemu config` command tree.
func newConfigCommand(app *App) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage termemu configuration",
		Long: `Manage termemu configuration.

Configuration is stored in:
  - Linux: $XDG_CONFIG_HOME/termemu/config.cue (default ~/.config)
  - macOS: ~/Library/Application Support/termemu/config.cue
  - Windows: %APPDATA%\termemu\config.cue

Every key can be overridden with a TERMEMU_ environment variable, for
example TERMEMU_HISTORY_LIMIT=100 or TERMEMU_PERSISTENCE_BACKEND=none.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration and state file paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.showConfigPath()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.initConfig()
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "dump",
		Short: "Output the effective configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.cfgErr != nil {
				return app.cfgErr
			}
			fmt.Fprint(app.stdout, config.GenerateCUE(app.cfg))
			return nil
		},
	})

	return cfgCmd
}

func (a *App) showConfig() error {
	if a.cfgErr != nil {
		if rendered, err := issue.Get(issue.ConfigLoadFailedId).Render(a.glamourStyle()); err == nil {
			fmt.Fprint(a.stderr, rendered)
		}
		return a.cfgErr
	}

	cfg := a.cfg
	keyStyle := CmdStyle
	valueStyle := SuccessStyle
	out := a.stdout

	fmt.Fprintln(out, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(out)

	path, err := config.ResolvePath(config.LoadOptions{ConfigFilePath: a.cfgFile})
	if err == nil && path != "" {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("user"), valueStyle.Render(cfg.User.String()))
	fmt.Fprintf(out, "%s: %s\n", keyStyle.Render("hostname"), valueStyle.Render(cfg.Hostname.String()))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("history"))
	fmt.Fprintf(out, "  limit: %s\n", valueStyle.Render(fmt.Sprint(cfg.History.Limit)))
	fmt.Fprintf(out, "  ignore_dups: %s\n", valueStyle.Render(fmt.Sprint(cfg.History.IgnoreDups)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("persistence"))
	fmt.Fprintf(out, "  backend: %s\n", valueStyle.Render(cfg.Persistence.Backend.String()))
	statePath, err := cfg.StatePath()
	switch {
	case err != nil:
		fmt.Fprintf(out, "  path: %s\n", ErrorStyle.Render(err.Error()))
	case statePath == "":
		fmt.Fprintf(out, "  path: %s\n", SubtitleStyle.Render("(not stored on disk)"))
	default:
		fmt.Fprintf(out, "  path: %s\n", valueStyle.Render(statePath))
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("ui"))
	fmt.Fprintf(out, "  color_scheme: %s\n", valueStyle.Render(cfg.UI.ColorScheme.String()))
	fmt.Fprintf(out, "  verbose: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Verbose)))
	fmt.Fprintf(out, "  welcome: %s\n", valueStyle.Render(fmt.Sprint(cfg.UI.Welcome)))

	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s:\n", keyStyle.Render("ssh"))
	fmt.Fprintf(out, "  host: %s\n", valueStyle.Render(cfg.SSH.Host))
	fmt.Fprintf(out, "  port: %s\n", valueStyle.Render(fmt.Sprint(int(cfg.SSH.Port))))
	if hostKey, err := cfg.HostKeyPath(); err == nil {
		fmt.Fprintf(out, "  host_key_path: %s\n", valueStyle.Render(hostKey))
	}

	return nil
}

func (a *App) showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(a.stdout, "Config file: %s\n", defaultConfigFile(cfgDir))

	if stateDir, err := config.StateDir(); err == nil {
		fmt.Fprintf(a.stdout, "State directory: %s\n", stateDir)
	}
	return nil
}

func (a *App) initConfig() error {
	path, created, err := config.CreateDefaultConfig(config.LoadOptions{ConfigFilePath: a.cfgFile})
	if err != nil {
		return fmt.Errorf("failed to create config: %w", err)
	}
	if !created {
		fmt.Fprintf(a.stdout, "%s Configuration already exists at %s\n", WarningStyle.Render("!"), path)
		return nil
	}
	fmt.Fprintf(a.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), path)
	return nil
}

func defaultConfigFile(cfgDir string) string {
	return filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
}
