// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/termemu/termemu/internal/issue"
)

// newGuideCommand creates the `termemu guide` command.
func newGuideCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:       "guide [topic]",
		Short:     "Show troubleshooting guides",
		Long:      "Show a troubleshooting guide. Without a topic, the available topics are listed.",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: issue.Topics(),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				fmt.Fprintln(app.stdout, TitleStyle.Render("Guides"))
				for _, topic := range issue.Topics() {
					fmt.Fprintf(app.stdout, "  %s\n", CmdStyle.Render(topic))
				}
				return nil
			}
			return app.showGuide(args[0])
		},
	}
}

func (a *App) showGuide(topic string) error {
	i, ok := issue.Lookup(topic)
	if !ok {
		return fmt.Errorf("unknown guide %q (available: %s)", topic, strings.Join(issue.Topics(), ", "))
	}
	rendered, err := i.Render(a.glamourStyle())
	if err != nil {
		return fmt.Errorf("failed to render guide: %w", err)
	}
	fmt.Fprint(a.stdout, rendered)
	return nil
}
