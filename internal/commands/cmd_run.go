package commands

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/lightbox/internal/core/page"
	"github.com/hay-kot/lightbox/internal/tui"
)

type RunCmd struct {
	flags *Flags
}

// NewRunCmd creates a new run command
func NewRunCmd(flags *Flags) *RunCmd {
	return &RunCmd{
		flags: flags,
	}
}

// Register adds the run command to the application.
func (cmd *RunCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "run",
		Usage:     "Open a page in the interactive viewer",
		UsageText: "lightbox run <page.yaml>",
		Description: `Opens the page full screen. Elements with class "modal" become dialogs that
open from their "modal-open-<id>" triggers and close with Escape, the close
button, or a click on the overlay.`,
		Action: cmd.Run,
	})
	return app
}

// Run executes the viewer. Exported for use as default command.
func (cmd *RunCmd) Run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one page file, got %d", c.Args().Len())
	}

	doc, err := page.Load(c.Args().First())
	if err != nil {
		return err
	}

	m, err := tui.New(cmd.flags.Config, doc, tui.Options{Logger: log.Logger})
	if err != nil {
		return err
	}

	log.Info().
		Str("page", c.Args().First()).
		Int("modals", m.Modals().Len()).
		Msg("opening page")

	p := tea.NewProgram(m, tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}

	return nil
}
