package commands

import (
	"context"
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/hay-kot/lightbox/internal/core/page"
	"github.com/hay-kot/lightbox/internal/tui"
)

// Fallback frame size when stdout is not a terminal.
const (
	defaultWidth  = 80
	defaultHeight = 24
)

type SnapshotCmd struct {
	flags   *Flags
	open    []string
	width   int
	height  int
	noColor bool
}

// NewSnapshotCmd creates a new snapshot command.
func NewSnapshotCmd(flags *Flags) *SnapshotCmd {
	return &SnapshotCmd{flags: flags}
}

// Register adds the snapshot command to the application.
func (cmd *SnapshotCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "snapshot",
		Usage:     "Render a page to stdout",
		UsageText: "lightbox snapshot [options] <page.yaml>",
		Description: `Renders a single frame of the page with all effects finished. Use --open
to show modals as if their triggers had been clicked.`,
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "open",
				Aliases:     []string{"o"},
				Usage:       "id of a modal to open (repeatable)",
				Destination: &cmd.open,
			},
			&cli.IntFlag{
				Name:        "width",
				Usage:       "frame width (default: terminal width)",
				Destination: &cmd.width,
			},
			&cli.IntFlag{
				Name:        "height",
				Usage:       "frame height (default: terminal height)",
				Destination: &cmd.height,
			},
			&cli.BoolFlag{
				Name:        "no-color",
				Usage:       "strip ANSI styling from the output",
				Destination: &cmd.noColor,
			},
		},
		Action: cmd.run,
	})
	return app
}

func (cmd *SnapshotCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() != 1 {
		return fmt.Errorf("expected exactly one page file, got %d", c.Args().Len())
	}

	doc, err := page.Load(c.Args().First())
	if err != nil {
		return err
	}

	frame, err := cmd.render(doc)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(c.Root().Writer, frame)
	return err
}

// render lays the page out at the requested size, opens the requested
// modals and returns the settled frame.
func (cmd *SnapshotCmd) render(doc *page.Document) (string, error) {
	m, err := tui.New(cmd.flags.Config, doc, tui.Options{Logger: log.Logger})
	if err != nil {
		return "", err
	}

	w, h := cmd.size()
	next, _ := m.Update(tea.WindowSizeMsg{Width: w, Height: h})
	m = next.(tui.Model)

	for _, id := range cmd.open {
		c, ok := m.Modals().Get(id)
		if !ok {
			return "", fmt.Errorf("unknown modal %q", id)
		}
		c.Open()
	}
	m.Settle()

	frame := m.Frame()
	if cmd.noColor {
		frame = ansi.Strip(frame)
	}
	return frame, nil
}

func (cmd *SnapshotCmd) size() (int, int) {
	w, h := cmd.width, cmd.height
	if w > 0 && h > 0 {
		return w, h
	}

	tw, th, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		tw, th = defaultWidth, defaultHeight
	}
	if w <= 0 {
		w = tw
	}
	if h <= 0 {
		h = th
	}
	return w, h
}
