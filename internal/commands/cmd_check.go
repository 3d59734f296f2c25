package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hay-kot/criterio"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/lightbox/internal/core/page"
	"github.com/hay-kot/lightbox/internal/modal"
	"github.com/hay-kot/lightbox/internal/printer"
)

type CheckCmd struct {
	flags  *Flags
	format string
}

// NewCheckCmd creates a new check command.
func NewCheckCmd(flags *Flags) *CheckCmd {
	return &CheckCmd{flags: flags}
}

// Register adds the check command to the application.
func (cmd *CheckCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "check",
		Usage:     "Validate page files",
		UsageText: "lightbox check [options] <glob>...",
		Description: `Loads every page matching the given patterns (doublestar syntax, e.g.
'pages/**/*.yaml') and checks its modals. Empty or duplicate modal ids are
errors; modals without a trigger and triggers without a modal are warnings.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "format",
				Usage:       "output format (text, json)",
				Value:       "text",
				Destination: &cmd.format,
			},
		},
		Action: cmd.run,
	})

	return app
}

// fileReport is the check outcome for one page file.
type fileReport struct {
	Path     string          `json:"path"`
	Modals   int             `json:"modals"`
	Errors   []fieldError    `json:"errors,omitempty"`
	Warnings []modal.Warning `json:"warnings,omitempty"`
}

type fieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (r fileReport) valid() bool {
	return len(r.Errors) == 0
}

func (cmd *CheckCmd) run(ctx context.Context, c *cli.Command) error {
	if c.Args().Len() == 0 {
		return fmt.Errorf("expected at least one file or glob pattern")
	}

	reports, err := checkPages(c.Args().Slice())
	if err != nil {
		return err
	}

	var failed bool
	if cmd.format == "json" {
		failed, err = cmd.outputJSON(c, reports)
		if err != nil {
			return err
		}
	} else {
		failed = cmd.outputText(printer.Ctx(ctx), reports)
	}

	if failed {
		return cli.Exit("", 1)
	}
	return nil
}

// checkPages expands patterns and validates each matched page once, in
// sorted order.
func checkPages(patterns []string) ([]fileReport, error) {
	var paths []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePathPattern(pattern) {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, doublestar.ErrBadPattern)
		}
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files match %q", pattern)
		}
		paths = append(paths, matches...)
	}
	slices.Sort(paths)
	paths = slices.Compact(paths)

	reports := make([]fileReport, 0, len(paths))
	for _, path := range paths {
		reports = append(reports, checkPage(path))
	}
	return reports, nil
}

func checkPage(path string) fileReport {
	report := fileReport{Path: path}

	doc, err := page.Load(path)
	if err != nil {
		report.Errors = append(report.Errors, fieldError{Message: err.Error()})
		return report
	}

	report.Modals = len(doc.ByClass(modal.SourceClass))
	warnings, err := modal.Validate(doc)
	report.Warnings = warnings
	for _, fe := range extractFieldErrors(err) {
		report.Errors = append(report.Errors, fieldError{Field: fe.Field, Message: fe.Err.Error()})
	}
	return report
}

// extractFieldErrors extracts field errors from a validation error.
func extractFieldErrors(err error) criterio.FieldErrors {
	if err == nil {
		return nil
	}
	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs
	}
	return criterio.FieldErrors{{Err: err}}
}

func (cmd *CheckCmd) outputJSON(c *cli.Command, reports []fileReport) (bool, error) {
	out := struct {
		Valid bool         `json:"valid"`
		Files []fileReport `json:"files"`
	}{
		Valid: true,
		Files: reports,
	}
	for _, r := range reports {
		out.Valid = out.Valid && r.valid()
	}

	enc := json.NewEncoder(c.Root().Writer)
	enc.SetIndent("", "  ")
	return !out.Valid, enc.Encode(out)
}

func (cmd *CheckCmd) outputText(p *printer.Printer, reports []fileReport) bool {
	var errCount, warnCount int

	for _, r := range reports {
		errCount += len(r.Errors)
		warnCount += len(r.Warnings)

		if r.valid() && len(r.Warnings) == 0 {
			p.CheckItem(r.Path, fmt.Sprintf("%d modal(s)", r.Modals))
			continue
		}

		p.Section(r.Path)
		for _, fe := range r.Errors {
			if fe.Field != "" {
				p.FailItem(fe.Field, fe.Message)
			} else {
				p.FailItem(fe.Message, "")
			}
		}
		for _, warn := range r.Warnings {
			p.WarnItem(warn.Item, warn.Message)
		}
	}

	p.Printf("")
	if errCount == 0 {
		if warnCount > 0 {
			p.Successf("%d page(s) valid (%d warning(s))", len(reports), warnCount)
		} else {
			p.Successf("%d page(s) valid", len(reports))
		}
		return false
	}

	p.Errorf("%d error(s), %d warning(s)", errCount, warnCount)
	return true
}
