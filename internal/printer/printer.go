// Package printer writes styled CLI output.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	lipgloss "charm.land/lipgloss/v2"
	"github.com/hay-kot/criterio"
)

// Tokyo Night palette
var (
	red    = lipgloss.Color("#f7768e")
	green  = lipgloss.Color("#9ece6a")
	yellow = lipgloss.Color("#e0af68")
	gray   = lipgloss.Color("#565f89")
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(red)
	successStyle = lipgloss.NewStyle().Foreground(green)
	warnStyle    = lipgloss.NewStyle().Foreground(yellow)
	mutedStyle   = lipgloss.NewStyle().Foreground(gray)
	sectionStyle = lipgloss.NewStyle().Bold(true).Underline(true)
)

// Symbols
const (
	Check = "✔"
	Cross = "✘"
	Dot   = "•"
)

type ctxKey struct{}

// Printer handles formatted output with colors and styles. Colors are
// downsampled to what the writer supports, so plain files get plain text.
type Printer struct {
	writer io.Writer
}

// New creates a new Printer that writes to the given writer
func New(w io.Writer) *Printer {
	return &Printer{
		writer: w,
	}
}

// NewContext returns a context with the printer attached
func NewContext(ctx context.Context, p *Printer) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// Ctx retrieves the printer from context, or creates a default one
func Ctx(ctx context.Context) *Printer {
	if p, ok := ctx.Value(ctxKey{}).(*Printer); ok {
		return p
	}
	return New(os.Stderr)
}

func (p *Printer) println(s string) {
	_, _ = lipgloss.Fprintln(p.writer, s)
}

// FatalError prints a formatted error box and does NOT exit
// Caller should handle exit code
func (p *Printer) FatalError(err error) {
	if err == nil {
		return
	}

	var fieldErrs criterio.FieldErrors
	if errors.As(err, &fieldErrs) {
		p.printValidationErrors(err, fieldErrs)
		return
	}

	p.println(strings.Join([]string{
		errorStyle.Render("╭ Error"),
		errorStyle.Render("│") + " " + mutedStyle.Render(err.Error()),
		errorStyle.Render("╵"),
	}, "\n"))
}

// printValidationErrors formats criterio.FieldErrors, keeping any context the
// error was wrapped with (e.g. "load config: invalid config").
func (p *Printer) printValidationErrors(wrappedErr error, fieldErrs criterio.FieldErrors) {
	errStr := wrappedErr.Error()
	fieldErrStr := fieldErrs.Error()

	errContext := ""
	if idx := strings.Index(errStr, fieldErrStr); idx > 0 {
		errContext = strings.TrimSuffix(errStr[:idx], ": ")
	}

	bar := errorStyle.Render("│")
	lines := []string{errorStyle.Render("╭ Validation Error")}

	if errContext != "" {
		lines = append(lines, bar+" "+mutedStyle.Render(errContext), bar)
	}

	for _, fe := range fieldErrs {
		line := bar + " " + errorStyle.Render(Cross) + " "
		if fe.Field != "" {
			line += mutedStyle.Render(fe.Field + ": ")
		}
		lines = append(lines, line+fe.Err.Error())
	}

	lines = append(lines, errorStyle.Render("╵"))
	p.println(strings.Join(lines, "\n"))
}

// Errorf prints an error message in red
func (p *Printer) Errorf(format string, args ...any) {
	p.println(errorStyle.Render(Cross + " " + fmt.Sprintf(format, args...)))
}

// Successf prints a success message in green
func (p *Printer) Successf(format string, args ...any) {
	p.println(successStyle.Render(Check + " " + fmt.Sprintf(format, args...)))
}

// Printf prints a plain message without colors
func (p *Printer) Printf(format string, args ...any) {
	p.println(fmt.Sprintf(format, args...))
}

// Section prints a section header (bold + underlined)
func (p *Printer) Section(title string) {
	p.println(sectionStyle.Render(title))
}

// CheckItem prints a success item with green checkmark
func (p *Printer) CheckItem(label, detail string) {
	p.printItem(successStyle, Check, label, detail)
}

// WarnItem prints a warning item with yellow dot
func (p *Printer) WarnItem(label, detail string) {
	p.printItem(warnStyle, Dot, label, detail)
}

// FailItem prints a failure item with red cross
func (p *Printer) FailItem(label, detail string) {
	p.printItem(errorStyle, Cross, label, detail)
}

func (p *Printer) printItem(style lipgloss.Style, symbol, label, detail string) {
	line := "  " + style.Render(symbol) + " " + label
	if detail != "" {
		line += ": " + detail
	}
	p.println(line)
}
