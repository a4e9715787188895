// Package printer writes colored, human oriented CLI output. A Printer travels
// on the context so commands share one output stream.
package printer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hay-kot/criterio"
	"golang.org/x/term"
)

// ANSI color codes (Tokyo Night palette)
const (
	ColorReset     = "\033[0m"
	ColorRed       = "\033[38;2;215;95;107m"  // #d75f6b
	ColorGreen     = "\033[38;2;158;206;106m" // #9ece6a
	ColorYellow    = "\033[38;2;224;175;104m" // #e0af68
	ColorGray      = "\033[38;2;86;95;137m"   // #565f89
	ColorBold      = "\033[1m"
	ColorUnderline = "\033[4m"
)

// Symbols
const (
	Check = "✔"
	Cross = "✘"
	Cart  = "🛒"
	Dot   = "•"
)

type ctxKey struct{}

// Printer handles formatted output. Color is only emitted when the writer is
// a terminal and NO_COLOR is unset.
type Printer struct {
	writer io.Writer
	color  bool
}

// New creates a Printer writing to w, or stderr when w is nil.
func New(w io.Writer) *Printer {
	if w == nil {
		w = os.Stderr
	}
	return &Printer{writer: w, color: colorEnabled(w)}
}

func colorEnabled(w io.Writer) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
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

// Writer returns the underlying writer, for tabular output.
func (p *Printer) Writer() io.Writer {
	return p.writer
}

func (p *Printer) line(s string) {
	_, _ = io.WriteString(p.writer, s+"\n")
}

// FatalError prints err inside a red box. It does not exit.
func (p *Printer) FatalError(err error) {
	if err == nil {
		return
	}

	var fieldErrs criterio.FieldErrors
	if !errors.As(err, &fieldErrs) {
		p.box("Error", []string{p.colorize(ColorGray, err.Error())})
		return
	}

	// "register: email: is required" keeps "register" as the box context.
	var body []string
	if idx := strings.Index(err.Error(), fieldErrs.Error()); idx > 0 {
		body = append(body, p.colorize(ColorGray, strings.TrimSuffix(err.Error()[:idx], ": ")), "")
	}
	for _, fe := range fieldErrs {
		row := p.colorize(ColorRed, Cross) + " "
		if fe.Field != "" {
			row += p.colorize(ColorGray, fe.Field+": ")
		}
		body = append(body, row+fe.Err.Error())
	}
	p.box("Validation Error", body)
}

func (p *Printer) box(title string, body []string) {
	p.line(p.colorize(ColorRed, "╭ "+title))
	for _, row := range body {
		if row == "" {
			p.line(p.colorize(ColorRed, "│"))
			continue
		}
		p.line(p.colorize(ColorRed, "│") + " " + row)
	}
	p.line(p.colorize(ColorRed, "╵"))
}

// Errorf prints a red error line.
func (p *Printer) Errorf(format string, args ...any) {
	p.line(p.colorize(ColorRed, Cross+" "+fmt.Sprintf(format, args...)))
}

// Successf prints a green success line.
func (p *Printer) Successf(format string, args ...any) {
	p.line(p.colorize(ColorGreen, Check+" "+fmt.Sprintf(format, args...)))
}

// Success prints message with optional gray details underneath.
func (p *Printer) Success(message string, details string) {
	p.Successf("%s", message)
	if details != "" {
		p.line("  " + p.colorize(ColorGray, details))
	}
}

// Infof prints a gray info line.
func (p *Printer) Infof(format string, args ...any) {
	p.line(p.colorize(ColorGray, Dot+" "+fmt.Sprintf(format, args...)))
}

// Warnf prints a yellow warning line.
func (p *Printer) Warnf(format string, args ...any) {
	p.line(p.colorize(ColorYellow, Dot+" "+fmt.Sprintf(format, args...)))
}

// Printf prints a plain line.
func (p *Printer) Printf(format string, args ...any) {
	p.line(fmt.Sprintf(format, args...))
}

func (p *Printer) colorize(color, text string) string {
	if !p.color {
		return text
	}
	return color + text + ColorReset
}

// Bold makes text bold.
func (p *Printer) Bold(text string) string {
	return p.colorize(ColorBold, text)
}

// Section prints a bold, underlined header.
func (p *Printer) Section(title string) {
	p.line(p.colorize(ColorBold+ColorUnderline, title))
}

// CheckItem, WarnItem and FailItem print an indented status row.
func (p *Printer) CheckItem(label, detail string) { p.item(ColorGreen, Check, label, detail) }

func (p *Printer) WarnItem(label, detail string) { p.item(ColorYellow, Dot, label, detail) }

func (p *Printer) FailItem(label, detail string) { p.item(ColorRed, Cross, label, detail) }

func (p *Printer) item(color, symbol, label, detail string) {
	row := "  " + p.colorize(color, symbol) + " " + label
	if detail != "" {
		row += ": " + detail
	}
	p.line(row)
}
