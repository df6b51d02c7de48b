// Package output renders command results and errors for ethpkg-donate,
// either as human-readable text or as JSON for scripts.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// Format is an output format.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatAuto Format = "auto"
)

// Formatter writes values in a fixed format.
type Formatter struct {
	format Format
	w      io.Writer
}

// NewFormatter returns a formatter writing to w. FormatAuto is resolved
// against w immediately.
func NewFormatter(format Format, w io.Writer) *Formatter {
	return &Formatter{format: DetectFormat(w, format), w: w}
}

// Format returns the resolved format.
func (f *Formatter) Format() Format {
	return f.format
}

// Writer returns the underlying writer.
func (f *Formatter) Writer() io.Writer {
	return f.w
}

// IsJSON reports whether output is JSON.
func (f *Formatter) IsJSON() bool {
	return f.format == FormatJSON
}

// Print writes v as indented JSON, or as a line of text.
func (f *Formatter) Print(v any) error {
	if f.IsJSON() {
		return writeJSON(f.w, v)
	}
	switch val := v.(type) {
	case string:
		_, err := fmt.Fprintln(f.w, val)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(f.w, val.String())
		return err
	default:
		_, err := fmt.Fprintf(f.w, "%v\n", val)
		return err
	}
}

// Printf writes text output. It is a no-op in JSON mode so that
// human-oriented chatter never corrupts a JSON document.
func (f *Formatter) Printf(format string, args ...any) error {
	if f.IsJSON() {
		return nil
	}
	_, err := fmt.Fprintf(f.w, format, args...)
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // G115: Fd() returns uintptr, safe conversion for term.IsTerminal
}

// DetectFormat resolves FormatAuto: text on a terminal, JSON otherwise.
func DetectFormat(w io.Writer, explicit Format) Format {
	if explicit == FormatText || explicit == FormatJSON {
		return explicit
	}
	if IsTerminal(w) {
		return FormatText
	}
	return FormatJSON
}

// ParseFormat parses a format name. Unknown names yield FormatAuto.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "text":
		return FormatText
	default:
		return FormatAuto
	}
}

// ValidateFormat is ParseFormat for user input: it rejects unknown names.
func ValidateFormat(s string) (Format, error) {
	f := ParseFormat(s)
	if f == FormatAuto && !strings.EqualFold(strings.TrimSpace(s), string(FormatAuto)) && strings.TrimSpace(s) != "" {
		return FormatAuto, donateerr.WithDetails(donateerr.ErrInvalidInput, map[string]string{"output": s})
	}
	return f, nil
}
