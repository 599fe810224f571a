package snscript

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"
)

var (
	errColor   = color.New(color.FgRed, color.Bold)
	posColor   = color.New(color.Bold)
	caretColor = color.New(color.FgGreen, color.Bold)
)

// UseColor decides whether diagnostics written to f are colored, given
// a mode of "on", "off" or "auto".
func UseColor(mode string, f *os.File) bool {
	switch mode {
	case "on":
		return true
	case "off":
		return false
	}
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// WriteError renders err as a compiler-style diagnostic:
//
//	file:line:col: error: message
//	    the offending source line
//	         ^
//
// Errors without a position are written on a single line.
func WriteError(w io.Writer, src []byte, filename string, err error, colored bool) {
	paint := func(c *color.Color, s string) string {
		if !colored {
			return s
		}
		c.EnableColor()
		return c.Sprint(s)
	}

	var e *Error
	if !errors.As(err, &e) || e.Line == 0 {
		fmt.Fprintf(w, "%s %v\n", paint(errColor, "error:"), err)
		return
	}
	msg := e.Kind.String()
	if e.Sym != "" {
		msg += fmt.Sprintf(" '%s'", e.Sym)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	where := fmt.Sprintf("%d:%d:", e.Line, e.Col)
	if filename != "" {
		where = filename + ":" + where
	}
	fmt.Fprintf(w, "%s %s %s\n", paint(posColor, where), paint(errColor, "error:"), msg)

	line, ok := sourceLine(src, e.Line)
	if !ok {
		return
	}
	fmt.Fprintf(w, "    %s\n", line)
	fmt.Fprintf(w, "    %s%s\n", caretPad(line, e.Col), paint(caretColor, "^"))
}

func sourceLine(src []byte, n int) (string, bool) {
	lines := bytes.Split(src, []byte("\n"))
	if n < 1 || n > len(lines) {
		return "", false
	}
	return strings.TrimRight(string(lines[n-1]), "\r"), true
}

// caretPad returns the blank prefix that puts a caret under rune column
// col of line. Tabs are kept so the caret lines up however tabs render.
func caretPad(line string, col int) string {
	var sb strings.Builder
	i := 1
	for _, r := range line {
		if i >= col {
			break
		}
		if r == '\t' {
			sb.WriteByte('\t')
		} else {
			sb.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
		}
		i++
	}
	return sb.String()
}
