package ui

import (
	"fmt"
	"io"
	"os"
)

var (
	reset = "\033[0m"
	bold  = "\033[1m"
	dim   = "\033[2m"

	fgGray   = "\033[90m"
	fgGreen  = "\033[32m"
	fgYellow = "\033[33m"
	fgBlue   = "\033[34m"
	fgRed    = "\033[31m"

	symCheck = "✔"
	symCross = "✖"
)

// Dim is the faint style used for secondary text.
var Dim = dim

var (
	forceColor   bool
	disableColor bool
)

// SetColorForcing overrides TTY detection. disable wins over force.
func SetColorForcing(force, disable bool) {
	forceColor = force
	disableColor = disable
}

func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// Painter colors strings for one output stream.
type Painter struct{ tty bool }

// For returns a Painter that colors only when w is a terminal.
func For(w io.Writer) Painter { return Painter{tty: isTTY(w)} }

// C wraps s in color when coloring is on.
func (p Painter) C(color, s string) string {
	if disableColor || color == "" {
		return s
	}
	if forceColor || p.tty {
		return color + s + reset
	}
	return s
}

func OK(w io.Writer, msg string) {
	fmt.Fprintln(w, For(w).C(fgGreen, symCheck+" "+msg))
}

func Fail(w io.Writer, msg string) {
	fmt.Fprintln(w, For(w).C(fgRed, symCross+" "+msg))
}
