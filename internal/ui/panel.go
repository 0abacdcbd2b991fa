package ui

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func stripANSI(s string) string { return ansiRegexp.ReplaceAllString(s, "") }

// visible is the terminal width of s without color codes.
func visible(s string) int { return runewidth.StringWidth(stripANSI(s)) }

// ProgressBar renders a Unicode progress bar with percentage.
func ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := int(float64(done) / float64(total) * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	pct := int(float64(done) / float64(total) * 100)
	return fmt.Sprintf("%s %3d%%", bar, pct)
}

// Panel draws a framed box around lines using the current theme.
func Panel(w io.Writer, lines []string) {
	t := Current()
	maxw := 0
	for _, ln := range lines {
		if n := visible(ln); n > maxw {
			maxw = n
		}
	}
	pad := func(s string) string {
		if n := visible(s); n < maxw {
			s += strings.Repeat(" ", maxw-n)
		}
		return s
	}
	fmt.Fprintln(w, t.CornerTL+strings.Repeat(t.H, maxw+2)+t.CornerTR)
	for _, ln := range lines {
		fmt.Fprintln(w, t.V+" "+pad(ln)+" "+t.V)
	}
	fmt.Fprintln(w, t.CornerBL+strings.Repeat(t.H, maxw+2)+t.CornerBR)
}
