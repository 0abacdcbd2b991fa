package ui

import "strings"

// Theme bundles palette + symbols + box borders.
// All renderers pull from `current`.
type Theme struct {
	Title, Muted, Accent, Success, Error, Pending string
	BoxUnchecked, BoxChecked                      string
	CornerTL, CornerTR, CornerBL, CornerBR        string
	H, V                                          string
	SymDone, SymPending                           string
}

var current = classic()

func classic() Theme {
	return Theme{
		Title: bold, Muted: fgGray, Accent: fgBlue,
		Success: fgGreen, Error: fgRed, Pending: fgYellow,
		BoxUnchecked: "☐", BoxChecked: "☑",
		CornerTL: "┌", CornerTR: "┐", CornerBL: "└", CornerBR: "┘",
		H: "─", V: "│",
		SymDone: "✔", SymPending: "•",
	}
}

// SetTheme selects classic, neon or mono. Unknown names fall back to classic.
func SetTheme(name string) {
	switch strings.ToLower(name) {
	case "neon":
		current = Theme{
			Title: "\033[95m", // bright magenta
			Muted: fgGray, Accent: "\033[96m",
			Success: fgGreen, Error: fgRed, Pending: "\033[93m",
			BoxUnchecked: "◻", BoxChecked: "◼",
			CornerTL: "╭", CornerTR: "╮", CornerBL: "╰", CornerBR: "╯",
			H: "─", V: "│",
			SymDone: "✔", SymPending: "•",
		}
	case "mono":
		disableColor = true
		current = Theme{
			BoxUnchecked: "[ ]", BoxChecked: "[x]",
			CornerTL: "+", CornerTR: "+", CornerBL: "+", CornerBR: "+",
			H: "-", V: "|",
			SymDone: "x", SymPending: "-",
		}
	default:
		current = classic()
	}
}

func Current() Theme { return current }
