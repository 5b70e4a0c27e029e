package calendarview

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const ansiReset = "\x1b[0m"

// amber is the accent shared by both themes: #F9A825.
var amber = [3]int{0xF9, 0xA8, 0x25}

type Theme struct {
	DarkMode bool
	// Color turns ANSI styling on.
	Color bool
	// Width truncates agenda lines when positive.
	Width int
}

// ThemeFor builds a theme for output written to f.
func ThemeFor(f *os.File, darkMode bool) Theme {
	theme := Theme{DarkMode: darkMode}
	fd := f.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		theme.Color = true
		if width, _, err := term.GetSize(int(fd)); err == nil {
			theme.Width = width
		}
	}
	return theme
}

// Line paints an agenda line: amber on black in dark mode, black on amber otherwise.
func (t Theme) Line(s string) string {
	if !t.Color {
		return s
	}
	fg, bg := amber, [3]int{0, 0, 0}
	if !t.DarkMode {
		fg, bg = bg, fg
	}
	return fmt.Sprintf("\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm%s%s", fg[0], fg[1], fg[2], bg[0], bg[1], bg[2], s, ansiReset)
}

func (t Theme) Header(s string) string {
	if !t.Color {
		return s
	}
	return "\x1b[1m" + t.Line(s)
}
