package tui

import (
	"os"
	"strings"

	"fabledesk/internal/core"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Palette helpers. Everything routes through lipgloss.AdaptiveColor so
// the studio stays readable on both light and dark terminals; faint
// styling is only applied on dark backgrounds because faint text on a
// light terminal often disappears entirely.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorAccent     lipgloss.TerminalColor = ac("27", "62") // blue
	colorAccentFg   lipgloss.TerminalColor = ac("255", "235")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorBorder     lipgloss.TerminalColor = ac("250", "243")

	colorToastSuccess lipgloss.TerminalColor = ac("28", "77")   // green
	colorToastInfo    lipgloss.TerminalColor = ac("27", "75")   // blue
	colorToastError   lipgloss.TerminalColor = ac("196", "160") // red

	colorQueueBusy lipgloss.TerminalColor = ac("130", "214") // amber
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleSelected() lipgloss.Style {
	return lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg)
}

func styleTab(active bool) lipgloss.Style {
	if active {
		return lipgloss.NewStyle().Background(colorAccent).Foreground(colorAccentFg).Padding(0, 1)
	}
	return styleMuted().Padding(0, 1)
}

func toastColor(level core.ToastLevel) lipgloss.TerminalColor {
	switch level {
	case core.ToastError:
		return colorToastError
	case core.ToastSuccess:
		return colorToastSuccess
	default:
		return colorToastInfo
	}
}

// applyColorProfilePreference sets Lip Gloss's color profile before the
// program starts.
//
// termenv.EnvColorProfile respects CLICOLOR/CLICOLOR_FORCE, which suits
// piped CLI output but can silently strip colors from an interactive
// session. Here we honor NO_COLOR and otherwise trust the terminal,
// upgrading when TERM/COLORTERM advertise more than the probe reports.
func applyColorProfilePreference() {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return
	}

	profile := termenv.ColorProfile()

	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if colorterm == "truecolor" || colorterm == "24bit" {
		profile = termenv.TrueColor
	} else if strings.Contains(term, "256color") && profile > termenv.ANSI256 {
		profile = termenv.ANSI256
	}

	lipgloss.SetColorProfile(profile)
}
