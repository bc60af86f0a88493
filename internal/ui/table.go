package ui

import (
	"bytes"

	"github.com/charmbracelet/lipgloss"
	"github.com/mgutz/ansi"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
	"github.com/tomlazar/table"
)

var colorEnabled = true

// SetColor switches coloration of log lines, panels and tables.
func SetColor(enabled bool) {
	colorEnabled = enabled
	if enabled {
		pterm.EnableColor()
		lipgloss.SetColorProfile(termenv.ANSI256)
		return
	}
	pterm.DisableColor()
	lipgloss.SetColorProfile(termenv.Ascii)
}

// Table renders rows under headers with alternating row colors.
func Table(headers []string, rows [][]string) (string, error) {
	tab := table.Table{
		Headers: headers,
		Rows:    rows,
	}
	var buf bytes.Buffer
	err := tab.WriteTable(&buf, &table.Config{
		ShowIndex:       false,
		Color:           colorEnabled,
		AlternateColors: true,
		TitleColorCode:  ansi.ColorCode("white+buf"),
		AltColorCodes: []string{
			ansi.ColorCode("white"),
			ansi.ColorCode("white:236"),
		},
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
