package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/allbin/sercom/internal/tui/colors"
	"github.com/charmbracelet/lipgloss"
)

// DataReceivedMsg carries one chunk of bytes read from the device
type DataReceivedMsg struct {
	Timestamp time.Time
	Data      []byte
}

type DisplayMode struct {
	ShowHex   bool
	ShowASCII bool
}

type DataFormatter struct {
	mode DisplayMode
}

func NewDataFormatter(showHex, showASCII bool) *DataFormatter {
	return &DataFormatter{
		mode: DisplayMode{
			ShowHex:   showHex,
			ShowASCII: showASCII,
		},
	}
}

func (df *DataFormatter) GetDisplayMode() DisplayMode {
	return df.mode
}

func (df *DataFormatter) FormatMessage(msg DataReceivedMsg) string {
	timestamp := msg.Timestamp.Format("15:04:05.000")

	indicator := lipgloss.NewStyle().
		Foreground(colors.Sky).
		Bold(true).
		Render("↙ RX")

	var parts []string

	if df.mode.ShowHex {
		parts = append(parts, fmt.Sprintf("HEX: % X", msg.Data))
	}

	if df.mode.ShowASCII {
		ascii := make([]byte, 0, len(msg.Data))
		for _, b := range msg.Data {
			if b >= 32 && b <= 126 {
				ascii = append(ascii, b)
			} else {
				// Keep control bytes out of the terminal
				ascii = append(ascii, '.')
			}
		}
		parts = append(parts, fmt.Sprintf("ASCII: %s", ascii))
	}

	if !df.mode.ShowHex && !df.mode.ShowASCII {
		parts = append(parts, fmt.Sprintf("BYTES: %d", len(msg.Data)))
	}

	timestampStyled := lipgloss.NewStyle().
		Foreground(colors.Subtext0).
		Render(fmt.Sprintf("[%s]", timestamp))

	return fmt.Sprintf("%s %s: %s", timestampStyled, indicator, strings.Join(parts, "  "))
}

func (df *DataFormatter) FormatMessages(messages []DataReceivedMsg) []string {
	formatted := make([]string, len(messages))
	for i, msg := range messages {
		formatted[i] = df.FormatMessage(msg)
	}
	return formatted
}

func (df *DataFormatter) ToggleHex() {
	df.mode.ShowHex = !df.mode.ShowHex
}

func (df *DataFormatter) ToggleASCII() {
	df.mode.ShowASCII = !df.mode.ShowASCII
}
