package components

import (
	"fmt"

	"github.com/allbin/sercom"
	"github.com/allbin/sercom/internal/tui/colors"
	"github.com/allbin/sercom/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// StatusBar shows the connection state and line configuration
type StatusBar struct {
	title     string
	device    string
	width     int
	connected bool
	lastErr   error
	config    sercom.Config
	hasConfig bool
}

func NewStatusBar(title, device string) *StatusBar {
	return &StatusBar{title: title, device: device}
}

func (s *StatusBar) SetWidth(width int) {
	s.width = width
}

func (s *StatusBar) SetConnected() {
	s.connected = true
	s.lastErr = nil
}

func (s *StatusBar) SetDisconnected(err error) {
	s.connected = false
	s.lastErr = err
}

func (s *StatusBar) SetConfig(config sercom.Config) {
	s.config = config
	s.hasConfig = true
}

func (s *StatusBar) View() string {
	var status string
	switch {
	case s.connected:
		status = styles.StatusConnectedStyle.Render("● connected")
	case s.lastErr != nil:
		status = styles.StatusDisconnectedStyle.Render("● " + s.lastErr.Error())
	default:
		status = styles.StatusConnectingStyle.Render("● connecting")
	}

	line := fmt.Sprintf("%s  %s  %s", styles.TitleStyle.Render(s.title), s.device, status)
	if s.hasConfig {
		framing := fmt.Sprintf("%d %d%s%d",
			s.config.BaudRate,
			s.config.DataBits,
			parityLetter(s.config.Parity),
			s.config.StopBits)
		line += "  " + lipgloss.NewStyle().Foreground(colors.Subtext0).Render(framing)
	}

	return lipgloss.NewStyle().Width(s.width).Render(line)
}

func parityLetter(p sercom.Parity) string {
	switch p {
	case sercom.ParityEven:
		return "E"
	case sercom.ParityOdd:
		return "O"
	default:
		return "N"
	}
}
