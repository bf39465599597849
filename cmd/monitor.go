/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/allbin/sercom"
	"github.com/allbin/sercom/internal/tui/components"
	"github.com/allbin/sercom/internal/tui/keys"
	"github.com/allbin/sercom/internal/tui/styles"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// monitorCmd represents the monitor command
var monitorCmd = &cobra.Command{
	Use:   "monitor <port>",
	Short: "Watch incoming data on a serial device with a live display",
	Long: `Watch incoming data on a serial device in a live terminal view.

Received chunks are shown with timestamps in hex and ASCII; both
renderings can be toggled at runtime. This is a read-only view: no
bytes are sent to the device. Use "sercom connect" for bidirectional
relaying.

Example usage:
  sercom monitor /dev/ttyUSB0
  sercom monitor /dev/ttyUSB0 --baud 9600 --parity even`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts, err := serialOptions(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := runMonitorTUI(args[0], opts...); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(monitorCmd)

	monitorCmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	monitorCmd.Flags().Int("data-bits", 8, "Data bits: 5, 6, 7 or 8")
	monitorCmd.Flags().Int("stop-bits", 1, "Stop bits: 1 or 2")
	monitorCmd.Flags().StringP("parity", "p", "none", "Parity: none, even, odd")
}

// connStatusMsg reports the outcome of the background port open and any
// later read failure
type connStatusMsg struct {
	port *sercom.Port
	err  error
}

// monitorModel represents the Bubble Tea model for the monitor command
type monitorModel struct {
	terminal  *components.Terminal
	statusBar *components.StatusBar
	help      help.Model
	keys      keys.TerminalKeys
	port      *sercom.Port
	ready     bool
}

func runMonitorTUI(portPath string, opts ...sercom.Option) error {
	m := &monitorModel{
		terminal:  components.NewTerminal(0, 0), // sized by the first WindowSizeMsg
		statusBar: components.NewStatusBar("Serial Monitor", portPath),
		help:      help.New(),
		keys:      keys.NewTerminalKeys(),
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Connect to the serial port in the background so the UI comes up
	// immediately
	go func() {
		port, err := sercom.Open(portPath, opts...)
		if err != nil {
			p.Send(connStatusMsg{err: err})
			return
		}
		p.Send(connStatusMsg{port: port})

		buffer := make([]byte, 1024)
		for {
			n, err := port.Read(buffer)
			if err != nil {
				p.Send(connStatusMsg{err: err})
				return
			}
			if n == 0 {
				p.Send(connStatusMsg{err: fmt.Errorf("connection closed")})
				return
			}
			data := make([]byte, n)
			copy(data, buffer[:n])
			p.Send(components.DataReceivedMsg{
				Timestamp: time.Now(),
				Data:      data,
			})
		}
	}()

	_, err := p.Run()

	// The reader goroutine unblocks once the port is gone
	if m.port != nil {
		m.port.Close()
	}
	return err
}

func (m *monitorModel) Init() tea.Cmd {
	return nil
}

func (m *monitorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		statusBarHeight := 1
		helpHeight := 1
		m.terminal.SetSize(msg.Width, msg.Height-statusBarHeight-helpHeight-1)
		m.statusBar.SetWidth(msg.Width)
		m.help.Width = msg.Width
		m.ready = true

	case connStatusMsg:
		if msg.err != nil {
			m.statusBar.SetDisconnected(msg.err)
		} else {
			m.port = msg.port
			m.statusBar.SetConnected()
			m.statusBar.SetConfig(msg.port.Config())
		}

	case components.DataReceivedMsg:
		if m.ready {
			m.terminal.AddMessage(msg)
		}

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.port != nil {
				m.port.Close()
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Clear):
			m.terminal.Clear()
		case key.Matches(msg, m.keys.ToggleHex):
			m.terminal.ToggleHex()
		case key.Matches(msg, m.keys.ToggleASCII):
			m.terminal.ToggleASCII()
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		}
	}

	var cmd tea.Cmd
	_, cmd = m.terminal.Update(msg)
	return m, cmd
}

func (m *monitorModel) View() string {
	var content string
	if m.ready {
		content = m.terminal.View()
	} else {
		content = "Initializing..."
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.statusBar.View(),
		styles.ContentBorderStyle.Render(content),
		m.help.View(m.keys),
	)
}
