/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"

	"github.com/allbin/sercom"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available serial devices",
	Long: `List all serial-capable devices on the system.

This command scans for communication-capable serial devices including:
- USB serial adapters (ttyUSB*)
- USB CDC/ACM devices (ttyACM*)
- Standard serial ports (ttyS*)
- ARM/Raspberry Pi ports (ttyAMA*)
- And other platform-specific serial devices

Virtual terminals and pseudo-terminals are excluded. Where sysfs
exposes one, the device's product or interface name is shown next to
the path.`,
	Run: func(cmd *cobra.Command, args []string) {
		entries := sercom.ListPorts()
		if len(entries) == 0 {
			fmt.Println("No serial devices found")
			return
		}

		tableFormat, _ := cmd.Flags().GetBool("table")
		if tableFormat {
			renderTable(entries)
		} else {
			renderSimple(entries)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().BoolP("table", "t", false, "Display output in a styled table format")
}

// renderSimple prints one device per line, "path - name" when a
// friendly name is known and the bare path otherwise
func renderSimple(entries []sercom.PortEntry) {
	for _, entry := range entries {
		if entry.Name != "" {
			fmt.Printf("%s - %s\n", entry.Path, entry.Name)
		} else {
			fmt.Println(entry.Path)
		}
	}
}

// renderTable renders the device list in a styled static table format
func renderTable(entries []sercom.PortEntry) {
	fmt.Printf("Found %d serial device(s):\n\n", len(entries))

	pathWidth := 18
	typeWidth := 22
	nameWidth := 30

	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("240")).
		PaddingBottom(1)

	cellStyle := lipgloss.NewStyle().
		PaddingRight(2)

	header := fmt.Sprintf("%-*s %-*s %-*s",
		pathWidth, "Path",
		typeWidth, "Type",
		nameWidth, "Name")
	fmt.Println(headerStyle.Render(header))

	for _, entry := range entries {
		description := ""
		if info, err := sercom.GetPortInfo(entry.Path); err == nil {
			description = info.Description
		}
		row := fmt.Sprintf("%-*s %-*s %-*s",
			pathWidth, entry.Path,
			typeWidth, description,
			nameWidth, entry.Name)
		fmt.Println(cellStyle.Render(row))
	}
}
