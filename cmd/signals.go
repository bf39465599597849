/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/allbin/sercom"
	"github.com/spf13/cobra"
)

// signalsCmd represents the signals command
var signalsCmd = &cobra.Command{
	Use:   "signals <port>",
	Short: "Show the modem control line states of a serial device",
	Long: `Show a one-shot snapshot of the modem control lines (CTS, DSR, RI,
DCD, RTS, DTR) of a serial device.

Useful for diagnosing cabling and carrier-detect wiring. The relay
itself never acts on these lines; this is display only.

Example usage:
  sercom signals /dev/ttyUSB0`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		port, err := sercom.Open(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer port.Close()

		signals, err := port.GetModemSignals()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Modem signals for %s:\n\n", args[0])
		fmt.Printf("  CTS: %s\n", onOff(signals.CTS))
		fmt.Printf("  DSR: %s\n", onOff(signals.DSR))
		fmt.Printf("  RI:  %s\n", onOff(signals.RI))
		fmt.Printf("  DCD: %s\n", onOff(signals.DCD))
		fmt.Printf("  RTS: %s\n", onOff(signals.RTS))
		fmt.Printf("  DTR: %s\n", onOff(signals.DTR))
	},
}

func init() {
	rootCmd.AddCommand(signalsCmd)
}

func onOff(state bool) string {
	if state {
		return "ON"
	}
	return "OFF"
}
