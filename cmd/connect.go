/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/allbin/sercom"
	"github.com/allbin/sercom/internal/tui/components"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// connectCmd represents the connect command
var connectCmd = &cobra.Command{
	Use:   "connect [port]",
	Short: "Relay bytes between a serial device and your terminal",
	Long: `Connect to a serial device and relay bytes bidirectionally between
the device and this terminal's standard input/output.

Everything typed on stdin is written to the device; everything the
device sends appears on stdout, byte for byte. The relay runs until
the device closes the connection, stdin reaches end-of-file, or you
press the interrupt key (Ctrl-C), and always releases the device on
the way out.

When no port argument is given, a picker listing the discovered
devices is shown.

Example usage:
  sercom connect /dev/ttyUSB0
  sercom connect /dev/ttyUSB0 --baud 9600
  sercom connect /dev/ttyACM0 --baud 9600 --data-bits 7 --stop-bits 2 --parity even
  echo "AT" | sercom connect /dev/ttyUSB0`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := ""
		if len(args) == 1 {
			portPath = args[0]
		} else {
			selected, err := pickDevice()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			if selected == "" {
				return
			}
			portPath = selected
		}

		opts, err := serialOptions(cmd)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		port, err := sercom.Open(portPath, opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// Relay-phase I/O errors still end in a graceful shutdown with
		// the port released, so they are reported without a failure
		// exit status.
		relay := sercom.NewRelay(port, sercom.WithNotices(os.Stderr))
		if err := relay.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)

	connectCmd.Flags().IntP("baud", "b", 115200, "Baud rate")
	connectCmd.Flags().Int("data-bits", 8, "Data bits: 5, 6, 7 or 8")
	connectCmd.Flags().Int("stop-bits", 1, "Stop bits: 1 or 2")
	connectCmd.Flags().StringP("parity", "p", "none", "Parity: none, even, odd")

	viper.SetDefault("baud", 115200)
	viper.SetDefault("data-bits", 8)
	viper.SetDefault("stop-bits", 1)
	viper.SetDefault("parity", "none")
}

// serialOptions builds the line configuration from command flags,
// falling back to viper-managed defaults (config file, SERCOM_* env)
// for flags the user did not set.
func serialOptions(cmd *cobra.Command) ([]sercom.Option, error) {
	baud := viper.GetInt("baud")
	if cmd.Flags().Changed("baud") {
		baud, _ = cmd.Flags().GetInt("baud")
	}
	dataBits := viper.GetInt("data-bits")
	if cmd.Flags().Changed("data-bits") {
		dataBits, _ = cmd.Flags().GetInt("data-bits")
	}
	stopBits := viper.GetInt("stop-bits")
	if cmd.Flags().Changed("stop-bits") {
		stopBits, _ = cmd.Flags().GetInt("stop-bits")
	}
	parityStr := viper.GetString("parity")
	if cmd.Flags().Changed("parity") {
		parityStr, _ = cmd.Flags().GetString("parity")
	}

	parity, err := sercom.ParseParity(parityStr)
	if err != nil {
		return nil, fmt.Errorf("parity %q: %w", parityStr, err)
	}

	return []sercom.Option{
		sercom.WithBaudRate(baud),
		sercom.WithDataBits(dataBits),
		sercom.WithStopBits(stopBits),
		sercom.WithParity(parity),
	}, nil
}

// pickDevice shows the interactive device picker and returns the chosen
// path, or "" if the user backed out.
func pickDevice() (string, error) {
	entries := sercom.ListPorts()
	if len(entries) == 0 {
		fmt.Println("No serial devices found")
		return "", nil
	}

	picker := components.NewPicker(entries)
	model, err := tea.NewProgram(picker).Run()
	if err != nil {
		return "", err
	}
	return model.(*components.Picker).Choice(), nil
}
