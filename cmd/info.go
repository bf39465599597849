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

// infoCmd represents the info command
var infoCmd = &cobra.Command{
	Use:   "info <port>",
	Short: "Display detailed information about a serial device",
	Long: `Display detailed information about a serial device including USB
metadata where available.

Examples:
  sercom info /dev/ttyUSB0
  sercom info /dev/ttyACM0

For USB devices, this displays vendor/product IDs, the product string
and the serial number as extracted from sysfs.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		info, err := sercom.GetPortInfo(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Device Information: %s\n\n", info.Path)
		fmt.Printf("  Name:        %s\n", info.Name)
		fmt.Printf("  Description: %s\n", info.Description)

		if info.VendorID != "" || info.ProductID != "" {
			fmt.Println("\nUSB Device Information:")
			if info.VendorID != "" {
				fmt.Printf("  Vendor ID:  %s\n", info.VendorID)
			}
			if info.ProductID != "" {
				fmt.Printf("  Product ID: %s\n", info.ProductID)
			}
			if info.Product != "" {
				fmt.Printf("  Product:    %s\n", info.Product)
			}
			if info.SerialNumber != "" {
				fmt.Printf("  Serial:     %s\n", info.SerialNumber)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
