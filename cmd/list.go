/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/allbin/go-fedsync"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List serial ports a FED3 could be attached to",
	Long: `List the serial ports a FED3 device could be attached to, in the order
the ui and capture commands pick them. The excluded ports (COM3) never show.

With --usb only USB-attached ports are listed; a FED3 shows up as ttyACM*.
With --table the USB vendor:product ID and serial number are shown, which
tells several cages apart.`,
	Run: func(cmd *cobra.Command, args []string) {
		ports, err := fedsync.AvailablePorts()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error listing ports: %v\n", err)
			os.Exit(1)
		}

		usb, _ := cmd.Flags().GetBool("usb")
		table, _ := cmd.Flags().GetBool("table")

		infos := describePorts(ports)
		if usb {
			infos = usbOnly(infos)
		}
		if len(infos) == 0 {
			fmt.Println("No serial ports found")
			return
		}

		if table {
			renderTable(infos)
			return
		}
		for _, info := range infos {
			fmt.Println(info.Path)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().Bool("usb", false, "Only list USB-attached ports")
	listCmd.Flags().BoolP("table", "t", false, "Show description and USB IDs")
}

// describePorts looks up each port; one that vanished since the scan keeps
// its path with an empty description.
func describePorts(ports []string) []*fedsync.PortInfo {
	infos := make([]*fedsync.PortInfo, 0, len(ports))
	for _, port := range ports {
		info, err := fedsync.GetPortInfo(port)
		if err != nil {
			info = &fedsync.PortInfo{Path: port, Description: "-"}
		}
		infos = append(infos, info)
	}
	return infos
}

func usbOnly(infos []*fedsync.PortInfo) []*fedsync.PortInfo {
	var out []*fedsync.PortInfo
	for _, info := range infos {
		if info.IsUSB {
			out = append(out, info)
		}
	}
	return out
}

func renderTable(infos []*fedsync.PortInfo) {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("240"))

	fmt.Println(header.Render(portRow("Port", "Description", "USB")))
	for _, info := range infos {
		fmt.Println(portRow(info.Path, info.Description, usbSummary(info)))
	}
}

func portRow(port, description, usb string) string {
	return fmt.Sprintf("%-18s %-20s %s", port, description, usb)
}

// usbSummary formats VID:PID and the serial number, when known
func usbSummary(info *fedsync.PortInfo) string {
	if !info.IsUSB || info.VendorID == "" {
		return "-"
	}
	summary := info.VendorID + ":" + info.ProductID
	if info.SerialNumber != "" {
		summary += " " + info.SerialNumber
	}
	return summary
}
