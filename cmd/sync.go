/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync <port>",
	Short: "Set the device clock to the host time",
	Long: `Send the host's current local time to a FED3 device and print the
timestamp the device echoes back.

The time is sent as ISO 8601 with microseconds, for example
2024-04-02T09:30:00.123456.

Example usage:
  fedsync sync /dev/ttyACM0
  fedsync sync /dev/ttyACM0 --timeout 5s`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		echoed, err := runSync(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Synced time to %s\n", echoed)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
}

func runSync(portPath string) (string, error) {
	m, err := dialPort(portPath)
	if err != nil {
		return "", err
	}
	defer m.Shutdown()

	echoed, err := m.SyncTime(time.Now())
	if err != nil {
		return "", fmt.Errorf("sync failed: %w", err)
	}
	return echoed, nil
}
