/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset <port>",
	Short: "Reset the device counters",
	Long: `Send the Reset command to a FED3 device, zeroing its poke and pellet
counters. The device does not answer; success means the command was
written.

Recording with 'fedsync capture' or from 'fedsync ui' resets the counters
automatically when a new run file is started.

Example usage:
  fedsync reset /dev/ttyACM0`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		portPath := args[0]

		m, err := dialPort(portPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		err = m.ResetCounters()
		if shutdownErr := m.Shutdown(); err == nil {
			err = shutdownErr
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Counters reset on %s\n", portPath)
	},
}

func init() {
	rootCmd.AddCommand(resetCmd)
}
