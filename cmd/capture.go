/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/allbin/go-fedsync"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// captureCmd represents the capture command
var captureCmd = &cobra.Command{
	Use:   "capture <port>",
	Short: "Record device data to a run file",
	Long: `Record the event lines a FED3 device emits without the interactive
interface.

The device counters are reset and a new run file is created from --output:
- a directory ending in / gets <year>-<week>-<weekday>_run-<n>.csv
- a file name gets <name>-<YYYY-MM-DD>_run-<n>.csv
The run number counts up from 1 so an existing file is never overwritten.

Recording runs until interrupted (Ctrl+C).

Example usage:
  fedsync capture /dev/ttyACM0 --output data/
  fedsync capture /dev/ttyACM0 --output data/cage4.csv --console
  fedsync capture /dev/ttyACM0 --sync`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		syncFirst, _ := cmd.Flags().GetBool("sync")
		showConsole, _ := cmd.Flags().GetBool("console")

		if err := runCapture(args[0], viper.GetString("output"), syncFirst, showConsole); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().Bool("sync", false, "Set the device clock before recording")
	captureCmd.Flags().BoolP("console", "c", false, "Echo the operator log to the console while capturing")
}

func runCapture(portPath, outputPath string, syncFirst, showConsole bool) error {
	state := fedsync.NewSystemState(fedsync.EndpointDialer(portOptions()...), afero.NewOsFs())
	if err := state.SetPorts([]string{portPath}); err != nil {
		return err
	}
	state.SetOutputPath(outputPath, true)

	if syncFirst {
		echoed, err := state.Sync(time.Now())
		if err != nil {
			state.Close()
			return fmt.Errorf("sync failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Synced time to %s\n", echoed)
	}

	if _, err := state.ToggleRecording(time.Now()); err != nil {
		state.Close()
		return err
	}
	runFile := state.RecordingPath()

	// Setup signal handling for clean shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		<-sigChan
		fmt.Fprintf(os.Stderr, "\nReceived interrupt signal, shutting down...\n")
		cancel()
	}()

	fmt.Fprintf(os.Stderr, "Recording from %s to %s\n", portPath, runFile)
	fmt.Fprintf(os.Stderr, "Press Ctrl+C to stop\n\n")

	startTime := time.Now()
	done := make(chan error, 1)
	go func() {
		done <- fedsync.NewPoller(state, viper.GetDuration("poll-interval")).Run(ctx)
	}()

	if showConsole {
		echoLog(ctx, state.Logs())
	}

	pollErr := <-done
	closeErr := state.Close()

	duration := time.Since(startTime)
	fmt.Fprintf(os.Stderr, "\nCapture complete: %s written in %v\n", runFile, duration.Round(time.Millisecond))

	if pollErr != nil {
		return pollErr
	}
	return closeErr
}

// echoLog prints operator log lines as they are added until ctx is done
func echoLog(ctx context.Context, logs *fedsync.LogBuffer) {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var last string
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			lines := logs.Lines()
			for _, line := range newLines(lines, last) {
				fmt.Println(line)
			}
			if len(lines) > 0 {
				last = lines[len(lines)-1]
			}
		}
	}
}

// newLines returns the lines after the last occurrence of last. The buffer
// evicts old lines, so position alone cannot be trusted.
func newLines(lines []string, last string) []string {
	if last == "" {
		return lines
	}
	for i := len(lines) - 1; i >= 0; i-- {
		if lines[i] == last {
			return lines[i+1:]
		}
	}
	return lines
}
