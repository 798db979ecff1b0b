/*
Copyright © 2025 Mathias Djärv <mathias.djarv@allbinary.se>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/allbin/go-fedsync"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	logFile *os.File
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fedsync",
	Short: "Clock sync and data recording for FED3 feeding devices",
	Long: `fedsync talks to FED3 pellet dispensers over USB serial.

It sets the device clock from the host, resets the device counters and
records the comma-separated event lines the device emits into numbered
run files that are never overwritten.

Settings can come from flags, from $HOME/.fedsync.yaml or from FEDSYNC_*
environment variables (for example FEDSYNC_BAUD or FEDSYNC_LOG_LEVEL).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// the full-screen interface owns the terminal, so it only logs to a file
		return setupLogging(cmd.Name() != "ui")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logFile != nil {
			logFile.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	defaults := fedsync.DefaultConfig()
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fedsync.yaml)")
	flags.IntP("baud", "b", defaults.BaudRate, "Baud rate")
	flags.Duration("timeout", defaults.ReadTimeout, "Read timeout, a multiple of 100ms")
	flags.StringP("output", "o", "", "Base path for recordings: a directory ending in / or a file name")
	flags.Duration("poll-interval", fedsync.DefaultPollInterval, "How often to check the device for data")
	flags.String("log-level", "info", "Diagnostic log level: trace, debug, info, warn, error")
	flags.String("log-file", "", "Write diagnostic logs to this file")

	viper.BindPFlag("baud", flags.Lookup("baud"))
	viper.BindPFlag("timeout", flags.Lookup("timeout"))
	viper.BindPFlag("output", flags.Lookup("output"))
	viper.BindPFlag("poll-interval", flags.Lookup("poll-interval"))
	viper.BindPFlag("log.level", flags.Lookup("log-level"))
	viper.BindPFlag("log.file", flags.Lookup("log-file"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".fedsync")
	}

	viper.SetEnvPrefix("FEDSYNC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setupLogging points the global zerolog logger at log.file, or at a
// console writer on stderr when console is set. Without either, diagnostic
// logging is discarded.
func setupLogging(console bool) error {
	level, err := zerolog.ParseLevel(viper.GetString("log.level"))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer
	switch path := viper.GetString("log.file"); {
	case path != "":
		logFile, err = os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		out = logFile
	case console:
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}
	default:
		out = io.Discard
	}

	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	return nil
}

// portOptions builds the port configuration from flags, config and env
func portOptions() []fedsync.Option {
	return []fedsync.Option{
		fedsync.WithBaudRate(viper.GetInt("baud")),
		fedsync.WithReadTimeout(viper.GetDuration("timeout")),
	}
}

// dialPort opens a connection manager on portPath
func dialPort(portPath string) (*fedsync.Manager, error) {
	m, err := fedsync.EndpointDialer(portOptions()...)(portPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open port: %w", err)
	}
	return m, nil
}
