package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/san-kum/creepersim/internal/config"
	"github.com/san-kum/creepersim/internal/logger"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	logLevel   string
	logFile    string
	configFile string

	// scenario overrides
	preset   string
	path     string
	legs     int
	groups   int
	tail     int
	scale    float64
	dt       float64
	duration float64
	seed     int64
	audioOn  bool
	noSave   bool
)

// appConfig is the loaded config file, or the defaults when none is given.
var appConfig = config.DefaultConfig()

// main registers the commands, runs the chosen one and exits 1 on error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "creepersim",
		Short:         "procedural creeper locomotion lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if configFile != "" {
				cfg, err := config.Load(configFile)
				if err != nil {
					return err
				}
				appConfig = cfg
			}
			level, file := appConfig.Logging.Level, appConfig.Logging.File
			if cmd.Flags().Changed("log-level") || level == "" {
				level = logLevel
			}
			if cmd.Flags().Changed("log-file") {
				file = logFile
			}
			if !cmd.Flags().Changed("data") && appConfig.DataDir != "" {
				dataDir = appConfig.DataDir
			}
			return logger.Init(level, file)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".creepersim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also log json to this rotating file")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	rootCmd.AddCommand(
		runCommand(),
		batchCommand(),
		liveCommand(),
		presetsCommand(),
		listCommand(),
		plotCommand(),
		exportCommand(),
		exportJSONCommand(),
		exportCSVCommand(),
		exportSVGCommand(),
		analyzeCommand(),
		audioCommand(),
		liquidCommand(),
		rigCommand(),
		settingsCommand(),
		benchCommand(),
		tuneCommand(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
