// Typeahead is a terminal virtual keyboard that suggests the next word.
//
// Usage:
//
//	typeahead                 type on the keyboard, print the text on exit
//	typeahead serve           run the prediction endpoint
//	typeahead analytics [n]   review accepted suggestions
//	typeahead config set k v  change a setting
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robottwo/typeahead/internal/analytics"
	"github.com/robottwo/typeahead/internal/config"
	"github.com/robottwo/typeahead/internal/core"
	"github.com/robottwo/typeahead/internal/predict"
	"github.com/robottwo/typeahead/internal/styles"
	"github.com/robottwo/typeahead/pkg/vkbd"
)

var BUILD_VERSION = "dev"

var (
	configPath   string
	logLevelFlag string
)

func init() {
	// Register custom zstd sink for compressed logging
	if err := zap.RegisterSink("zstd", newCompressedSink); err != nil {
		panic(fmt.Sprintf("failed to register zstd sink: %v", err))
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/typeahead/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, vkbd.ErrInterrupted) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, styles.ERROR("Error: "+err.Error()))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "typeahead",
	Short: "Virtual keyboard with next-word suggestions",
	Long: `Typeahead draws a keyboard in the terminal. Type with the physical keyboard
or click the keys, and pick one of three suggested next words with the mouse
or alt+1, alt+2 and alt+3. Suggestions come from the prediction endpoint,
see 'typeahead serve'.

The typed text is printed when you press esc.`,
	Version:       BUILD_VERSION,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runKeyboard,
}

// loadConfig reads the config file and applies the --log-level flag.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFilePath())
	if err != nil {
		return nil, err
	}
	if logLevelFlag != "" {
		if err := cfg.Set("log.level", logLevelFlag); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func runKeyboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger, err := initializeLogger(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()
	logger.Info("-------- new typeahead session --------", zap.Strings("args", os.Args))

	client, err := predict.NewClient(cfg.Keyboard.Endpoint, BUILD_VERSION,
		predict.WithTimeout(cfg.Keyboard.PredictionTimeout),
		predict.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	var recorder vkbd.SuggestionAnalytics
	if cfg.Keyboard.Analytics {
		analyticsManager, err := analytics.NewAnalyticsManager(core.AnalyticsFile(), logger)
		if err != nil {
			logger.Warn("analytics disabled", zap.Error(err))
		} else {
			defer func() {
				_ = analyticsManager.Close()
			}()
			recorder = analyticsManager
		}
	}

	options := vkbd.NewOptions()
	options.Placeholder = cfg.Keyboard.Placeholder
	options.Apology = cfg.Keyboard.Apology
	options.PredictionTimeout = cfg.Keyboard.PredictionTimeout
	options.KeyUpDelay = cfg.Keyboard.KeyUpDelay

	text, err := vkbd.Run(client, recorder, logger, options)
	if err != nil {
		logger.Info("keyboard closed", zap.Error(err))
		return err
	}
	if text != "" {
		fmt.Fprintln(cmd.OutOrStdout(), text)
	}
	return nil
}
