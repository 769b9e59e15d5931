package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/robottwo/typeahead/internal/config"
	"github.com/robottwo/typeahead/internal/predict"
	"github.com/robottwo/typeahead/internal/server"
	"github.com/robottwo/typeahead/internal/styles"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the prediction endpoint",
	Long: `Serve GET /output?string=<text>, answering with three [word, score] pairs.

Words come from an OpenAI-compatible model when llm.enabled is set, and from
built-in word tables otherwise or when the model fails. Answers are cached.`,
	Example: `  # Listen on the configured address
  typeahead serve

  # Use a local Ollama model
  TYPEAHEAD_LLM_ENABLED=true TYPEAHEAD_LLM_MODEL=llama3 typeahead serve --addr :5000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
}

// buildEngine assembles the predictor chain the server answers from.
func buildEngine(cfg *config.Config, logger *zap.Logger) predict.Predictor {
	router := &predict.PredictRouter{
		Fallback: &predict.FallbackPredictor{},
		Logger:   logger,
	}
	if cfg.LLM.Enabled {
		router.Primary = predict.NewLLMPredictor(predict.LLMConfig{
			BaseURL:     cfg.LLM.BaseURL,
			APIKey:      cfg.LLM.APIKey,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
		}, logger)
	}
	return predict.NewCachedPredictor(router, cfg.Server.CacheSize, cfg.Server.CacheTTL)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	logger, err := initializeLogger(cfg, "stderr")
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	srv := server.New(server.Config{
		Addr:           cfg.Server.Addr,
		PredictTimeout: cfg.Server.PredictTimeout,
	}, buildEngine(cfg, logger), logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintln(cmd.OutOrStdout(), styles.HEADING("typeahead prediction server")+" "+styles.HINT("on http://"+cfg.Server.Addr+"/output"))
	return srv.Run(ctx)
}
