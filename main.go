package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"limitfree/api"
	"limitfree/config"
	"limitfree/database"
	"limitfree/logging"
	"limitfree/middleware"
	"limitfree/models"
	"limitfree/repository"
	"limitfree/scoring"
	"limitfree/services"
)

const shutdownTimeout = 10 * time.Second

var configDir string

func main() {
	root := &cobra.Command{
		Use:           "limitfree",
		Short:         "LimitFree career exploration backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config", "", "directory containing config.yaml")
	root.AddCommand(newServeCmd(), newScoreCmd(), newQuestionsCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if configDir != "" {
		return config.Load(configDir)
	}
	return config.Load()
}

func loadBanks(cfg *config.Config) (services.QuestionBanks, error) {
	if cfg.Assessment.BankDir == "" {
		return services.DefaultQuestionBanks(), nil
	}
	return services.LoadQuestionBanks(cfg.Assessment.BankDir)
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			log, err := logging.Init(cfg.Logging)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck
			zap.ReplaceGlobals(log)
			config.WatchConfig(log.Named("Config"))

			return serve(cmd.Context(), cfg, log)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	log = log.Named("Main")

	db, err := database.Init(cfg.Database.DSN, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	banks, err := loadBanks(cfg)
	if err != nil {
		return fmt.Errorf("failed to load question banks: %w", err)
	}

	assessmentRepo := repository.NewAssessmentRepository(db, log)
	quotaRepo := repository.NewQuotaRepository(db, log)
	shuttleRepo := repository.NewShuttleRepository(db, log)
	questRepo := repository.NewQuestRepository(db, log)
	log.Info("Repositories initialized")

	guestLimit := func() int { return config.Current().GuestAIQuota }
	llm := services.NewLLMClient(*cfg, log)
	assessmentService := services.NewAssessmentService(assessmentRepo, banks, cfg.Assessment.TraitMinCompletion, log)
	shuttleService := services.NewShuttleService(assessmentRepo, shuttleRepo, questRepo, quotaRepo, llm, banks, cfg.Cache.SuggestionSize, guestLimit, log)
	questService := services.NewQuestService(questRepo, shuttleRepo, quotaRepo, llm, guestLimit, log)
	progressService := services.NewProgressService(questRepo, assessmentRepo, log)
	log.Info("Services initialized")

	handler := api.NewAPIHandler(quotaRepo, assessmentService, shuttleService, questService, progressService, guestLimit, log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.MustNewMetrics(reg)

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	if err := r.SetTrustedProxies(nil); err != nil {
		return err
	}
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log.Named("HTTP")))
	r.Use(middleware.Cors(cfg.Server.AllowedOrigins))
	r.Use(metrics.Middleware())
	api.RegisterRoutes(r, handler, metrics.Handler())
	log.Info("Routes registered")

	port := cfg.Server.Port
	if port == "" {
		log.Warn("Server port not configured, using default 8080")
		port = "8080"
	}
	srv := &http.Server{Addr: ":" + port, Handler: r}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}

func newScoreCmd() *cobra.Command {
	var model, file string
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a JSON response set from disk",
		Example: `  limitfree score --model riasec --file responses.json
  echo '{"O1":6,"O2":2}' | limitfree score --model ocean --file -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			banks, err := loadBanks(cfg)
			if err != nil {
				return err
			}

			var raw []byte
			if file == "-" {
				raw, err = io.ReadAll(cmd.InOrStdin())
			} else {
				raw, err = os.ReadFile(file)
			}
			if err != nil {
				return fmt.Errorf("failed to read responses: %w", err)
			}
			var responses scoring.ResponseSet
			if err := json.Unmarshal(raw, &responses); err != nil {
				return fmt.Errorf("responses must be a JSON object of question id to value: %w", err)
			}

			result, err := scoreResponses(banks, models.AssessmentModel(model), responses)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&model, "model", string(models.ModelInterest), "assessment model: riasec or ocean")
	cmd.Flags().StringVar(&file, "file", "", "path to the responses JSON file, - for stdin")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// scoreResponses validates and scores responses without touching storage.
func scoreResponses(banks services.QuestionBanks, model models.AssessmentModel, responses scoring.ResponseSet) (any, error) {
	switch model {
	case models.ModelInterest:
		if err := banks.Interest.Validate(responses); err != nil {
			return nil, err
		}
		return banks.Interest.Calculate(responses), nil
	case models.ModelTrait:
		if err := banks.Trait.Validate(responses); err != nil {
			return nil, err
		}
		return banks.Trait.Evaluate(responses), nil
	}
	return nil, fmt.Errorf("%w: %q", services.ErrInvalidModel, model)
}

func newQuestionsCmd() *cobra.Command {
	var model string
	cmd := &cobra.Command{
		Use:   "questions",
		Short: "Print a question bank as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			banks, err := loadBanks(cfg)
			if err != nil {
				return err
			}
			questions, err := banks.Questions(models.AssessmentModel(model))
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(questions)
		},
	}
	cmd.Flags().StringVar(&model, "model", string(models.ModelInterest), "assessment model: riasec or ocean")
	return cmd
}
