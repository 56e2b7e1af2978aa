package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"dental-dashboard/internal/analysis"
	"dental-dashboard/internal/capture"
	"dental-dashboard/internal/config"
	"dental-dashboard/internal/dentalink"
	"dental-dashboard/internal/lead"
	"dental-dashboard/internal/metrics"
	"dental-dashboard/internal/platform/database"
	"dental-dashboard/internal/platform/httpjson"
	"dental-dashboard/internal/platform/kafka"
	"dental-dashboard/internal/platform/logging"
	"dental-dashboard/internal/platform/telegram"
)

const purgeInterval = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		config.Exitf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		config.Exitf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 1. Infrastructure
	db, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBConnectAttempts, logger)
	if err != nil {
		logger.Warn("could not connect to database, continuing without it (lead capture will fail)", zap.Error(err))
	} else {
		defer db.Close()
		logger.Info("connected to database")
		if err := database.Migrate(cfg.MigrationsPath, cfg.DatabaseURL); err != nil {
			logger.Error("migrations failed", zap.Error(err))
		} else {
			logger.Info("migrations applied")
		}
	}

	// 2. Clients
	dentalinkClient := dentalink.NewClient(cfg.Dentalink)
	if !dentalinkClient.Configured() {
		logger.Warn("DENTALINK_API_TOKEN is not set, patient metrics will use fallback data")
	}

	tgClient := telegram.NewClient(cfg.Telegram.BotToken)
	if !tgClient.Configured() || cfg.Telegram.ClinicChatID == 0 {
		logger.Warn("TELEGRAM_BOT_TOKEN or CLINIC_CHAT_ID is not set, clinic notifications are disabled")
	}

	var publisher lead.Publisher
	producer, err := kafka.NewProducer(cfg.Kafka, logger)
	switch {
	case errors.Is(err, kafka.ErrNoBrokers):
		logger.Warn("KAFKA_BROKERS is not set, lead events are disabled")
	case err != nil:
		logger.Error("kafka producer init failed", zap.Error(err))
	default:
		defer producer.Close()
		publisher = producer
	}

	// 3. Services
	captureSvc := capture.NewService(capture.NewMemoryRepository(), nil, logger)

	aggregator := metrics.NewAggregator(
		metrics.WithRanker(metrics.StaticRanker{Priority: metrics.Priority(cfg.Metrics.DefaultPriority)}),
		metrics.WithSimulator(metrics.NewRandomSimulator(uint64(time.Now().UnixNano()))),
		metrics.WithOutreachLimit(cfg.Metrics.OutreachLimit),
		metrics.WithFallback(cfg.Metrics.FallbackEnabled),
	)
	metricsSvc := metrics.NewService(dentalinkClient, aggregator, logger)

	dentalinkSvc := dentalink.NewService(dentalinkClient, logger)

	leadSvc := lead.NewService(lead.NewRepository(db), notifier(tgClient), publisher, cfg.Telegram.ClinicChatID, logger)

	analysisSvc := analysis.NewService(
		captureSvc,
		analysis.NewStaticAnalyzer(),
		analysis.NewRenderer(cfg.ReportFontPaths, logger),
		documentSender(tgClient),
		cfg.Telegram.ClinicChatID,
		logger,
	)

	go purgeIdleCaptures(ctx, captureSvc, cfg.CaptureIdleTimeout, logger)

	// 4. Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// CORS for frontend
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")
			if r.Method == "OPTIONS" {
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpjson.Write(w, http.StatusOK, map[string]any{
			"status":   "ok",
			"database": db != nil,
		})
	})

	r.Route("/api", func(r chi.Router) {
		capture.RegisterRoutes(r, capture.NewHandler(captureSvc, logger))
		analysis.RegisterRoutes(r, analysis.NewHandler(analysisSvc, logger))
		metrics.RegisterRoutes(r, metrics.NewHandler(metricsSvc))
		dentalink.RegisterRoutes(r, dentalink.NewHandler(dentalinkSvc, logger))
		lead.RegisterRoutes(r, lead.NewHandler(leadSvc, logger))
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func purgeIdleCaptures(ctx context.Context, svc capture.Service, maxIdle time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(purgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := svc.PurgeIdle(ctx, maxIdle); err != nil {
				logger.Warn("capture purge failed", zap.Error(err))
			}
		}
	}
}

// notifier and documentSender keep an unconfigured bot out of the services
// as a nil interface.
func notifier(c *telegram.Client) lead.Notifier {
	if !c.Configured() {
		return nil
	}
	return c
}

func documentSender(c *telegram.Client) analysis.DocumentSender {
	if !c.Configured() {
		return nil
	}
	return c
}
