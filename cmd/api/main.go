package main

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/clinicware/intake-agent/cmd/mainconfig"
	"github.com/clinicware/intake-agent/internal/api/router"
	"github.com/clinicware/intake-agent/internal/booking"
	appconfig "github.com/clinicware/intake-agent/internal/config"
	"github.com/clinicware/intake-agent/internal/conversation"
	"github.com/clinicware/intake-agent/internal/notify"
	"github.com/clinicware/intake-agent/internal/schedule"
	"github.com/clinicware/intake-agent/internal/session"
	"github.com/clinicware/intake-agent/internal/webchat"
	"github.com/clinicware/intake-agent/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting intake-agent API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	table, err := schedule.LoadTable(cfg.SchedulePath)
	if err != nil {
		logger.Error("failed to load schedule", "error", err, "path", cfg.SchedulePath)
		os.Exit(1)
	}
	finder := schedule.NewFinder(table)

	store := buildSessionStore(cfg, logger)
	ledger := buildLedger(cfg, logger)
	llm := buildLLMClient(ctx, cfg, logger)

	intents := conversation.NewIntentAgent(llm, cfg.LLMTimeout, logger)
	responder := conversation.NewResponder(llm, cfg.LLMTimeout, logger)

	var emailSender notify.EmailSender
	if cfg.SendGridAPIKey != "" {
		fromEmail := cfg.SendGridFromEmail
		if fromEmail == "" {
			fromEmail = cfg.ClinicEmail
		}
		emailSender = notify.NewSendGridSender(notify.SendGridConfig{
			APIKey:    cfg.SendGridAPIKey,
			FromEmail: fromEmail,
			FromName:  cfg.SendGridFromName,
		}, logger)
	} else {
		logger.Warn("SENDGRID_API_KEY not set, confirmation emails disabled")
		emailSender = notify.NewStubEmailSender(logger)
	}
	notifier := notify.NewService(emailSender, cfg.ClinicName, logger)

	orch := conversation.NewOrchestrator(conversation.OrchestratorConfig{
		Store:     store,
		Ledger:    ledger,
		Finder:    finder,
		Intents:   intents,
		Responder: responder,
		Notifier:  notifier,
		Logger:    logger,
	})

	intakeHandler := conversation.NewHandler(orch, store, ledger, logger)
	webchatHandler := webchat.NewHandler(orch, store, logger)

	r := router.New(&router.Config{
		Logger:             logger,
		IntakeHandler:      intakeHandler,
		WebchatHandler:     webchatHandler,
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// buildSessionStore picks Redis when configured, in-memory otherwise.
func buildSessionStore(cfg *appconfig.Config, logger *logging.Logger) session.Store {
	if cfg.RedisAddr == "" {
		logger.Warn("REDIS_ADDR not set, sessions are process-local")
		return session.NewInMemoryStore()
	}
	opts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err, "addr", cfg.RedisAddr)
		os.Exit(1)
	}
	logger.Info("session store: redis", "addr", cfg.RedisAddr)
	return session.NewRedisStore(client, nil)
}

// buildLedger picks Postgres when configured, in-memory otherwise.
func buildLedger(cfg *appconfig.Config, logger *logging.Logger) booking.Ledger {
	if cfg.DatabaseURL == "" {
		logger.Warn("DATABASE_URL not set, bookings are process-local")
		return booking.NewInMemoryLedger()
	}
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("booking ledger: postgres")
	return booking.NewPostgresLedger(db)
}

// buildLLMClient wires Gemini as the primary provider with Bedrock as
// fallback. At least one provider must be configured.
func buildLLMClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) conversation.LLMClient {
	var gemini conversation.LLMClient
	if cfg.GeminiAPIKey != "" {
		client, err := conversation.NewGeminiLLMClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to initialize gemini client", "error", err)
			os.Exit(1)
		}
		gemini = client
		logger.Info("llm: gemini configured", "model", cfg.GeminiModelID)
	}

	var bedrock conversation.LLMClient
	if cfg.BedrockModelID != "" {
		awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		bedrock = conversation.NewBedrockLLMClient(bedrockruntime.NewFromConfig(awsCfg), cfg.BedrockModelID)
		logger.Info("llm: bedrock fallback configured", "model", cfg.BedrockModelID)
	}

	switch {
	case gemini != nil:
		return conversation.NewFallbackLLMClient(gemini, bedrock, logger)
	case bedrock != nil:
		return bedrock
	default:
		logger.Error("no LLM provider configured, set GEMINI_API_KEY or BEDROCK_MODEL_ID")
		os.Exit(1)
		return nil
	}
}
