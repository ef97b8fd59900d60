package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/leadline-ai/leadline/config"
	apierrors "github.com/leadline-ai/leadline/errors"
	"github.com/leadline-ai/leadline/profile"
	"github.com/leadline-ai/leadline/qualify"
	"github.com/leadline-ai/leadline/server"
	"github.com/leadline-ai/leadline/server/metrics"
	"github.com/leadline-ai/leadline/server/provider"
	"github.com/leadline-ai/leadline/session"
)

var (
	configFile = flag.String("config", "config.yaml", "Path to configuration file")
	validate   = flag.Bool("validate", false, "Validate configuration and exit")
	version    = flag.Bool("version", false, "Print version and exit")
)

const Version = "v0.1.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("leadline %s\n", Version)
		os.Exit(0)
	}

	// Optional .env file; absence is fine in real deployments where the
	// environment is set by the platform.
	_ = godotenv.Load()

	cfg, err := config.LoadFile(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *validate {
		if _, err := profile.LoadFile(cfg.ProfilesPath); err != nil {
			log.Fatalf("Invalid profiles document: %v", err)
		}
		fmt.Println("Configuration is valid")
		os.Exit(0)
	}

	if err := cfg.RequireAPIKey(); err != nil {
		log.Fatalf("Failed to resolve API key: %v", err)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()
	apierrors.SetLogger(logger)

	profiles, err := profile.LoadFile(cfg.ProfilesPath)
	if err != nil {
		logger.Fatal("Failed to load business profiles", zap.Error(err))
	}
	logger.Info("Business profiles loaded",
		zap.Strings("industries", profiles.Industries()),
	)

	m := metrics.NewMetrics()

	groq := provider.NewGroqProvider(cfg.LLM.APIKey,
		provider.WithEndpoint(cfg.LLM.Endpoint),
	)
	completions := provider.NewBreakerProvider(groq, cfg.CircuitBreaker, logger, m.Registry())

	orchestrator := qualify.NewOrchestrator(
		profiles,
		session.NewStore(),
		completions,
		cfg.LLM,
		logger,
		m,
	)

	router := server.NewRouter(orchestrator, m, logger)
	srv := server.NewServer(cfg.Server, router, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("Received shutdown signal")
		cancel()
	}()

	logger.Info("Starting leadline",
		zap.String("version", Version),
		zap.Int("port", cfg.Server.Port),
		zap.String("model", cfg.LLM.Model),
	)
	if err := srv.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Format == "text" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level

	return zapCfg.Build()
}
