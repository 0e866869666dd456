package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"club-loyalty/internal/config"
	tele "club-loyalty/internal/infra/adapters/telegram"
	pg "club-loyalty/internal/infra/db/postgres"
	"club-loyalty/internal/infra/logging"
	"club-loyalty/internal/infra/metrics"
	red "club-loyalty/internal/infra/redis"
	"club-loyalty/internal/infra/sched"
	"club-loyalty/internal/infra/web"
	"club-loyalty/internal/infra/worker"
	"club-loyalty/internal/usecase"

	"club-loyalty/internal/domain/ports/adapter"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (relaxed auth, console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("DEV MODE enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()

	// ---- Redis ----
	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis")
	}
	rateLimiter := red.NewRateLimiter(redisClient)

	// ---- Repositories ----
	cardRepo := pg.NewCardRepo(pool)
	sessionRepo := pg.NewSessionRepo(pool)
	txnRepo := pg.NewTransactionRepo(pool)
	tierRepo := pg.NewTierRepoCacheDecorator(pg.NewTierRepo(pool), redisClient)
	promoRepo := pg.NewPromotionRepoCacheDecorator(pg.NewPromotionRepo(pool), redisClient)
	codeRepo := pg.NewPromoCodeRepo(pool)
	auditRepo := pg.NewAuditLogRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Tier table ----
	// Loaded once at startup; a broken threshold table is a deploy fault,
	// not something to limp along with.
	tierTable, err := usecase.LoadTierTable(ctx, tierRepo)
	if err != nil {
		logger.Fatal().Err(err).Msg("tier table")
	}

	// ---- Audit pipeline ----
	auditPool := worker.NewPool(2, logger)
	auditPool.Start(ctx)
	defer auditPool.Stop()
	audit := usecase.NewAuditRecorder(auditRepo, auditPool, logger)

	// ---- Tier-change notifier ----
	var notifier adapter.TierNotifier = tele.NoopTierNotifier{}
	if cfg.Telegram.Token != "" {
		n, err := tele.NewTierBotNotifier(&cfg.Telegram)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram notifier")
		}
		notifier = n
		logger.Info().Int64("chat_id", cfg.Telegram.ChatID).Msg("telegram tier notifications enabled")
	}

	// ---- Use cases ----
	ledgerUC := usecase.NewLedgerUseCase(cardRepo, txnRepo, tierTable, txManager, audit, logger)
	bonuses := usecase.NewBonusResolver(promoRepo)
	sessionUC := usecase.NewSessionUseCase(sessionRepo, cardRepo, ledgerUC, bonuses, txManager, audit, notifier, cfg.Loyalty.PointsPerMinute, logger)
	redeemUC := usecase.NewRedemptionUseCase(codeRepo, promoRepo, cardRepo, ledgerUC, txManager, notifier, cfg.Loyalty.DefaultCodeBonus, logger)
	cardUC := usecase.NewCardUseCase(cardRepo, sessionRepo, txnRepo, tierTable, audit, logger)
	codeUC := usecase.NewPromoCodeUseCase(codeRepo, audit, logger)
	statsUC := usecase.NewStatsUseCase(cardRepo, codeRepo, txnRepo)

	// ---- HTTP API ----
	auth := web.NewAuthManager(cfg.Admin.JWTSecret, !cfg.Runtime.Dev, "", cfg.Admin.SessionTTL)
	srv := web.NewServer(
		cardUC, sessionUC, redeemUC, ledgerUC, codeUC, statsUC,
		promoRepo, tierRepo, auditRepo,
		rateLimiter, auth, cfg.Admin.APIKey, cfg.Loyalty.RedeemPerMinute,
		logger,
	)
	server := web.NewHTTPServer(fmt.Sprintf(":%d", cfg.Admin.Port), srv.Router())
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server")
		}
	}()

	// ---- Stale session sweeper ----
	maxSession := time.Duration(cfg.Loyalty.MaxSessionMinutes) * time.Minute
	sweeper := sched.NewStaleSessionSweeper(cfg.Loyalty.SweepInterval, maxSession, sessionUC, logger)
	go func() { _ = sweeper.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
