package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"telegram-media-relay/internal/config"
	"telegram-media-relay/internal/domain/model"
	"telegram-media-relay/internal/domain/ports/adapter"
	pg "telegram-media-relay/internal/infra/db/postgres"
	"telegram-media-relay/internal/infra/i18n"
	"telegram-media-relay/internal/infra/logging"
	"telegram-media-relay/internal/infra/memory"
	"telegram-media-relay/internal/infra/metrics"
	red "telegram-media-relay/internal/infra/redis"
	"telegram-media-relay/internal/infra/resolver"
	"telegram-media-relay/internal/infra/sched"
	tele "telegram-media-relay/internal/infra/telegram"
	"telegram-media-relay/internal/infra/web"
	"telegram-media-relay/internal/infra/worker"
	"telegram-media-relay/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode (log-only transport, no polling)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres")
	}
	defer pool.Close()
	recipientRepo := pg.NewPostgresRecipientRepo(pool)

	// ---- Sessions (in-memory, lost on restart by design) ----
	sessionRepo := memory.NewSessionRepo()

	// ---- Redis rate limiter (optional) ----
	var rateLimiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer redisClient.Close()
		rateLimiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set; rate limiting disabled")
	}

	// ---- Replies ----
	tr, err := i18n.NewTranslator(i18n.LocalesFS, "en")
	if err != nil {
		logger.Fatal().Err(err).Msg("i18n")
	}

	// ---- Transport ----
	var bot adapter.BotAdapter
	var realBot *tele.RealBotAdapter
	if cfg.Runtime.Dev {
		bot = tele.NewNoopBotAdapter()
	} else {
		realBot, err = tele.NewRealBotAdapter(&cfg.Bot, tr, rateLimiter, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram")
		}
		bot = realBot
	}

	// ---- Workers ----
	workerPool := worker.NewPool(cfg.Broadcast.Workers, logger)
	workerPool.Start(ctx)
	defer workerPool.Stop()

	// ---- Use cases ----
	accessUC := usecase.NewAccessUseCase(cfg.Bot.OperatorID, cfg.Bot.Channel, bot, logger)
	broadcastUC := usecase.NewBroadcastUseCase(recipientRepo, bot, workerPool, cfg.Broadcast.RatePerSec, logger)
	resolvers := map[model.LinkDomain]adapter.LinkResolver{
		model.DomainYouTube:   resolver.NewYouTubeResolver(cfg.Resolver.YouTubeURL, cfg.Resolver.Timeout),
		model.DomainInstagram: resolver.NewInstagramResolver(cfg.Resolver.InstagramURL, cfg.Resolver.Timeout),
	}
	flowUC := usecase.NewFlowUseCase(sessionRepo, recipientRepo, accessUC, broadcastUC, resolvers, bot, tr, cfg.Bot.Channel, logger)

	// ---- Polling ----
	if realBot != nil {
		if strings.ToLower(cfg.Bot.Mode) != "" && strings.ToLower(cfg.Bot.Mode) != "polling" {
			logger.Warn().Str("mode", cfg.Bot.Mode).Msg("bot mode not implemented; falling back to polling")
		}
		realBot.BindFlow(flowUC)
		go func() {
			if err := realBot.StartPolling(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	} else {
		logger.Info().Msg("dev mode: polling disabled, transport logs only")
	}

	// ---- Session janitor ----
	janitor := sched.NewSessionJanitor(cfg.Sessions.SweepInterval, cfg.Sessions.TTL, sessionRepo, logger)
	go func() { _ = janitor.Run(ctx) }()

	// ---- Ops server ----
	jwtSecret := cfg.Ops.JWTSecret
	if jwtSecret == "" {
		logger.Warn().Msg("ops.jwt_secret not set; falling back to dev secret (INSECURE)")
		jwtSecret = "dev-secret-change-me"
	}
	authMgr := web.NewAuthManager(jwtSecret, cfg.Ops.TokenTTL)
	opsSrv := web.NewServer(recipientRepo, broadcastUC, authMgr, cfg.Ops.AdminKey, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Ops.Port), Handler: opsSrv.Router()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("ops server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("ops server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}
