package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"millionaire-service/internal/app"
	"millionaire-service/internal/config"
	"millionaire-service/internal/infra/catalog"
	"millionaire-service/internal/infra/memory"
	"millionaire-service/internal/infra/postgres"
	infraredis "millionaire-service/internal/infra/redis"
	"millionaire-service/internal/telemetry"
	transport "millionaire-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	setupLogging(cfg)

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}

	redisClient := newRedisClient(cfg)
	if redisClient != nil {
		defer redisClient.Close()
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pool.Close()
	}

	var (
		loader  memory.QuestionLoader
		players app.PlayerDirectory
	)
	if pool != nil {
		loader = postgres.NewQuestionLoader(pool)
		players = postgres.NewPlayerDirectory(pool)
	} else {
		cat, err := catalog.Load(cfg.Questions.File)
		if err != nil {
			return err
		}
		if missing := cat.MissingLevels(); len(missing) > 0 {
			slog.WarnContext(ctx, "start: catalog cannot fill a game", "missingLevels", missing)
		}
		loader = memory.NewStaticQuestionLoader(cat.Questions)
		players = memory.NewPlayerDirectory(cat.Players...)
	}

	rnd := app.NewRand(0)
	rules := app.Rules{
		TimeLimit: config.TTLDuration(cfg.Game.TimeLimit, app.DefaultTimeLimit),
		Rand:      rnd,
		Lifelines: app.NewLifelines(rnd, app.LifelineConfig{
			AudienceAccuracy: cfg.Game.AudienceAccuracy,
			FriendAccuracy:   cfg.Game.FriendAccuracy,
		}),
	}

	questionsTTL := config.TTLDuration(cfg.Questions.TTL, 5*time.Minute)
	var (
		questions app.QuestionPool
		games     app.GameRepository
	)
	if redisClient != nil {
		redisTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)
		questions = infraredis.NewQuestionRepository(redisClient, loader, cfg.Redis.Prefix, questionsTTL)
		games = infraredis.NewGameStore(redisClient, rules, cfg.Redis.Prefix, redisTTL)
	} else {
		questions = memory.NewQuestionRepository(loader, questionsTTL)
		games = memory.NewGameStore()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics, err := telemetry.NewMetrics(reg)
	if err != nil {
		return err
	}

	service := app.NewGameService(app.Config{
		Games:     games,
		Players:   players,
		Questions: questions,
		Rules:     rules,
		Metrics:   metrics,
	})
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:        ":" + finalPort,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
	}

	go func() {
		slog.Info("start: serving", "addr", server.Addr, "redis", redisClient != nil, "postgres", pool != nil)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("start: server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		slog.Info("start: shutting down server")
	case <-ctx.Done():
		slog.Info("start: context canceled, shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func newRedisClient(cfg config.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}
