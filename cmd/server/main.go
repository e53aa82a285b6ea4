package main

import (
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"codecollab/internal/config"
	"codecollab/internal/exec"
	"codecollab/internal/identity"
	"codecollab/internal/jobs"
	"codecollab/internal/metrics"
	"codecollab/internal/notify"
	"codecollab/internal/room"
	"codecollab/internal/routers"
	"codecollab/internal/session"
	"codecollab/internal/utils"
)

func main() {
	utils.InitLogger()
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	var sessions identity.SessionStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		sessions = identity.NewRedisSessionStore(rdb)
		logger.Info("using redis session storage", zap.String("addr", cfg.RedisAddr))
	} else {
		sessions = identity.NewMemorySessionStore()
		logger.Info("using in-memory session storage")
	}

	ids := identity.NewStore(logger, sessions)
	notifier := notify.New()
	rooms := room.NewStore(logger, ids, notifier)
	runner := exec.NewRunner(logger, cfg.SimulateLatency, cfg.ExecWallTime)

	svc := session.New(session.Options{
		Log:             logger,
		Identity:        ids,
		Rooms:           rooms,
		Notifier:        notifier,
		Runner:          runner,
		SimulateLatency: cfg.SimulateLatency,
	})

	stats := jobs.NewStatsReporter(logger, rooms, cfg.StatsSchedule)
	if err := stats.Start(); err != nil {
		log.Fatalf("start stats reporter: %v", err)
	}
	defer stats.Stop()

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(60*time.Second),
		metrics.Middleware("codecollab"),
		cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		}),
	)

	r.Mount("/", routers.New(logger, svc, cfg.JWTSecret))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok")) })
	r.Handle("/metrics", metrics.Handler())

	addr := ":" + cfg.Port
	logger.Info("codecollab listening", zap.String("addr", addr))
	log.Fatal(http.ListenAndServe(addr, r))
}
