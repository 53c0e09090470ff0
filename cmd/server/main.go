package main

import (
	"log"
	"net/http"

	"github.com/hibiken/asynq"
	"golang.org/x/time/rate"

	"article-reels/internal/adapters"
	"article-reels/internal/config"
	"article-reels/internal/db"
	"article-reels/internal/handlers"
	"article-reels/internal/middleware"
	"article-reels/internal/pipeline"
	"article-reels/internal/storage"
	"article-reels/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

type App struct {
	cfg         config.Config
	store       pipeline.Store
	asynqClient tasks.TaskEnqueuer
}

func (a *App) controller() (*pipeline.Controller, error) {
	client := adapters.NewClient(adapters.Endpoints{
		Extract:    a.cfg.Services.ExtractURL,
		Script:     a.cfg.Services.ScriptURL,
		ClipSearch: a.cfg.Services.ClipSearchURL,
		Voice:      a.cfg.Services.VoiceURL,
	}, a.cfg.Services.Timeout,
		adapters.WithAPIKey(a.cfg.Services.APIKey),
		adapters.WithClipRate(a.cfg.Services.ClipsPerSecond),
	)

	audio, err := storage.New(a.cfg.Storage)
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Deps{
		Store:     a.store,
		Extractor: client,
		Scripts:   client,
		Clips:     client,
		Voice:     client,
		Audio:     audio,
		Tasks:     a.asynqClient,
	}), nil
}

func (a *App) handler() (http.Handler, error) {
	ctl, err := a.controller()
	if err != nil {
		return nil, err
	}
	proxies, err := middleware.ParseTrustedProxies(a.cfg.Limits.TrustedProxies)
	if err != nil {
		return nil, err
	}
	limiter := middleware.NewRateLimiterMiddleware(rate.Limit(a.cfg.Limits.RequestsPerSecond), a.cfg.Limits.Burst,
		middleware.WithTrustedProxies(proxies))
	return handlers.New(ctl, a.cfg.PublicURL).Router(middleware.Logging, limiter.Middleware), nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db.InitDB(cfg.DatabaseURL)

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer client.Close()

	app := &App{cfg: cfg, store: db.NewStore(db.DB), asynqClient: client}
	h, err := app.handler()
	if err != nil {
		log.Fatalf("Failed to build server: %v", err)
	}

	log.Printf("Starting server on :%s (commit: %s)\n", cfg.Port, CommitSHA)
	if err := http.ListenAndServe(":"+cfg.Port, h); err != nil {
		log.Fatal(err)
	}
}
