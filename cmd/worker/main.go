package main

import (
	"log"

	"github.com/hibiken/asynq"

	"article-reels/internal/adapters"
	"article-reels/internal/config"
	"article-reels/internal/db"
	"article-reels/internal/pipeline"
	"article-reels/internal/storage"
	"article-reels/internal/worker"
	"article-reels/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db.InitDB(cfg.DatabaseURL)
	store := db.NewStore(db.DB)

	client := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer client.Close()

	services := adapters.NewClient(adapters.Endpoints{
		Extract:    cfg.Services.ExtractURL,
		Script:     cfg.Services.ScriptURL,
		ClipSearch: cfg.Services.ClipSearchURL,
		Voice:      cfg.Services.VoiceURL,
	}, cfg.Services.Timeout,
		adapters.WithAPIKey(cfg.Services.APIKey),
		adapters.WithClipRate(cfg.Services.ClipsPerSecond),
	)
	audio, err := storage.New(cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to set up audio storage: %v", err)
	}
	ctl := pipeline.New(pipeline.Deps{
		Store:     store,
		Extractor: services,
		Scripts:   services,
		Clips:     services,
		Voice:     services,
		Audio:     audio,
		Tasks:     client,
	})

	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		asynq.Config{
			Concurrency: 1, // One script generation at a time against the language model
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	taskHandler := worker.NewTaskHandler(client, ctl, store)

	mux.HandleFunc(tasks.TypeGenerateScript, taskHandler.HandleGenerateScriptTask)
	mux.HandleFunc(tasks.TypeSweepScripting, taskHandler.HandleSweepScriptingTask)

	log.Printf("Worker starting (commit: %s)", CommitSHA)
	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
