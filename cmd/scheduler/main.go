package main

import (
	"log"

	"github.com/hibiken/asynq"

	"article-reels/internal/config"
	"article-reels/pkg/tasks"
)

// CommitSHA is set at build time via ldflags
var CommitSHA = "unknown"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if cfg.ScriptSweepInterval == "" {
		log.Println("SCRIPT_SWEEP_INTERVAL is empty, nothing to schedule")
		return
	}

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		&asynq.SchedulerOpts{},
	)

	task, err := tasks.NewSweepScriptingTask()
	if err != nil {
		log.Fatalf("could not create task: %v", err)
	}

	_, err = scheduler.Register(cfg.ScriptSweepInterval, task)
	if err != nil {
		log.Fatalf("could not register task: %v", err)
	}

	log.Printf("Scheduler starting with sweep %q (commit: %s)", cfg.ScriptSweepInterval, CommitSHA)
	if err := scheduler.Run(); err != nil {
		log.Fatalf("could not run scheduler: %v", err)
	}
}
