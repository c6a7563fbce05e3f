package main

import (
	"context"
	"log"

	"github.com/Renal37/go-custody-workflow/internal/database"
	router "github.com/Renal37/go-custody-workflow/internal/http"
	"github.com/Renal37/go-custody-workflow/internal/logger"
	"github.com/Renal37/go-custody-workflow/internal/services"
	"github.com/Renal37/go-custody-workflow/internal/utils"
)

func main() {
	ctx := context.Background()
	config := NewConfig()

	if err := logger.Initialize(config.logLevel, config.env); err != nil {
		log.Fatalf("Logger wasn't initialized due to %s", err)
	}

	db, err := database.New(ctx, config.dsn)

	if err != nil {
		log.Fatalf("Database wasn't initialized due to %s", err)
	}

	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Migrations weren't run due to %s", err)
	}

	log.Printf("Running server on %s\n", config.endpoint)

	pipelineEngine := services.NewPipelineEngine(config.queueWait, config.requiredConfirmations)
	registryService := services.NewRegistryService(db, pipelineEngine)
	workflowService := services.NewWorkflowService(db, registryService, pipelineEngine)

	jobQueueService := services.NewJobQueueService(ctx, 100, 2)
	scheduler := services.NewPipelineScheduler(db, workflowService, jobQueueService, config.sweepInterval)

	if err := scheduler.Start(ctx); err != nil {
		log.Fatalf("Starting pipeline scheduler was failed due to %s", err)
	}

	utils.HandleTerminationProcess(func() {
		jobQueueService.Shutdown()
		db.Close()
	})

	router.New(
		router.Config{Endpoint: config.endpoint},
		services.NewAuthService(db),
		services.NewJWTService(config.authSecretKey),
		workflowService,
		registryService,
	).Run()
}
