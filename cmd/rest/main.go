package main

import (
	"context"
	"log"

	"autoideas-be/internal/bootstrap"
	"autoideas-be/internal/config"
	"autoideas-be/internal/server"
	"autoideas-be/internal/tracer"
	"autoideas-be/pkg/database"
	"autoideas-be/pkg/events"

	"github.com/google/uuid"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Initialize Database
	gormDB, err := database.NewGormDBFromDSN(cfg.Database.Connection)
	if err != nil {
		log.Panicf("Unable to connect to GORM DB: %v", err)
	}

	// 3. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(gormDB, cfg)

	ctx := context.Background()

	// 4. Start Background Services
	go container.JobQueue.Run(ctx, func(err error) {
		container.Logger.Error("Queue", "Maintenance loop error", map[string]interface{}{"error": err.Error()})
	})

	go container.SessionStore.RunSweeper(ctx, cfg.Session.SweepInterval, cfg.Session.IdleTTL,
		func(expired []string) {
			container.Logger.Info("Sessions", "Expired idle sessions", map[string]interface{}{"count": len(expired)})
			for _, id := range expired {
				sess, err := container.SessionStore.Get(ctx, id)
				if err != nil {
					continue
				}
				if workshopID, err := uuid.Parse(sess.WorkshopID); err == nil {
					container.PublisherService.Publish(ctx, events.NewSessionExpired(workshopID, id))
				}
			}
		},
		func(err error) {
			container.Logger.Error("Sessions", "Sweep error", map[string]interface{}{"error": err.Error()})
		},
	)

	go func() {
		log.Println("Background: Starting worker pool...")
		container.WorkerService.Run(ctx)
	}()

	if err := container.EventRelay.Start(ctx); err != nil {
		log.Panicf("Unable to start event relay: %v", err)
	}

	// 5. Initialize Server
	srv := server.New(cfg, container)

	// 6. Run Server
	log.Fatal(srv.Run())
}
