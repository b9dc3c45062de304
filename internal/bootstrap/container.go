package bootstrap

import (
	"context"
	"log"

	"autoideas-be/internal/config"
	"autoideas-be/internal/controller"
	"autoideas-be/internal/pkg/logger"
	"autoideas-be/internal/repository/unitofwork"
	"autoideas-be/internal/service"
	"autoideas-be/internal/websocket"
	"autoideas-be/pkg/board"
	"autoideas-be/pkg/clustering"
	"autoideas-be/pkg/embedding"
	"autoideas-be/pkg/enrich"
	"autoideas-be/pkg/queue"
	"autoideas-be/pkg/session"

	pktNats "autoideas-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const eventsTopic = "pipeline_events"

type Container struct {
	// Controllers
	IngestController   controller.IIngestController
	WorkshopController controller.IWorkshopController

	// Background services (exposed for main.go to run)
	WorkerService    service.IWorkerService
	EventRelay       service.IEventRelayService
	SessionStore     *session.Store
	JobQueue         *queue.RedisQueue
	PublisherService service.IPublisherService

	// WebSockets
	WebSocketHub *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/events.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 4. Pipeline components
	jobQueue := queue.NewRedisQueue(rdb, cfg.Queue.Name, cfg.Queue.MaxAttempts, cfg.Queue.VisibilityTimeout, cfg.Queue.RetryBaseDelay)
	sessionStore := session.NewStore(rdb)

	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Clustering.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Clustering.OllamaBaseURL,
			cfg.Clustering.OllamaModel,
			cfg.Clustering.EmbedTimeout,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Clustering.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Clustering.GeminiApiKey, cfg.Clustering.EmbedTimeout)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	themeStore := service.NewThemeStore(uowFactory)
	engine := clustering.NewEngine(embeddingProvider, themeStore, cfg.Clustering.DefaultThreshold, cfg.Clustering.CatchAllLabel)

	boardClient := board.NewClient(cfg.Board.BaseURL, cfg.Board.ApiKey, cfg.Board.RequestTimeout)
	poster := board.NewPoster(boardClient, rdb, cfg.Board.MaxElapsed)

	// 5. Services
	publisherService := service.NewPublisherService(eventsTopic, pubSub, sysLogger)
	eventRelay := service.NewEventRelayService(pubSub, eventsTopic, wsHub, natsPub, sysLogger)

	ingestService := service.NewIngestService(uowFactory, jobQueue, publisherService)
	workshopService := service.NewWorkshopService(uowFactory)
	workerService := service.NewWorkerService(
		jobQueue,
		uowFactory,
		enrich.NewProcessor(),
		engine,
		poster,
		sessionStore,
		publisherService,
		sysLogger,
		cfg.Queue.WorkerCount,
	)

	// 6. Controllers
	return &Container{
		IngestController:   controller.NewIngestController(ingestService, cfg.App.ApiKey),
		WorkshopController: controller.NewWorkshopController(workshopService),

		WorkerService:    workerService,
		EventRelay:       eventRelay,
		SessionStore:     sessionStore,
		JobQueue:         jobQueue,
		PublisherService: publisherService,

		WebSocketHub: wsHub,
		Logger:       sysLogger,
	}
}
