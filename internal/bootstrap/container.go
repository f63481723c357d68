package bootstrap

import (
	"context"
	"log"

	"pivot-graph-be/internal/config"
	"pivot-graph-be/internal/controller"
	"pivot-graph-be/internal/handler"
	"pivot-graph-be/internal/metrics"
	"pivot-graph-be/internal/pkg/logger"
	"pivot-graph-be/internal/repository/loader"
	"pivot-graph-be/internal/repository/memory"
	"pivot-graph-be/internal/repository/unitofwork"
	"pivot-graph-be/internal/routes"
	"pivot-graph-be/internal/service"
	"pivot-graph-be/internal/websocket"
	"pivot-graph-be/pkg/blobstore"
	pktNats "pivot-graph-be/pkg/nats"
	"pivot-graph-be/pkg/pivot/shaper"
	"pivot-graph-be/pkg/pivot/template"
	"pivot-graph-be/pkg/searchclient"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	GraphController controller.IGraphController

	// Background Services (Exposed for main.go to run)
	EventRelayService service.IEventRelayService
	SessionService    service.ISessionService

	// WebSockets
	SessionSocketHandler *handler.SessionSocketHandler
	WebSocketHub         *websocket.Hub

	Metrics *metrics.Metrics
	Logger  logger.ILogger

	closers []func()
}

// NewContainer wires the application. A nil db keeps investigations, pivots
// and users in process memory.
func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	routeMetrics := metrics.New()

	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	} else {
		log.Println("[INFO] No database configured, entities are kept in memory")
		uowFactory = memory.NewRepositoryFactory()
	}
	loaders := loader.NewGraphLoaderFactory(uowFactory)

	c := &Container{Metrics: routeMetrics, Logger: sysLogger}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)
	c.closers = append(c.closers, func() { pubSub.Close() })

	publishers := []service.IPublisherService{
		service.NewWatermillEventPublisher(pubSub, service.GraphEventsTopic),
	}

	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		publishers = append(publishers, service.NewNatsEventPublisher(natsPub))
		c.closers = append(c.closers, natsPub.Close)
	}
	publisher := service.NewFanoutPublisher(sysLogger, publishers...)

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
		log.Printf("[WARN] Failed to connect to Redis: %v. WebSocket deliveries stay on this instance", err)
		rdb.Close()
		rdb = nil
	} else {
		c.closers = append(c.closers, func() { rdb.Close() })
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger(cfg.App.SocketLogFilePath)
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// Blob store
	var backend blobstore.Backend
	if cfg.Blob.Bucket != "" {
		gcs, err := blobstore.NewGCSBackend(context.Background(), cfg.Blob.Bucket, cfg.Blob.CredentialsFile)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize blob store: %v", err)
		}
		backend = gcs
		c.closers = append(c.closers, func() { gcs.Close() })
	} else {
		log.Println("[INFO] No blob bucket configured, datasets are kept in memory")
		backend = blobstore.NewMemoryBackend()
	}
	uploader := service.NewGraphUploadService(blobstore.New(backend), sysLogger)

	// 3. Services
	executors := []service.SearchExecutor{
		searchclient.NewSplunkClient(cfg.Search.SplunkURL, cfg.Search.SplunkToken),
		searchclient.NewElasticsearchClient(cfg.Search.ElasticsearchURL),
		searchclient.NewHTTPClient(),
	}

	investigationService := service.NewInvestigationService(loaders, publisher, sysLogger)
	searchPivotService := service.NewSearchPivotService(
		loaders,
		template.Default(),
		executors,
		shaper.NewFieldShaper(),
		uploader,
		cfg.App.ViewerURL,
		publisher,
		sysLogger,
	)

	sessionRepo := memory.NewSessionRepository(cfg.App.SessionTTL)
	sessionRepo.OnEvicted(func(sessionID string) {
		routeMetrics.SetActiveSessions(sessionRepo.Count())
	})
	sessionService := service.NewSessionService(
		sessionRepo,
		loaders,
		investigationService,
		cfg.App.Title,
		cfg.App.ViewerURL,
		sysLogger,
	)

	c.EventRelayService = service.NewEventRelayService(pubSub, service.GraphEventsTopic, wsHub, wsLogger)
	c.SessionService = sessionService
	c.SessionSocketHandler = handler.NewSessionSocketHandler(sessionService, publisher, wsHub, wsLogger)
	c.WebSocketHub = wsHub

	// 4. Controllers
	c.GraphController = controller.NewGraphController(
		sessionService,
		routes.Deps{Investigations: investigationService, Search: searchPivotService},
		wsHub,
		routeMetrics,
		sysLogger,
	)

	return c
}

// Close releases the connections opened by NewContainer.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}
