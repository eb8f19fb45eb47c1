package bootstrap

import (
	"context"
	"fmt"

	"shate-rag-be/internal/config"
	"shate-rag-be/internal/controller"
	"shate-rag-be/internal/pkg/logger"
	"shate-rag-be/internal/repository/unitofwork"
	"shate-rag-be/internal/service"
	"shate-rag-be/internal/websocket"

	pktNats "shate-rag-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

const chatAnsweredTopic = "chat.answered"

type Container struct {
	// Controllers
	ChatController   controller.IChatController
	SystemController controller.ISystemController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	WebSocketHub *websocket.Hub

	infra   *Infrastructure
	natsPub *pktNats.Publisher
	pubSub  *gochannel.GoChannel
	cancel  context.CancelFunc
}

func NewContainer(db *gorm.DB, cfg *config.Config) (*Container, error) {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	ctx, cancel := context.WithCancel(context.Background())

	infra, err := NewInfrastructure(ctx, cfg, db, sysLogger)
	if err != nil {
		cancel()
		return nil, err
	}

	assistant, err := BuildAssistant(ctx, cfg, infra)
	if err != nil {
		cancel()
		infra.Close(context.Background())
		return nil, fmt.Errorf("build assistant: %w", err)
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Services
	publisherService := service.NewPublisherService(chatAnsweredTopic, pubSub)
	chatService := service.NewChatService(assistant, publisherService, cfg.App.RequestTimeout, sysLogger)

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(chatService, infra.Redis, wsLogger)
	go wsHub.Run(ctx)

	// NATS
	var natsPub *pktNats.Publisher
	var eventPub service.EventPublisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher", map[string]interface{}{"error": err.Error()})
		} else {
			eventPub = natsPub
		}
	}

	var uowFactory unitofwork.RepositoryFactory
	if db != nil {
		uowFactory = unitofwork.NewRepositoryFactory(db)
	}

	consumerService := service.NewConsumerService(
		pubSub,
		chatAnsweredTopic,
		uowFactory,
		eventPub,
		wsHub,
		sysLogger,
	)

	var pinger service.Pinger
	var schema service.SchemaProvider
	if infra.Store != nil {
		pinger = infra.Store
		schema = infra.Schema
	}
	systemService := service.NewSystemService(
		cfg.App.Name,
		pinger,
		schema,
		cfg.Mongo.AllowedCollections,
		uowFactory,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		ChatController:   controller.NewChatController(chatService),
		SystemController: controller.NewSystemController(systemService),
		ConsumerService:  consumerService,
		WebSocketHub:     wsHub,
		infra:            infra,
		natsPub:          natsPub,
		pubSub:           pubSub,
		cancel:           cancel,
	}, nil
}

func (c *Container) Close() {
	c.cancel()
	_ = c.pubSub.Close()
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	c.infra.Close(context.Background())
}
