package bootstrap

import (
	"context"
	"log"
	"os"
	"time"

	"influencer-scout-be/internal/config"
	"influencer-scout-be/internal/controller"
	"influencer-scout-be/internal/handler"
	"influencer-scout-be/internal/pkg/logger"
	"influencer-scout-be/internal/repository/memory"
	"influencer-scout-be/internal/repository/unitofwork"
	"influencer-scout-be/internal/service"
	"influencer-scout-be/internal/websocket"
	"influencer-scout-be/pkg/dialogue"
	"influencer-scout-be/pkg/grounding"
	"influencer-scout-be/pkg/keywords"
	"influencer-scout-be/pkg/llm/factory"
	"influencer-scout-be/pkg/pipeline"
	"influencer-scout-be/pkg/scraper"
	"influencer-scout-be/pkg/transform"

	pktNats "influencer-scout-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ProcessSummaryTopic is the in-process bus topic that hands concluded
// sessions to the pipeline consumer.
const ProcessSummaryTopic = "PROCESS_SUMMARY"

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	PipelineController controller.IPipelineController
	DatasetController  controller.IDatasetController

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	PipelineEventHandler *handler.PipelineEventHandler
	WebSocketHub         *websocket.Hub

	// Shared services, reused by the worker binary
	PipelineService service.IPipelineService
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

	// 3. LLM provider
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL(cfg),
		cfg.Keys.Groq,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// In-memory live session storage
	sessionRepo := memory.NewSessionRepository(time.Duration(cfg.Chat.SessionTTLMinutes) * time.Minute)

	// 4. Infrastructure
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
	wsLogger := logger.NewIsolatedLogger("logs/pipeline_events.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Domain components
	domainLog := log.New(os.Stdout, "", log.LstdFlags)

	machine := dialogue.NewMachine(llmProvider, dialogue.Config{
		Phrases: dialogue.PhraseSet{
			Greetings: cfg.Chat.GreetingPhrases,
			Closings:  cfg.Chat.ClosingPhrases,
		},
		MaxHistoryTurns: cfg.Chat.MaxHistoryTurns,
	}, domainLog)

	extractor := keywords.NewExtractor(llmProvider, domainLog)

	apifyClient := scraper.NewClient(cfg.Keys.Apify, "", cfg.Scraper.WaitForFinish)
	retriever := scraper.NewAdapter(apifyClient, scraper.Config{
		ActorID:             cfg.Scraper.ActorID,
		MaxProfilesPerQuery: cfg.Scraper.MaxProfilesPerQuery,
		ResultsPerPage:      cfg.Scraper.ResultsPerPage,
	}, domainLog)

	engine := transform.NewEngine(transform.DefaultConfig())
	renderer := grounding.NewRenderer()

	orchestrator := pipeline.NewOrchestrator(extractor, retriever, engine, renderer, domainLog)

	// 6. Services
	publisherService := service.NewPublisherService(ProcessSummaryTopic, pubSub)

	pipelineService := service.NewPipelineService(
		uowFactory,
		sessionRepo,
		orchestrator,
		wsHub,
		natsPub,
		rdb,
		sysLogger,
	)

	dialogueService := service.NewDialogueService(
		uowFactory,
		sessionRepo,
		machine,
		publisherService,
		natsPub,
		rdb,
		sysLogger,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		ProcessSummaryTopic,
		pipelineService,
	)

	// 7. Controllers & handlers
	pipelineEventHandler := handler.NewPipelineEventHandler(wsHub, wsLogger)

	return &Container{
		ChatController:       controller.NewChatController(dialogueService),
		PipelineController:   controller.NewPipelineController(pipelineService),
		DatasetController:    controller.NewDatasetController(pipelineService),
		ConsumerService:      consumerService,
		PipelineEventHandler: pipelineEventHandler,
		WebSocketHub:         wsHub,
		PipelineService:      pipelineService,
	}
}

func llmBaseURL(cfg *config.Config) string {
	if cfg.Ai.LLMProvider == "ollama" {
		return cfg.Ai.OllamaBaseURL
	}
	return cfg.Ai.GroqBaseURL
}
