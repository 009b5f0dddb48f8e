// @title           Persona Chat API
// @version         1.0
// @description     Asynchronous persona chatbot with RAG over personal profile documents.
// @termsOfService  http://swagger.io/terms/

// @contact.name    Shivang Gupta
// @contact.url
// @contact.email

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:7860
// @BasePath  /
// @schemes   http https
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/sgupta/personabot/internal/config"
	"github.com/sgupta/personabot/internal/data/store"
	"github.com/sgupta/personabot/internal/domain/jobmodel"
	"github.com/sgupta/personabot/internal/handlers"
	"github.com/sgupta/personabot/internal/job"
	"github.com/sgupta/personabot/internal/middleware"
	"github.com/sgupta/personabot/internal/notify"
	"github.com/sgupta/personabot/internal/profile"
	"github.com/sgupta/personabot/internal/rag"
	"github.com/sgupta/personabot/internal/rag/embedding/googleembed"
	"github.com/sgupta/personabot/internal/rag/llm"
	"github.com/sgupta/personabot/internal/rag/llm/gemini"
	"github.com/sgupta/personabot/internal/rag/llm/openaicompat"
	"github.com/sgupta/personabot/internal/rag/vectordb"
	"github.com/sgupta/personabot/internal/rag/vectordb/qdrantdb"
	"github.com/sgupta/personabot/internal/server"
	"github.com/sgupta/personabot/internal/worker"
	"github.com/sgupta/personabot/pkg/logging"
)

var (
	requestCount      int64
	stopWorkerChannel chan bool
	workerWaitGroup   sync.WaitGroup
)

func main() {
	//.env is optional, real deployments set the environment directly
	_ = godotenv.Load()

	logging.Init()
	var logger = logging.NewLogger("main")

	settings, err := config.Load()
	if err != nil {
		logger.Error("Configuration error", "err", err)
		os.Exit(1)
	}

	//init buffered job channel
	jobChannel := make(chan jobmodel.Job, config.BufferLimit)
	dispatcherChannel := make(chan bool, 1)
	stopWorkerChannel = make(chan bool, 1)

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	//init job service and stores
	serviceConfig := job.ServiceConfig{
		JobChannel:        jobChannel,
		RequestCount:      requestCount,
		DispatcherChannel: dispatcherChannel,
	}
	jobStore := store.GetRedisJobStore(serviceContext, settings.RedisAddr)
	historyStore := store.GetRedisHistoryStore(serviceContext, settings.RedisAddr)
	if jobStore == nil || historyStore == nil {
		logger.Error("Redis stores are offline, falling back to in-memory stores")
		serviceConfig.JobStore = store.InitInMemoryJobStore()
		serviceConfig.HistoryStore = store.InitInMemoryHistoryStore()
	} else {
		serviceConfig.JobStore = jobStore
		serviceConfig.HistoryStore = historyStore
	}
	logger.Info("Starting job service")
	service := job.InitJobService(serviceConfig)

	//persona profile: summary text plus the documents to ingest at startup
	personaProfile, err := profile.Load(settings.ProfileDir)
	if err != nil {
		logger.Error("Failed to load profile", "dir", settings.ProfileDir, "err", err)
	}
	persona := llm.Persona{Name: settings.PersonaName, Summary: personaProfile.Summary}

	var notifier notify.Notifier
	if settings.NotifierEnabled() {
		notifier = notify.NewPushoverNotifier(settings.PushoverToken, settings.PushoverUser)
	} else {
		logger.Warn("Pushover credentials not set, notifications are disabled")
		notifier = notify.NewNoopNotifier()
	}
	tools := llm.PersonaTools(notifier)

	vectorDB := qdrantClient(serviceContext, settings)
	embeddingService := googleembed.GetGoogleEmbeddingClient(serviceContext, config.GoogleEmbeddingModel, settings.GeminiAPIKey)
	llmProvider := llmClient(serviceContext, settings, persona, tools)

	if vectorDB == nil || embeddingService == nil || llmProvider == nil {
		logger.Error("One or more external services failed to initialize. Shutting down.")
		logger.Debug("Available services", "VectorDB", vectorDB != nil, "EmbeddingService", embeddingService != nil, "LLMProvider", llmProvider != nil)
		os.Exit(1)
	}

	ragService := rag.NewService(vectorDB, llmProvider, embeddingService)

	handlers.InitJobHandler(service)
	middleware.Init(settings.AuthToken)

	//init worker pool
	worker.InitServices(service, ragService)
	worker.InitWorkerPool(stopWorkerChannel, &workerWaitGroup)

	ingestProfileDocuments(personaProfile, logger)

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	shutdownParams := server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		WorkerStop:       stopWorkerChannel,
		Group:            &workerWaitGroup,
		CloseServices:    closeExternalServices,
	}
	go server.ShutDownHandler(shutdownParams)
	go server.CreateServer(settings.ListenAddr)

	<-stopExecution
	logger.Info("Server stopped")
}

func qdrantClient(ctx context.Context, settings config.Settings) vectordb.DataProcessor {
	client := qdrantdb.GetQdrantClient(ctx, settings.QdrantHost, settings.QdrantPort)
	if client == nil {
		return nil
	}
	return client
}

func llmClient(ctx context.Context, settings config.Settings, persona llm.Persona, tools []llm.Tool) llm.Provider {
	if settings.LLMProvider == "openai" {
		return openaicompat.GetOpenAICompatClient(ctx, config.OpenAICompatBaseURL, config.OpenAICompatModel, settings.GeminiAPIKey, persona, tools)
	}
	return gemini.GetGeminiClient(ctx, config.GeminiModelName, settings.GeminiAPIKey, persona, tools)
}

// ingestProfileDocuments queues every ingestible file from the profile
// directory so the knowledge collection is populated without a manual
// /ingest call.
func ingestProfileDocuments(p profile.Profile, logger *logging.Logger) {
	for _, docPath := range p.Documents {
		traceId := uuid.New().String()
		id := handlers.EnqueueProfileDocument(filepath.Base(docPath), docPath, traceId)
		logger.Info("Queued profile document", "document", docPath, "jobId", id)
	}
}
