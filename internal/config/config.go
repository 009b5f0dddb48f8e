package config

import (
	"errors"
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	IS_PROD        = false
	LOG_LEVEL_PROD = slog.LevelInfo
	TRACE_ID_KEY   = "traceId"

	RATE_LIMIT_PER_SECOND       = 2
	BURST_RATE_LIMIT_PER_SECOND = 5

	//semantic cache
	CacheSimilarityCutoff = 0.97

	EmbeddingOutputDimensionality int32 = 1536
	KnowledgeCollectionName             = "persona-knowledge"
	SemanticCacheCollectionName         = "semantic-cache"

	//worker pool
	RequestsPerNewWorkerCount int64 = 10
	MaxWorkerCount            int64 = 10
	MinWorkerCount            int64 = 1
	IdleWorkerTimeout               = 1 * time.Minute

	//serverTimeouts
	ReadTimeout            = 5 * time.Second
	WriteTimeout           = 30 * time.Second
	IdleTimeout            = 120 * time.Second
	ShutdownContextTimeout = 10 * time.Second

	//job requests buffer limit
	BufferLimit = 100

	//vectorDB
	QdrantGrpcPort         = 6334
	QdrantUseTLS           = false
	QdrantPoolSize         = 1
	QdrantKeepAliveTimeout = 30 * time.Second

	//models
	GeminiModelName      = "gemini-2.5-flash-lite-preview-09-2025"
	GoogleEmbeddingModel = "gemini-embedding-001"
	OpenAICompatBaseURL  = "https://generativelanguage.googleapis.com/v1beta/openai/"
	OpenAICompatModel    = "gemini-2.5-flash-lite-preview-09-2025"

	//retrieval
	SearchTopK        = 5
	HistoryTurnsLimit = 5
	MaxToolLoopRounds = 5

	ModelTemperature float32 = 0.7

	MaxIdleConns        = 50
	MaxIdleConnsPerHost = 25
	IdleConnTimeout     = 60 * time.Second

	//redis has 16 DBs we can use
	RedisJobStore     = 0
	RedisMessageStore = 1

	RedisPassword        = ""
	RedisJobStoreTTL     = 24 * time.Hour
	RedisMessageStoreTTL = 24 * time.Hour

	//uploaded documents are staged here until a worker ingests them
	StagedUploadsDir = "staged_uploads"

	//notifications
	PushoverEndpoint = "https://api.pushover.net/1/messages.json"
	PushoverTimeout  = 10 * time.Second

	//server defaults - Spaces and most container hosts route to this port
	DefaultPort        = 7860
	DefaultPersonaName = "Shivang Gupta"
	DefaultProfileDir  = "me"
	DefaultRedisAddr   = "127.0.0.1:6379"
	DefaultQdrantHost  = "127.0.0.1"
)

// ErrMissingAPIKey means the server cannot talk to Gemini and must not start.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")

// Settings holds everything read from the environment. Constants above stay
// constants; Settings carries only what deployment targets need to override.
type Settings struct {
	ListenAddr string
	Port       int

	GeminiAPIKey string
	LLMProvider  string // "gemini" or "openai"

	PushoverToken string
	PushoverUser  string

	PersonaName string
	ProfileDir  string

	RedisAddr  string
	QdrantHost string
	QdrantPort int

	AuthToken string
}

// Load reads the environment. The only hard requirement is GEMINI_API_KEY;
// everything else has a default that works for local development.
func Load() (Settings, error) {
	s := Settings{
		Port:          intEnv("PORT", DefaultPort),
		GeminiAPIKey:  os.Getenv("GEMINI_API_KEY"),
		LLMProvider:   stringEnv("LLM_PROVIDER", "gemini"),
		PushoverToken: os.Getenv("PUSHOVER_TOKEN"),
		PushoverUser:  os.Getenv("PUSHOVER_USER"),
		PersonaName:   stringEnv("PERSONA_NAME", DefaultPersonaName),
		ProfileDir:    stringEnv("PROFILE_DIR", DefaultProfileDir),
		RedisAddr:     stringEnv("REDIS_ADDR", DefaultRedisAddr),
		QdrantHost:    stringEnv("QDRANT_HOST", DefaultQdrantHost),
		QdrantPort:    intEnv("QDRANT_PORT", QdrantGrpcPort),
		AuthToken:     os.Getenv("AUTH_TOKEN"),
	}

	//bind the wildcard address so the server is reachable from outside a container
	s.ListenAddr = "0.0.0.0:" + strconv.Itoa(s.Port)

	if s.GeminiAPIKey == "" {
		return s, ErrMissingAPIKey
	}
	return s, nil
}

// NotifierEnabled reports whether both Pushover credentials are present.
func (s Settings) NotifierEnabled() bool {
	return s.PushoverToken != "" && s.PushoverUser != ""
}

func stringEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
