package store

import (
	"context"
	"sync"

	"github.com/sgupta/personabot/internal/config"
	"github.com/sgupta/personabot/internal/domain/jobmodel"
	"github.com/sgupta/personabot/pkg/logging"
)

// In-memory fallbacks for when Redis is offline. Same interfaces, no TTLs.

var inMemLogger = logging.NewLogger("InMem Store")

type InMemoryJobStore struct {
	jobMutex *sync.RWMutex
	jobMap   map[string]jobmodel.Job
}

func InitInMemoryJobStore() *InMemoryJobStore {
	return &InMemoryJobStore{
		jobMutex: new(sync.RWMutex),
		jobMap:   make(map[string]jobmodel.Job),
	}
}

func (store *InMemoryJobStore) SaveJob(ctx context.Context, job jobmodel.Job) error {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	store.jobMap[job.Id] = job
	inMemLogger.Debug("Saved job to store", "jobId", job.Id)
	return nil
}

func (store *InMemoryJobStore) GetJob(ctx context.Context, jobId string) (jobmodel.Job, bool) {
	store.jobMutex.RLock()
	defer store.jobMutex.RUnlock()
	result, found := store.jobMap[jobId]
	return result, found
}

func (store *InMemoryJobStore) DeleteJob(ctx context.Context, jobId string) {
	store.jobMutex.Lock()
	defer store.jobMutex.Unlock()
	delete(store.jobMap, jobId)
}

type InMemoryHistoryStore struct {
	chatLock *sync.RWMutex
	chatMap  map[string][]jobmodel.Payload
}

func InitInMemoryHistoryStore() *InMemoryHistoryStore {
	return &InMemoryHistoryStore{
		chatLock: new(sync.RWMutex),
		chatMap:  make(map[string][]jobmodel.Payload),
	}
}

func (store *InMemoryHistoryStore) ValidateChatId(ctx context.Context, chatId string) bool {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()
	_, ok := store.chatMap[chatId]
	return ok
}

func (store *InMemoryHistoryStore) InitNewChat(ctx context.Context, chatId string) error {
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[chatId] = make([]jobmodel.Payload, 0)
	return nil
}

func (store *InMemoryHistoryStore) TrySaveTurn(ctx context.Context, chatId string, turn jobmodel.Payload) error {
	if !store.ValidateChatId(ctx, chatId) {
		return nil
	}
	store.chatLock.Lock()
	defer store.chatLock.Unlock()
	store.chatMap[chatId] = append(store.chatMap[chatId], turn)
	return nil
}

func (store *InMemoryHistoryStore) GetHistory(ctx context.Context, chatId string) ([]string, error) {
	store.chatLock.RLock()
	defer store.chatLock.RUnlock()

	turns := store.chatMap[chatId]
	start := 0
	if len(turns) > config.HistoryTurnsLimit {
		start = len(turns) - config.HistoryTurnsLimit
	}

	var rendered []string
	for _, turn := range turns[start:] {
		if turn.Question == "" && turn.Answer == "" {
			continue
		}
		rendered = append(rendered, RenderTurn(turn))
	}
	return rendered, nil
}
