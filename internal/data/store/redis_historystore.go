package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sgupta/personabot/internal/config"
	"github.com/sgupta/personabot/internal/data/redisstore"
	"github.com/sgupta/personabot/internal/domain/jobmodel"
	"github.com/sgupta/personabot/pkg/logging"
)

type RedisHistoryStore struct {
	store  *redisstore.Store
	logger *logging.Logger
}

func GetRedisHistoryStore(ctx context.Context, addr string) *RedisHistoryStore {
	inner := redisstore.GetRedisStore(ctx, addr, config.RedisMessageStore)
	if inner == nil {
		return nil
	}
	return &RedisHistoryStore{
		store:  inner,
		logger: logging.NewLogger("HistoryStore"),
	}
}

func TestHistoryStore(store *redisstore.Store) *RedisHistoryStore {
	return &RedisHistoryStore{
		store:  store,
		logger: logging.NewLogger("TestHistoryStore"),
	}
}

func (s *RedisHistoryStore) ValidateChatId(ctx context.Context, chatId string) bool {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	log.Debug("validating chatId")
	isFound, err := s.store.Exists(ctx, chatId)
	if s.store.IsNil(err) {
		return false
	} else if err != nil {
		log.Error("Failed to check if chatId exists", "err", err)
		return false
	}
	return isFound
}

func (s *RedisHistoryStore) InitNewChat(ctx context.Context, chatId string) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	log.Debug("Initializing new chat")
	if err := s.store.Del(ctx, chatId); err != nil && !s.store.IsNil(err) {
		log.Error("Error clearing chat key", "error", err)
	}
	return s.saveTurn(ctx, chatId, jobmodel.Payload{})
}

func (s *RedisHistoryStore) TrySaveTurn(ctx context.Context, chatId string, turn jobmodel.Payload) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	if !s.ValidateChatId(ctx, chatId) {
		err := errors.New("invalid chat id")
		log.Error("Failed validation before saving", "err", err)
		return err
	}
	return s.saveTurn(ctx, chatId, turn)
}

func (s *RedisHistoryStore) saveTurn(ctx context.Context, chatId string, turn jobmodel.Payload) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	data, err := json.Marshal(turn)
	if err != nil {
		log.Error("Error marshalling turn", "error", err)
		return err
	}
	if err := s.store.ListPush(ctx, chatId, data); err != nil {
		log.Error("error saving turn", "error", err)
		return err
	}
	if err := s.store.ListExpire(ctx, chatId, config.RedisMessageStoreTTL); err != nil {
		log.Error("error refreshing chat TTL", "error", err)
	}
	log.Debug("Saved turn successfully")
	return nil
}

// GetHistory renders the most recent turns as prompt-ready lines, oldest
// first. The sentinel turn written by InitNewChat is skipped.
func (s *RedisHistoryStore) GetHistory(ctx context.Context, chatId string) ([]string, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "chat Id", chatId)
	log.Debug("Getting chat history")

	raw, err := s.store.ListTail(ctx, chatId, config.HistoryTurnsLimit+1)
	if err != nil {
		log.Error("Error getting history", "error", err)
		return nil, err
	}

	var rendered []string
	for _, entry := range raw {
		var turn jobmodel.Payload
		if err := json.Unmarshal([]byte(entry), &turn); err != nil {
			log.Error("Skipping malformed history entry", "error", err)
			continue
		}
		if turn.Question == "" && turn.Answer == "" {
			continue
		}
		rendered = append(rendered, RenderTurn(turn))
	}
	return rendered, nil
}

// RenderTurn formats one past exchange the way the persona prompt expects it.
func RenderTurn(turn jobmodel.Payload) string {
	return fmt.Sprintf("Question: %s\nAnswer: %s", turn.Question, turn.Answer)
}
