package store_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sgupta/personabot/internal/config"
	"github.com/sgupta/personabot/internal/data/redisstore"
	"github.com/sgupta/personabot/internal/data/store"
	"github.com/sgupta/personabot/internal/domain/jobmodel"
)

func newHistoryStore(t *testing.T) *store.RedisHistoryStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return store.TestHistoryStore(redisstore.NewTestStore(client))
}

func TestRedisHistoryStore_Lifecycle(t *testing.T) {
	hs := newHistoryStore(t)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "history-trace")
	chatID := "chat_550"

	t.Run("Unknown chat is invalid", func(t *testing.T) {
		if hs.ValidateChatId(ctx, chatID) {
			t.Error("Expected unknown chat ID to be invalid")
		}
	})

	t.Run("InitNewChat makes the chat valid with empty history", func(t *testing.T) {
		if err := hs.InitNewChat(ctx, chatID); err != nil {
			t.Fatalf("InitNewChat failed: %v", err)
		}
		if !hs.ValidateChatId(ctx, chatID) {
			t.Error("Expected chat ID to be valid after init")
		}

		history, err := hs.GetHistory(ctx, chatID)
		if err != nil {
			t.Fatalf("GetHistory failed: %v", err)
		}
		if len(history) != 0 {
			t.Errorf("Expected empty history after init, got %d entries", len(history))
		}
	})

	t.Run("Saved turns come back rendered, oldest first", func(t *testing.T) {
		turns := []jobmodel.Payload{
			{Question: "who are you", Answer: "I run this site"},
			{Question: "what do you do", Answer: "I build backends"},
		}
		for _, turn := range turns {
			if err := hs.TrySaveTurn(ctx, chatID, turn); err != nil {
				t.Fatalf("TrySaveTurn failed: %v", err)
			}
		}

		history, err := hs.GetHistory(ctx, chatID)
		if err != nil {
			t.Fatalf("GetHistory failed: %v", err)
		}
		if len(history) != 2 {
			t.Fatalf("Expected 2 history entries, got %d", len(history))
		}
		if history[0] != store.RenderTurn(turns[0]) {
			t.Errorf("Order mismatch, got %q first", history[0])
		}
		if !strings.Contains(history[1], "what do you do") {
			t.Errorf("Expected second turn in history, got %q", history[1])
		}
	})

	t.Run("Saving to an unknown chat fails", func(t *testing.T) {
		if err := hs.TrySaveTurn(ctx, "ghost-chat", jobmodel.Payload{Question: "hi"}); err == nil {
			t.Error("Expected error when saving to unknown chat")
		}
	})
}

func TestRedisHistoryStore_TurnLimit(t *testing.T) {
	hs := newHistoryStore(t)
	ctx := context.WithValue(context.Background(), config.TRACE_ID_KEY, "limit-trace")
	chatID := "chat_limit"

	if err := hs.InitNewChat(ctx, chatID); err != nil {
		t.Fatalf("InitNewChat failed: %v", err)
	}

	total := config.HistoryTurnsLimit + 3
	for i := 0; i < total; i++ {
		turn := jobmodel.Payload{
			Question: fmt.Sprintf("question %d", i),
			Answer:   fmt.Sprintf("answer %d", i),
		}
		if err := hs.TrySaveTurn(ctx, chatID, turn); err != nil {
			t.Fatalf("TrySaveTurn failed: %v", err)
		}
	}

	history, err := hs.GetHistory(ctx, chatID)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(history) > config.HistoryTurnsLimit+1 {
		t.Errorf("History exceeds the turn limit: got %d entries", len(history))
	}
	// the oldest turns should have been dropped
	if strings.Contains(history[0], "question 0") {
		t.Errorf("Expected oldest turn to be dropped, got %q first", history[0])
	}
}
