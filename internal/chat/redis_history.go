package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/skanerxe/nutrition-helper/internal/domain"
)

// Conversations of inactive users expire automatically.
const conversationTTL = 24 * time.Hour

// RedisManager keeps conversation history in Redis, so transcripts survive
// process restarts and can be shared between instances.
type RedisManager struct {
	client *redis.Client
}

// NewRedisManager creates a Redis-based history manager
func NewRedisManager(redisHost, redisPort string) (*RedisManager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%s", redisHost, redisPort),
		Password:     "", // no password
		DB:           0,  // default DB
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisManager{client: client}, nil
}

func conversationKey(userEmail string) string {
	return fmt.Sprintf("chat:%s:history", userEmail)
}

// Append adds a message to the user's conversation
func (m *RedisManager) Append(ctx context.Context, userEmail string, msg domain.ChatMessage) error {
	conversation, err := m.Messages(ctx, userEmail)
	if err != nil {
		return err
	}
	conversation = append(conversation, msg)

	data, err := json.Marshal(conversation)
	if err != nil {
		return fmt.Errorf("failed to marshal conversation: %w", err)
	}

	if err := m.client.Set(ctx, conversationKey(userEmail), data, conversationTTL).Err(); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

// Messages returns the user's conversation
func (m *RedisManager) Messages(ctx context.Context, userEmail string) ([]domain.ChatMessage, error) {
	result := m.client.Get(ctx, conversationKey(userEmail))
	if result.Err() == redis.Nil {
		return []domain.ChatMessage{}, nil
	}
	if result.Err() != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", result.Err())
	}

	var conversation []domain.ChatMessage
	if err := json.Unmarshal([]byte(result.Val()), &conversation); err != nil {
		return nil, fmt.Errorf("failed to unmarshal conversation: %w", err)
	}
	return conversation, nil
}

// Clear drops the user's conversation
func (m *RedisManager) Clear(ctx context.Context, userEmail string) error {
	if err := m.client.Del(ctx, conversationKey(userEmail)).Err(); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (m *RedisManager) Close() error {
	return m.client.Close()
}
