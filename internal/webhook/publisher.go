package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shenikar/crowd_safety_engine/internal/models"
)

const (
	webhookQueueKey = "webhook_events"
)

// EventType - тип уведомления полевых команд
type EventType string

const (
	EventIncidentChanged EventType = "incident.changed"
	EventBroadcast       EventType = "admin.broadcast"
	// EventResync - поток прервался, получатель должен перечитать открытые инциденты
	EventResync EventType = "stream.resync"
)

// WebhookEvent - структура для данных вебхука
type WebhookEvent struct {
	ID        uuid.UUID            `json:"id"`
	Type      EventType            `json:"type"`
	Change    *models.ChangeRecord `json:"change,omitempty"`
	Broadcast *models.Broadcast    `json:"broadcast,omitempty"`
	Timestamp time.Time            `json:"timestamp"`
}

// WebhookPublisher - интерфейс для публикации вебхуков
type WebhookPublisher interface {
	Publish(ctx context.Context, event WebhookEvent) error
}

// RedisWebhookPublisher - реализация WebhookPublisher, использующая Redis
type RedisWebhookPublisher struct {
	redisClient *redis.Client
}

// NewRedisWebhookPublisher создает новый RedisWebhookPublisher
func NewRedisWebhookPublisher(client *redis.Client) *RedisWebhookPublisher {
	return &RedisWebhookPublisher{
		redisClient: client,
	}
}

// Publish публикует событие вебхука в очередь Redis
func (p *RedisWebhookPublisher) Publish(ctx context.Context, event WebhookEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook event: %w", err)
	}

	// LPUSH в голову списка, воркер забирает с хвоста через BRPOP
	if err := p.redisClient.LPush(ctx, webhookQueueKey, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish webhook event to Redis: %w", err)
	}
	return nil
}

// Ping проверяет доступность очереди
func (p *RedisWebhookPublisher) Ping(ctx context.Context) error {
	return p.redisClient.Ping(ctx).Err()
}
