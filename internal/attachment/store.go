package attachment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "attachment:"

var (
	ErrNotFound = errors.New("attachment not found")
	ErrEmpty    = errors.New("attachment is empty")
	ErrTooLarge = errors.New("attachment is too large")
)

// Attachment - содержимое вложения (фото с места происшествия)
type Attachment struct {
	Ref         string
	ContentType string
	Data        []byte
}

// Store хранит бинарные вложения в Redis. Инциденты держат только ссылки.
type Store struct {
	client  *redis.Client
	ttl     time.Duration
	maxSize int64
}

func NewStore(client *redis.Client, ttl time.Duration, maxSize int64) *Store {
	return &Store{
		client:  client,
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Put сохраняет вложение и возвращает ссылку на него
func (s *Store) Put(ctx context.Context, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrEmpty
	}
	if s.maxSize > 0 && int64(len(data)) > s.maxSize {
		return "", fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, len(data), s.maxSize)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	ref := uuid.NewString()
	key := keyPrefix + ref
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, "content_type", contentType, "data", data)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to store attachment: %w", err)
	}
	return ref, nil
}

// Get возвращает вложение по ссылке
func (s *Store) Get(ctx context.Context, ref string) (*Attachment, error) {
	if _, err := uuid.Parse(ref); err != nil {
		return nil, fmt.Errorf("%w: malformed reference %q", ErrNotFound, ref)
	}
	fields, err := s.client.HGetAll(ctx, keyPrefix+ref).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment: %w", err)
	}
	data, ok := fields["data"]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return &Attachment{
		Ref:         ref,
		ContentType: fields["content_type"],
		Data:        []byte(data),
	}, nil
}
