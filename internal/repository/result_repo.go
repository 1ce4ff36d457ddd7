package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/gema-grader/internal/models"
)

// ResultStore is an opaque string-keyed blob store. Get reports false when
// the key is absent.
type ResultStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

type memoryResultStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryResultStore returns a process-local store.
func NewMemoryResultStore() ResultStore {
	return &memoryResultStore{values: make(map[string]string)}
}

func (s *memoryResultStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	value, ok := s.values[key]
	return value, ok, nil
}

func (s *memoryResultStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

type redisResultStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisResultStore stores values under prefix+key. A zero ttl keeps them forever.
func NewRedisResultStore(client *redis.Client, prefix string, ttl time.Duration) ResultStore {
	return &redisResultStore{client: client, prefix: prefix, ttl: ttl}
}

func (s *redisResultStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *redisResultStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

type gormResultStore struct {
	db *gorm.DB
}

// NewGormResultStore persists values in the stored_results table. The table
// must already be migrated.
func NewGormResultStore(db *gorm.DB) ResultStore {
	return &gormResultStore{db: db}
}

func (s *gormResultStore) Get(ctx context.Context, key string) (string, bool, error) {
	var record models.StoredResult
	err := s.db.WithContext(ctx).Where(&models.StoredResult{Key: key}).Take(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(record.Value), true, nil
}

func (s *gormResultStore) Set(ctx context.Context, key, value string) error {
	record := models.StoredResult{
		Key:       key,
		Value:     datatypes.JSON(value),
		UpdatedAt: time.Now().UTC(),
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
}
