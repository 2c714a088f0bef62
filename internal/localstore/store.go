// Package localstore is the device-local persistent key/value area. It holds
// the change-stamp channels written by the mutation publisher, the cached
// dark-mode flag and the guest-session marker. Values survive app restarts
// but are never shared between devices.
package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrNotFound    = errors.New("key not found")
	ErrUnavailable = errors.New("local store unavailable")
)

// Well-known keys outside the stamp channels.
const (
	KeyDarkMode     = "darkMode"
	KeyGuestSession = "guestSession"
)

type StoreConfig struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	MaxRetries   int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func DefaultStoreConfig() *StoreConfig {
	return &StoreConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 5,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

type Store struct {
	client *redis.Client
	ctx    context.Context
}

func NewStore(config *StoreConfig) *Store {
	if config == nil {
		config = DefaultStoreConfig()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	return &Store{
		client: rdb,
		ctx:    context.Background(),
	}
}

// GetString reads a raw value. Stamp channels are plain strings so they can
// be compared without decoding.
func (s *Store) GetString(key string) (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, 3*time.Second)
	defer cancel()

	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read key %s: %w", key, err)
	}

	return value, nil
}

// SetString writes a raw value with no expiry.
func (s *Store) SetString(key, value string) error {
	ctx, cancel := context.WithTimeout(s.ctx, 3*time.Second)
	defer cancel()

	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}

	return nil
}

func (s *Store) SetJSON(key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value for key %s: %w", key, err)
	}

	return s.SetString(key, string(data))
}

func (s *Store) GetJSON(key string, dest interface{}) error {
	data, err := s.GetString(key)
	if err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(data), dest); err != nil {
		return fmt.Errorf("failed to unmarshal value for key %s: %w", key, err)
	}

	return nil
}

func (s *Store) Delete(key string) error {
	ctx, cancel := context.WithTimeout(s.ctx, 3*time.Second)
	defer cancel()

	return s.client.Del(ctx, key).Err()
}

func (s *Store) Exists(key string) (bool, error) {
	ctx, cancel := context.WithTimeout(s.ctx, 3*time.Second)
	defer cancel()

	result, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}

	return result > 0, nil
}

func (s *Store) Health() error {
	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()

	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
