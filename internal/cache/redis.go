package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fidelidade-next/internal/config"
	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/logger"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 2 * time.Second

// store 进程内共享的 Redis 连接与键前缀
type store struct {
	mu     sync.RWMutex
	client *redis.Client
	prefix string
}

var shared = &store{prefix: constants.RedisPrefixDefault}

func (s *store) snapshot() (*redis.Client, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client, s.prefix
}

func (s *store) swap(client *redis.Client, prefix string) *redis.Client {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.client
	s.client = client
	if prefix = strings.TrimSpace(prefix); prefix != "" {
		s.prefix = prefix
	}
	return old
}

// InitRedis 连接 Redis 并探活；未启用或探活失败时缓存保持关闭，调用方按未命中处理
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		UseClient(nil, "")
		return nil
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	client := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		UseClient(nil, cfg.Prefix)
		return fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
	}
	UseClient(client, cfg.Prefix)
	logger.Infow("redis_connected", "addr", client.Options().Addr, "prefix", Prefix())
	return nil
}

// UseClient 替换共享客户端，nil 表示关闭缓存；旧连接由调用方负责
func UseClient(client *redis.Client, prefix string) {
	shared.swap(client, prefix)
}

// Enabled 缓存是否可用
func Enabled() bool {
	client, _ := shared.snapshot()
	return client != nil
}

// Client 共享 Redis 客户端，未启用时为 nil
func Client() *redis.Client {
	client, _ := shared.snapshot()
	return client
}

// Close 关闭并清空共享客户端
func Close() error {
	if old := shared.swap(nil, ""); old != nil {
		return old.Close()
	}
	return nil
}

// Prefix 当前键前缀
func Prefix() string {
	_, prefix := shared.snapshot()
	return prefix
}

// Key 带前缀的完整键名
func Key(key string) string {
	_, prefix := shared.snapshot()
	if key = strings.TrimSpace(key); key == "" {
		return prefix
	}
	return prefix + ":" + key
}

// GetJSON 读取 JSON 缓存；内容损坏时删除该键并按未命中返回
func GetJSON(ctx context.Context, key string, dest interface{}) (bool, error) {
	client := Client()
	if client == nil {
		return false, nil
	}
	full := Key(key)
	raw, err := client.Get(ctx, full).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		logger.Warnw("cache_entry_corrupt", "key", full, "error", err)
		_ = client.Del(ctx, full).Err()
		return false, nil
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存
func SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	client := Client()
	if client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return client.Set(ctx, Key(key), payload, ttl).Err()
}

// Del 删除缓存
func Del(ctx context.Context, key string) error {
	client := Client()
	if client == nil {
		return nil
	}
	return client.Del(ctx, Key(key)).Err()
}
