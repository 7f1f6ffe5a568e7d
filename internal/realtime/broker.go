package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/fidelidade-next/internal/logger"

	"github.com/redis/go-redis/v9"
)

const feedChannelSuffix = "feed:offers"

// Broker 跨实例事件分发
type Broker interface {
	Name() string
	// Publish 返回 true 表示事件会经由订阅回流投递给本实例
	Publish(ctx context.Context, event ChangeEvent) (bool, error)
}

// LocalBroker 进程内分发，事件由 Hub 直接投递
type LocalBroker struct{}

// Name broker 名称
func (LocalBroker) Name() string {
	return "local"
}

// Publish 进程内无需转发
func (LocalBroker) Publish(ctx context.Context, event ChangeEvent) (bool, error) {
	return false, nil
}

// RedisBroker 基于 Redis PUBLISH/SUBSCRIBE 的分发
type RedisBroker struct {
	client  *redis.Client
	channel string
}

// FeedChannel 根据前缀构建频道名
func FeedChannel(prefix string) string {
	if prefix == "" {
		return feedChannelSuffix
	}
	return prefix + ":" + feedChannelSuffix
}

// NewRedisBroker 创建 Redis 分发器
func NewRedisBroker(client *redis.Client, prefix string) (*RedisBroker, error) {
	if client == nil {
		return nil, errors.New("redis client is nil")
	}
	return &RedisBroker{client: client, channel: FeedChannel(prefix)}, nil
}

// Name broker 名称
func (b *RedisBroker) Name() string {
	return "redis"
}

// Channel 频道名
func (b *RedisBroker) Channel() string {
	return b.channel
}

// Publish 发布到 Redis 频道，本实例通过 Bridge 订阅回流
func (b *RedisBroker) Publish(ctx context.Context, event ChangeEvent) (bool, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return false, fmt.Errorf("marshal change event failed: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return false, err
	}
	return true, nil
}

// Bridge 将 Redis 频道消息转交给本实例 Hub
type Bridge struct {
	name   string
	hub    *Hub
	broker *RedisBroker
	mu     sync.Mutex
	pubsub *redis.PubSub
}

// NewBridge 创建 Redis 订阅桥
func NewBridge(hub *Hub, broker *RedisBroker) (*Bridge, error) {
	if hub == nil || broker == nil {
		return nil, errors.New("realtime bridge dependencies missing")
	}
	return &Bridge{name: "realtime-bridge", hub: hub, broker: broker}, nil
}

// Name 服务名称
func (b *Bridge) Name() string {
	if b == nil || b.name == "" {
		return "realtime-bridge"
	}
	return b.name
}

// Start 订阅频道并持续投递，直至 ctx 结束
func (b *Bridge) Start(ctx context.Context) error {
	if b == nil || b.hub == nil || b.broker == nil {
		return errors.New("realtime bridge not initialized")
	}
	pubsub := b.broker.client.Subscribe(ctx, b.broker.channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe feed channel failed: %w", err)
	}
	b.mu.Lock()
	b.pubsub = pubsub
	b.mu.Unlock()
	logger.Infow("realtime_bridge_subscribed", "channel", b.broker.channel)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			event, err := decodeEvent(msg.Payload)
			if err != nil {
				logger.Warnw("realtime_bridge_decode_failed", "channel", msg.Channel, "error", err)
				continue
			}
			b.hub.Deliver(event)
		}
	}
}

// Stop 关闭订阅
func (b *Bridge) Stop(ctx context.Context) error {
	if b == nil {
		return nil
	}
	_ = ctx
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pubsub == nil {
		return nil
	}
	err := b.pubsub.Close()
	b.pubsub = nil
	return err
}

func decodeEvent(payload string) (ChangeEvent, error) {
	var event ChangeEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return ChangeEvent{}, err
	}
	if !event.Kind.Valid() || event.targetID() == "" {
		return ChangeEvent{}, ErrEventInvalid
	}
	return event, nil
}
