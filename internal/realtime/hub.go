package realtime

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/models"
)

const defaultSubscriberBuffer = 64

var (
	// ErrHubClosed 推送中心已关闭
	ErrHubClosed = errors.New("realtime hub closed")
	// ErrEventInvalid 事件不完整
	ErrEventInvalid = errors.New("realtime event invalid")
)

// Filter 订阅过滤条件，返回 true 表示投递
type Filter func(event ChangeEvent) bool

// ForMerchant 仅投递指定商户的事件
func ForMerchant(merchantID string) Filter {
	return func(event ChangeEvent) bool {
		return event.ownerID() == merchantID
	}
}

// Subscription 订阅句柄
type Subscription struct {
	id      uint64
	ch      chan ChangeEvent
	filter  Filter
	dropped atomic.Int64
}

// ID 订阅编号
func (s *Subscription) ID() uint64 {
	return s.id
}

// C 事件通道，取消订阅后关闭
func (s *Subscription) C() <-chan ChangeEvent {
	return s.ch
}

// Dropped 因缓冲区满而丢弃的事件数
func (s *Subscription) Dropped() int64 {
	return s.dropped.Load()
}

// Hub 优惠变更推送中心
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint64]*Subscription
	nextID uint64
	buffer int
	broker Broker
	closed bool
}

// NewHub 创建推送中心，broker 为空时仅在进程内投递
func NewHub(buffer int, broker Broker) *Hub {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	if broker == nil {
		broker = LocalBroker{}
	}
	return &Hub{
		subs:   make(map[uint64]*Subscription),
		buffer: buffer,
		broker: broker,
	}
}

// Subscribe 注册订阅者
func (h *Hub) Subscribe(filter Filter) (*Subscription, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil, ErrHubClosed
	}
	h.nextID++
	sub := &Subscription{
		id:     h.nextID,
		ch:     make(chan ChangeEvent, h.buffer),
		filter: filter,
	}
	h.subs[sub.id] = sub
	return sub, nil
}

// Unsubscribe 注销订阅者并关闭其通道，重复调用安全
func (h *Hub) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub.id]; !ok {
		return
	}
	delete(h.subs, sub.id)
	close(sub.ch)
}

// SubscriberCount 当前订阅数
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish 发布事件，经 broker 扩散到所有实例
func (h *Hub) Publish(ctx context.Context, event ChangeEvent) error {
	if !event.Kind.Valid() || event.targetID() == "" {
		return ErrEventInvalid
	}
	h.mu.RLock()
	closed := h.closed
	h.mu.RUnlock()
	if closed {
		return ErrHubClosed
	}

	delivered, err := h.broker.Publish(ctx, event)
	if err != nil {
		logger.Warnw("realtime_broker_publish_failed",
			"broker", h.broker.Name(),
			"kind", event.Kind,
			"offer_id", event.targetID(),
			"error", err,
		)
		// broker 不可用时至少保证本实例订阅者收到
		h.Deliver(event)
		return nil
	}
	if !delivered {
		h.Deliver(event)
	}
	return nil
}

// OfferChanged 业务层回调：优惠插入或更新后发布事件
func (h *Hub) OfferChanged(ctx context.Context, kind string, offer models.Offer) {
	var event ChangeEvent
	if EventKind(kind) == Deleted {
		event = NewDeleteEvent(offer.ID, offer.MerchantID)
	} else {
		event = NewOfferEvent(EventKind(kind), offer)
	}
	if err := h.Publish(ctx, event); err != nil {
		logger.Warnw("realtime_publish_failed", "kind", kind, "offer_id", offer.ID, "error", err)
	}
}

// Deliver 将事件投递给本进程订阅者，缓冲区满时丢弃
func (h *Hub) Deliver(event ChangeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	for _, sub := range h.subs {
		if sub.filter != nil && !sub.filter(event) {
			continue
		}
		select {
		case sub.ch <- event:
		default:
			sub.dropped.Add(1)
			logger.Warnw("realtime_subscriber_slow",
				"subscription_id", sub.id,
				"kind", event.Kind,
				"offer_id", event.targetID(),
				"dropped", sub.dropped.Load(),
			)
		}
	}
}

// Close 关闭推送中心并释放全部订阅
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		delete(h.subs, id)
		close(sub.ch)
	}
}
