package realtime

import (
	"sync"

	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/models"
)

// Scope 缓存视图范围
type Scope string

const (
	ScopeMerchant   Scope = constants.FeedScopeMerchant
	ScopeStorefront Scope = constants.FeedScopeStorefront
)

// OfferCache 本地优惠列表缓存，按到达顺序保存并按 ID 索引
//
// 每个事件在锁内整体应用，读者不会看到中间状态。同一 ID 以最后到达的事件为准。
type OfferCache struct {
	mu         sync.RWMutex
	scope      Scope
	merchantID string
	items      []models.Offer
	index      map[string]int
}

// NewStorefrontCache 创建商城视图缓存（仅保留上架优惠）
func NewStorefrontCache() *OfferCache {
	return &OfferCache{scope: ScopeStorefront, index: make(map[string]int)}
}

// NewMerchantCache 创建商户视图缓存（保留已下架优惠，仅接收本商户事件）
func NewMerchantCache(merchantID string) *OfferCache {
	return &OfferCache{scope: ScopeMerchant, merchantID: merchantID, index: make(map[string]int)}
}

// Scope 返回视图范围
func (c *OfferCache) Scope() Scope {
	return c.scope
}

// Reset 用读取结果整体替换缓存内容
func (c *OfferCache) Reset(offers []models.Offer) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make([]models.Offer, 0, len(offers))
	c.index = make(map[string]int, len(offers))
	for _, offer := range offers {
		if !c.acceptsLocked(offer) {
			continue
		}
		if _, exists := c.index[offer.ID]; exists {
			continue
		}
		c.index[offer.ID] = len(c.items)
		c.items = append(c.items, offer)
	}
}

// Apply 应用一条变更事件，返回可见内容是否发生变化
func (c *OfferCache) Apply(event ChangeEvent) bool {
	id := event.targetID()
	if id == "" {
		return false
	}
	if c.merchantID != "" && event.ownerID() != c.merchantID {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch event.Kind {
	case Inserted:
		if event.Offer == nil || !c.acceptsLocked(*event.Offer) {
			return false
		}
		if _, exists := c.index[id]; exists {
			return false
		}
		c.appendLocked(*event.Offer)
		return true
	case Updated:
		if event.Offer == nil {
			return false
		}
		if !c.acceptsLocked(*event.Offer) {
			return c.removeLocked(id)
		}
		if pos, exists := c.index[id]; exists {
			c.items[pos] = *event.Offer
			return true
		}
		c.appendLocked(*event.Offer)
		return true
	case Deleted:
		return c.removeLocked(id)
	default:
		return false
	}
}

// Project 应用事件并返回本范围客户端应收到的事件
//
// 更新后不再属于本范围的记录按删除下发。
func (c *OfferCache) Project(event ChangeEvent) (ChangeEvent, bool) {
	if !c.Apply(event) {
		return ChangeEvent{}, false
	}
	if event.Kind == Deleted {
		return event, true
	}
	id := event.targetID()
	if _, ok := c.Get(id); !ok {
		out := NewDeleteEvent(id, event.ownerID())
		out.OccurredAt = event.OccurredAt
		return out, true
	}
	return event, true
}

// Snapshot 返回当前内容的副本
func (c *OfferCache) Snapshot() []models.Offer {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Offer, len(c.items))
	copy(out, c.items)
	return out
}

// Get 按 ID 读取
func (c *OfferCache) Get(id string) (models.Offer, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	pos, ok := c.index[id]
	if !ok {
		return models.Offer{}, false
	}
	return c.items[pos], true
}

// Len 当前条目数
func (c *OfferCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

func (c *OfferCache) acceptsLocked(offer models.Offer) bool {
	if c.merchantID != "" && offer.MerchantID != c.merchantID {
		return false
	}
	if c.scope == ScopeStorefront && !offer.Active {
		return false
	}
	return true
}

func (c *OfferCache) appendLocked(offer models.Offer) {
	c.index[offer.ID] = len(c.items)
	c.items = append(c.items, offer)
}

func (c *OfferCache) removeLocked(id string) bool {
	pos, exists := c.index[id]
	if !exists {
		return false
	}
	c.items = append(c.items[:pos], c.items[pos+1:]...)
	delete(c.index, id)
	for i := pos; i < len(c.items); i++ {
		c.index[c.items[i].ID] = i
	}
	return true
}
