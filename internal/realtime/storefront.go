package realtime

import (
	"context"
	"errors"
	"time"

	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/models"
)

// StorefrontLoader 读取全部上架优惠
type StorefrontLoader func() ([]models.Offer, error)

// StorefrontView 进程级商城视图，启动时全量加载并通过订阅保持最新
type StorefrontView struct {
	name     string
	hub      *Hub
	loader   StorefrontLoader
	cache    *OfferCache
	interval time.Duration
	sub      *Subscription
}

// NewStorefrontView 创建商城视图，interval 为全量校准周期，<=0 时不校准
func NewStorefrontView(hub *Hub, loader StorefrontLoader, interval time.Duration) *StorefrontView {
	return &StorefrontView{
		name:     "storefront-view",
		hub:      hub,
		loader:   loader,
		cache:    NewStorefrontCache(),
		interval: interval,
	}
}

// Name 服务名称
func (v *StorefrontView) Name() string {
	if v == nil || v.name == "" {
		return "storefront-view"
	}
	return v.name
}

// Attach 订阅推送中心并加载初始数据
//
// 先订阅后加载，加载期间到达的事件留在通道中，随后按序应用。
func (v *StorefrontView) Attach() error {
	if v == nil || v.hub == nil || v.loader == nil {
		return errors.New("storefront view not initialized")
	}
	if v.sub != nil {
		return nil
	}
	sub, err := v.hub.Subscribe(nil)
	if err != nil {
		return err
	}
	v.sub = sub
	if err := v.Reload(); err != nil {
		v.hub.Unsubscribe(sub)
		v.sub = nil
		return err
	}
	return nil
}

// Start 持续应用事件直至 ctx 结束
func (v *StorefrontView) Start(ctx context.Context) error {
	if err := v.Attach(); err != nil {
		return err
	}
	var tick <-chan time.Time
	if v.interval > 0 {
		ticker := time.NewTicker(v.interval)
		defer ticker.Stop()
		tick = ticker.C
	}
	events := v.sub.C()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			v.cache.Apply(event)
		case <-tick:
			if err := v.Reload(); err != nil {
				logger.Warnw("storefront_view_reload_failed", "error", err)
			}
		}
	}
}

// Stop 取消订阅
func (v *StorefrontView) Stop(ctx context.Context) error {
	_ = ctx
	if v == nil || v.hub == nil || v.sub == nil {
		return nil
	}
	v.hub.Unsubscribe(v.sub)
	return nil
}

// Reload 从存储全量刷新，用于启动与商户启停后的校准
func (v *StorefrontView) Reload() error {
	offers, err := v.loader()
	if err != nil {
		return err
	}
	v.cache.Reset(offers)
	logger.Debugw("storefront_view_reloaded", "offers", len(offers))
	return nil
}

// Snapshot 当前上架优惠
func (v *StorefrontView) Snapshot() []models.Offer {
	return v.cache.Snapshot()
}

// Cache 底层缓存
func (v *StorefrontView) Cache() *OfferCache {
	return v.cache
}
