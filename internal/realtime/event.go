package realtime

import (
	"time"

	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/models"
)

// EventKind 变更事件类型
type EventKind string

const (
	Inserted EventKind = constants.FeedEventInsert
	Updated  EventKind = constants.FeedEventUpdate
	Deleted  EventKind = constants.FeedEventDelete
)

// Valid 判断事件类型是否受支持
func (k EventKind) Valid() bool {
	switch k {
	case Inserted, Updated, Deleted:
		return true
	default:
		return false
	}
}

// ChangeEvent 优惠行级变更事件
type ChangeEvent struct {
	Kind       EventKind     `json:"kind"`
	OfferID    string        `json:"offer_id"`
	MerchantID string        `json:"merchant_id"`
	Offer      *models.Offer `json:"offer,omitempty"` // 删除事件为空
	OccurredAt time.Time     `json:"occurred_at"`
}

// NewOfferEvent 由优惠行构建插入或更新事件
func NewOfferEvent(kind EventKind, offer models.Offer) ChangeEvent {
	snapshot := offer
	snapshot.Merchant = nil
	return ChangeEvent{
		Kind:       kind,
		OfferID:    offer.ID,
		MerchantID: offer.MerchantID,
		Offer:      &snapshot,
		OccurredAt: time.Now().UTC(),
	}
}

// NewDeleteEvent 构建删除事件
func NewDeleteEvent(offerID, merchantID string) ChangeEvent {
	return ChangeEvent{
		Kind:       Deleted,
		OfferID:    offerID,
		MerchantID: merchantID,
		OccurredAt: time.Now().UTC(),
	}
}

func (e ChangeEvent) targetID() string {
	if e.OfferID != "" {
		return e.OfferID
	}
	if e.Offer != nil {
		return e.Offer.ID
	}
	return ""
}

func (e ChangeEvent) ownerID() string {
	if e.MerchantID != "" {
		return e.MerchantID
	}
	if e.Offer != nil {
		return e.Offer.MerchantID
	}
	return ""
}
