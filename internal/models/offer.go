package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Offer 商户积分优惠表
type Offer struct {
	ID               string    `gorm:"primaryKey;type:varchar(36)" json:"id"`                           // 主键（UUID）
	MerchantID       string    `gorm:"type:varchar(36);not null;index" json:"merchant_id"`              // 所属商户
	Title            string    `gorm:"not null" json:"title"`                                           // 标题
	Description      string    `gorm:"type:text;not null" json:"description"`                           // 描述
	PointsRequired   int64     `gorm:"not null;default:0" json:"points_required"`                       // 所需积分（由价格与比例推导）
	TotalPrice       Money     `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"`        // 总价
	PointsPercentage int       `gorm:"not null" json:"points_percentage"`                               // 积分抵扣比例（1-99）
	ValidUntil       Date      `gorm:"type:date;not null" json:"valid_until"`                           // 有效期至
	Active           bool      `gorm:"not null;default:true;index" json:"active"`                       // 是否上架
	ImageURL         string    `gorm:"not null;default:''" json:"image_url"`                            // 图片地址
	CreatedAt        time.Time `gorm:"index" json:"created_at"`                                         // 创建时间
	UpdatedAt        time.Time `json:"updated_at"`                                                      // 更新时间

	// 关联
	Merchant *Merchant `gorm:"foreignKey:MerchantID" json:"merchant,omitempty"` // 商户信息
}

// TableName 指定表名
func (Offer) TableName() string {
	return "offers"
}

// BeforeCreate 生成主键
func (o *Offer) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}

// Expired 判断优惠是否已过有效期（有效期当天仍可用）
func (o *Offer) Expired(now time.Time) bool {
	if o == nil || o.ValidUntil.IsZero() {
		return false
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return o.ValidUntil.Time.Before(today)
}
