package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PointsTransaction 积分流水表
type PointsTransaction struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`                  // 主键（UUID）
	EnrollmentID string    `gorm:"type:varchar(36);not null;index" json:"enrollment_id"`   // 积分账户
	CustomerID   string    `gorm:"type:varchar(36);not null;index" json:"customer_id"`     // 顾客
	MerchantID   string    `gorm:"type:varchar(36);not null;index" json:"merchant_id"`     // 商户
	Type         string    `gorm:"type:varchar(20);not null;index" json:"type"`            // 流水类型（enroll/accrue/redeem）
	Points       int64     `gorm:"not null" json:"points"`                                 // 变动积分（正为增加，负为扣减）
	BalanceAfter int64     `gorm:"not null" json:"balance_after"`                          // 变动后余额
	OfferID      *string   `gorm:"type:varchar(36);index" json:"offer_id,omitempty"`       // 关联优惠
	Reason       string    `gorm:"not null;default:''" json:"reason"`                      // 备注
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                // 创建时间
}

// TableName 指定表名
func (PointsTransaction) TableName() string {
	return "points_transactions"
}

// BeforeCreate 生成主键
func (t *PointsTransaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
