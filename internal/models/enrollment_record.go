package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EnrollmentRecord 顾客在单个商户的积分余额表
type EnrollmentRecord struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`                                                  // 主键（UUID）
	CustomerID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_customer_points_pair,priority:1" json:"customer_id"` // 顾客
	MerchantID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_customer_points_pair,priority:2;index" json:"merchant_id"` // 商户
	Points     int64     `gorm:"not null;default:0" json:"points"`                                                       // 积分余额
	CreatedAt  time.Time `gorm:"index" json:"created_at"`                                                                // 加入时间
	UpdatedAt  time.Time `json:"updated_at"`                                                                             // 更新时间
}

// TableName 指定表名
func (EnrollmentRecord) TableName() string {
	return "customer_points"
}

// BeforeCreate 生成主键
func (r *EnrollmentRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
