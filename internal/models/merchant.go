package models

import (
	"time"
)

// Merchant 商户门店表，主键与所属账号一致
type Merchant struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`          // 主键（等于 profiles.id）
	StoreName string    `gorm:"not null" json:"store_name"`                     // 门店名称
	City      string    `gorm:"not null;default:'';index" json:"city"`          // 城市
	CNPJ      string    `gorm:"column:cnpj;not null;default:''" json:"cnpj"`    // 企业税号
	Street    string    `gorm:"not null;default:''" json:"street"`              // 街道地址
	State     string    `gorm:"type:varchar(10);not null;default:''" json:"state"` // 州
	ZipCode   string    `gorm:"type:varchar(20);not null;default:''" json:"zip_code"` // 邮编
	WhatsApp  string    `gorm:"column:whatsapp;not null;default:''" json:"whatsapp"` // WhatsApp 联系方式
	Active    bool      `gorm:"not null;default:true;index" json:"active"`      // 是否启用
	CreatedAt time.Time `gorm:"index" json:"created_at"`                        // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                                     // 更新时间
}

// TableName 指定表名
func (Merchant) TableName() string {
	return "merchants"
}
