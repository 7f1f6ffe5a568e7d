package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product 积分商城商品表
type Product struct {
	ID               string         `gorm:"primaryKey;type:varchar(36)" json:"id"`                 // 主键（UUID）
	Category         string         `gorm:"not null;default:'';index" json:"category"`             // 分类
	Name             string         `gorm:"not null" json:"name"`                                  // 名称
	Description      string         `gorm:"type:text;not null;default:''" json:"description"`      // 描述
	Price            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`    // 价格
	PointsPercentage int            `gorm:"not null" json:"points_percentage"`                     // 积分抵扣比例（1-99）
	PointsPrice      int64          `gorm:"not null;default:0" json:"points_price"`                // 积分价格（由价格与比例推导）
	ImageURL         string         `gorm:"not null;default:''" json:"image_url"`                  // 图片地址
	Active           bool           `gorm:"not null;default:true;index" json:"active"`             // 是否上架
	CreatedBy        string         `gorm:"type:varchar(36);not null;default:''" json:"created_by"` // 创建人
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                               // 创建时间
	UpdatedAt        time.Time      `json:"updated_at"`                                            // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                        // 软删除时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// BeforeCreate 生成主键
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
