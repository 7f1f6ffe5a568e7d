package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile 账号表（顾客、商户、管理员共用）
type Profile struct {
	ID                 string         `gorm:"primaryKey;type:varchar(36)" json:"id"`                  // 主键（UUID）
	Email              string         `gorm:"uniqueIndex;not null" json:"email"`                      // 邮箱
	PasswordHash       string         `gorm:"not null" json:"-"`                                      // 密码哈希（不返回给前端）
	Name               string         `gorm:"not null;default:''" json:"name"`                        // 姓名
	Role               string         `gorm:"type:varchar(20);not null;index" json:"role"`            // 角色（customer/merchant/admin）
	Status             string         `gorm:"type:varchar(20);not null;default:'active'" json:"status"` // 账号状态
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                            // Token 版本（用于全量失效）
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                                         // 该时间点前签发的 Token 失效
	LastLoginAt        *time.Time     `json:"last_login_at"`                                          // 最后登录时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                                // 创建时间
	UpdatedAt          time.Time      `json:"updated_at"`                                             // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                                         // 软删除时间
}

// TableName 指定表名
func (Profile) TableName() string {
	return "profiles"
}

// BeforeCreate 生成主键
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
