package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReportJob 报表导出任务表
type ReportJob struct {
	ID          string     `gorm:"primaryKey;type:varchar(36)" json:"id"`                     // 主键（UUID）
	Type        string     `gorm:"type:varchar(20);not null;index" json:"type"`               // 报表类型（users/points/offers）
	Status      string     `gorm:"type:varchar(20);not null;index" json:"status"`             // 任务状态
	DateFrom    *time.Time `json:"date_from,omitempty"`                                       // 统计开始时间
	DateTo      *time.Time `json:"date_to,omitempty"`                                         // 统计结束时间
	FilePath    string     `gorm:"not null;default:''" json:"-"`                              // 导出文件路径
	RowCount    int        `gorm:"not null;default:0" json:"row_count"`                       // 导出行数
	Error       string     `gorm:"type:text;not null;default:''" json:"error,omitempty"`      // 失败原因
	RequestedBy string     `gorm:"type:varchar(36);not null;index" json:"requested_by"`       // 发起人
	FinishedAt  *time.Time `json:"finished_at,omitempty"`                                     // 完成时间
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time  `json:"updated_at"`                                                // 更新时间
}

// TableName 指定表名
func (ReportJob) TableName() string {
	return "report_jobs"
}

// BeforeCreate 生成主键
func (r *ReportJob) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
