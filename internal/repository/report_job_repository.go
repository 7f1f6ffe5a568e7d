package repository

import (
	"errors"
	"strings"

	"github.com/fidelidade-next/internal/models"

	"gorm.io/gorm"
)

// ReportJobRepository 报表任务数据访问接口
type ReportJobRepository interface {
	Create(job *models.ReportJob) error
	GetByID(id string) (*models.ReportJob, error)
	Update(job *models.ReportJob) error
}

// GormReportJobRepository GORM 实现
type GormReportJobRepository struct {
	db *gorm.DB
}

// NewReportJobRepository 创建报表任务仓库
func NewReportJobRepository(db *gorm.DB) *GormReportJobRepository {
	return &GormReportJobRepository{db: db}
}

// Create 创建报表任务
func (r *GormReportJobRepository) Create(job *models.ReportJob) error {
	return r.db.Create(job).Error
}

// GetByID 根据 ID 获取报表任务
func (r *GormReportJobRepository) GetByID(id string) (*models.ReportJob, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	var job models.ReportJob
	if err := r.db.Where("id = ?", id).First(&job).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &job, nil
}

// Update 更新报表任务
func (r *GormReportJobRepository) Update(job *models.ReportJob) error {
	return r.db.Save(job).Error
}
