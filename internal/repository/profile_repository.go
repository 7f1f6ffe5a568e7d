package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/models"

	"gorm.io/gorm"
)

// ProfileRepository 账号数据访问接口
type ProfileRepository interface {
	GetByEmail(email string) (*models.Profile, error)
	GetByID(id string) (*models.Profile, error)
	ListByIDs(ids []string) ([]models.Profile, error)
	Create(profile *models.Profile) error
	Update(profile *models.Profile) error
	List(filter ProfileListFilter) ([]models.Profile, int64, error)
	UpdateStatus(id string, status string) error
	RevokeTokens(id string, at time.Time) error
	WithTx(tx *gorm.DB) *GormProfileRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormProfileRepository GORM 实现
type GormProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository 创建账号仓库
func NewProfileRepository(db *gorm.DB) *GormProfileRepository {
	return &GormProfileRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProfileRepository) WithTx(tx *gorm.DB) *GormProfileRepository {
	if tx == nil {
		return r
	}
	return &GormProfileRepository{db: tx}
}

// Transaction 在事务中执行
func (r *GormProfileRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// GetByEmail 根据邮箱获取账号
func (r *GormProfileRepository) GetByEmail(email string) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, nil
	}
	var profile models.Profile
	if err := r.db.Where("email = ?", email).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// GetByID 根据 ID 获取账号
func (r *GormProfileRepository) GetByID(id string) (*models.Profile, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	var profile models.Profile
	if err := r.db.Where("id = ?", id).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}

// ListByIDs 批量获取账号
func (r *GormProfileRepository) ListByIDs(ids []string) ([]models.Profile, error) {
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}
	var profiles []models.Profile
	if err := r.db.Where("id IN ?", ids).Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// Create 创建账号
func (r *GormProfileRepository) Create(profile *models.Profile) error {
	return r.db.Create(profile).Error
}

// Update 更新账号
func (r *GormProfileRepository) Update(profile *models.Profile) error {
	return r.db.Save(profile).Error
}

// List 账号列表，支持姓名/邮箱关键字与角色过滤
func (r *GormProfileRepository) List(filter ProfileListFilter) ([]models.Profile, int64, error) {
	query := r.db.Model(&models.Profile{})

	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, args := matchAny(r.db, keyword, "name", "email")
		query = query.Where(condition, args...)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var profiles []models.Profile
	if err := query.Order("created_at DESC").Find(&profiles).Error; err != nil {
		return nil, 0, err
	}
	return profiles, total, nil
}

// UpdateStatus 更新账号状态，禁用时同时吊销已签发的 Token
func (r *GormProfileRepository) UpdateStatus(id string, status string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"status":     status,
		"updated_at": now,
	}
	if strings.ToLower(strings.TrimSpace(status)) == constants.UserStatusDisabled {
		updates["token_invalid_before"] = now
		updates["token_version"] = gorm.Expr("token_version + 1")
	}
	return r.db.Model(&models.Profile{}).Where("id = ?", id).Updates(updates).Error
}

// RevokeTokens 使该账号在 at 之前签发的 Token 全部失效
func (r *GormProfileRepository) RevokeTokens(id string, at time.Time) error {
	return r.db.Model(&models.Profile{}).Where("id = ?", id).Updates(map[string]interface{}{
		"token_invalid_before": at,
		"token_version":        gorm.Expr("token_version + 1"),
		"updated_at":           at,
	}).Error
}
