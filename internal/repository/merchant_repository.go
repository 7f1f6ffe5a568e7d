package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/fidelidade-next/internal/models"

	"gorm.io/gorm"
)

// MerchantRepository 商户数据访问接口
type MerchantRepository interface {
	GetByID(id string) (*models.Merchant, error)
	ListByIDs(ids []string) ([]models.Merchant, error)
	Create(merchant *models.Merchant) error
	Update(merchant *models.Merchant) error
	SetActive(id string, active bool) (bool, error)
	SearchByCity(city string) ([]models.Merchant, error)
	List(filter MerchantListFilter) ([]models.Merchant, int64, error)
	WithTx(tx *gorm.DB) *GormMerchantRepository
}

// GormMerchantRepository GORM 实现
type GormMerchantRepository struct {
	db *gorm.DB
}

// NewMerchantRepository 创建商户仓库
func NewMerchantRepository(db *gorm.DB) *GormMerchantRepository {
	return &GormMerchantRepository{db: db}
}

// WithTx 绑定事务
func (r *GormMerchantRepository) WithTx(tx *gorm.DB) *GormMerchantRepository {
	if tx == nil {
		return r
	}
	return &GormMerchantRepository{db: tx}
}

// GetByID 根据 ID 获取商户
func (r *GormMerchantRepository) GetByID(id string) (*models.Merchant, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	var merchant models.Merchant
	if err := r.db.Where("id = ?", id).First(&merchant).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &merchant, nil
}

// ListByIDs 批量获取商户
func (r *GormMerchantRepository) ListByIDs(ids []string) ([]models.Merchant, error) {
	if len(ids) == 0 {
		return []models.Merchant{}, nil
	}
	var merchants []models.Merchant
	if err := r.db.Where("id IN ?", ids).Find(&merchants).Error; err != nil {
		return nil, err
	}
	return merchants, nil
}

// Create 创建商户
func (r *GormMerchantRepository) Create(merchant *models.Merchant) error {
	return r.db.Create(merchant).Error
}

// Update 更新商户资料（不含启用状态）
func (r *GormMerchantRepository) Update(merchant *models.Merchant) error {
	return r.db.Model(&models.Merchant{}).Where("id = ?", merchant.ID).Updates(map[string]interface{}{
		"store_name": merchant.StoreName,
		"city":       merchant.City,
		"cnpj":       merchant.CNPJ,
		"street":     merchant.Street,
		"state":      merchant.State,
		"zip_code":   merchant.ZipCode,
		"whatsapp":   merchant.WhatsApp,
		"updated_at": time.Now(),
	}).Error
}

// SetActive 设置商户启用状态，返回是否命中记录
func (r *GormMerchantRepository) SetActive(id string, active bool) (bool, error) {
	result := r.db.Model(&models.Merchant{}).Where("id = ?", id).Updates(map[string]interface{}{
		"active":     active,
		"updated_at": time.Now(),
	})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SearchByCity 按城市子串搜索启用中的商户，空条件直接返回空结果
func (r *GormMerchantRepository) SearchByCity(city string) ([]models.Merchant, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return []models.Merchant{}, nil
	}
	condition, args := matchAny(r.db, city, "city")
	var merchants []models.Merchant
	if err := r.db.Where("active = ?", true).
		Where(condition, args...).
		Order("store_name ASC").
		Find(&merchants).Error; err != nil {
		return nil, err
	}
	return merchants, nil
}

// List 商户列表
func (r *GormMerchantRepository) List(filter MerchantListFilter) ([]models.Merchant, int64, error) {
	query := r.db.Model(&models.Merchant{})
	if filter.OnlyActive {
		query = query.Where("active = ?", true)
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		condition, args := matchAny(r.db, city, "city")
		query = query.Where(condition, args...)
	}
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, args := matchAny(r.db, keyword, "store_name", "cnpj")
		query = query.Where(condition, args...)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var merchants []models.Merchant
	if err := query.Order("created_at DESC").Find(&merchants).Error; err != nil {
		return nil, 0, err
	}
	return merchants, total, nil
}
