package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/fidelidade-next/internal/models"

	"gorm.io/gorm"
)

// OfferRepository 优惠数据访问接口
//
// 写操作均带 merchant_id 条件，归属校验在持久层完成。
type OfferRepository interface {
	Create(offer *models.Offer) error
	GetByID(id string) (*models.Offer, error)
	GetOwned(id string, merchantID string) (*models.Offer, error)
	UpdateOwned(offer *models.Offer) (bool, error)
	SetActiveOwned(id string, merchantID string, active bool) (bool, error)
	List(filter OfferListFilter) ([]models.Offer, int64, error)
	ListByMerchant(merchantID string) ([]models.Offer, error)
	ListActive() ([]models.Offer, error)
	WithTx(tx *gorm.DB) *GormOfferRepository
}

// GormOfferRepository GORM 实现
type GormOfferRepository struct {
	db *gorm.DB
}

// NewOfferRepository 创建优惠仓库
func NewOfferRepository(db *gorm.DB) *GormOfferRepository {
	return &GormOfferRepository{db: db}
}

// WithTx 绑定事务
func (r *GormOfferRepository) WithTx(tx *gorm.DB) *GormOfferRepository {
	if tx == nil {
		return r
	}
	return &GormOfferRepository{db: tx}
}

// Create 创建优惠
func (r *GormOfferRepository) Create(offer *models.Offer) error {
	return r.db.Create(offer).Error
}

// GetByID 根据 ID 获取优惠
func (r *GormOfferRepository) GetByID(id string) (*models.Offer, error) {
	if strings.TrimSpace(id) == "" {
		return nil, nil
	}
	var offer models.Offer
	if err := r.db.Where("id = ?", id).First(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

// GetOwned 获取指定商户名下的优惠
func (r *GormOfferRepository) GetOwned(id string, merchantID string) (*models.Offer, error) {
	if strings.TrimSpace(id) == "" || strings.TrimSpace(merchantID) == "" {
		return nil, nil
	}
	var offer models.Offer
	if err := r.db.Where("id = ? AND merchant_id = ?", id, merchantID).First(&offer).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &offer, nil
}

// UpdateOwned 按 ID 与商户更新可编辑字段，返回是否命中记录
func (r *GormOfferRepository) UpdateOwned(offer *models.Offer) (bool, error) {
	if offer == nil {
		return false, nil
	}
	now := time.Now()
	result := r.db.Model(&models.Offer{}).
		Where("id = ? AND merchant_id = ?", offer.ID, offer.MerchantID).
		Updates(map[string]interface{}{
			"title":             offer.Title,
			"description":       offer.Description,
			"total_price":       offer.TotalPrice,
			"points_percentage": offer.PointsPercentage,
			"points_required":   offer.PointsRequired,
			"valid_until":       offer.ValidUntil,
			"image_url":         offer.ImageURL,
			"updated_at":        now,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// SetActiveOwned 设置优惠上下架状态，返回是否命中记录
func (r *GormOfferRepository) SetActiveOwned(id string, merchantID string, active bool) (bool, error) {
	result := r.db.Model(&models.Offer{}).
		Where("id = ? AND merchant_id = ?", id, merchantID).
		Updates(map[string]interface{}{
			"active":     active,
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// List 优惠分页列表
func (r *GormOfferRepository) List(filter OfferListFilter) ([]models.Offer, int64, error) {
	query := r.db.Model(&models.Offer{})
	if filter.MerchantID != "" {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.OnlyActive {
		query = query.Where("active = ?", true)
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
	if filter.WithMerchant {
		query = query.Preload("Merchant")
	}

	var offers []models.Offer
	if err := query.Order("created_at ASC").Find(&offers).Error; err != nil {
		return nil, 0, err
	}
	return offers, total, nil
}

// ListByMerchant 商户全部优惠（含已下架），按创建顺序
func (r *GormOfferRepository) ListByMerchant(merchantID string) ([]models.Offer, error) {
	if strings.TrimSpace(merchantID) == "" {
		return []models.Offer{}, nil
	}
	var offers []models.Offer
	if err := r.db.Where("merchant_id = ?", merchantID).
		Order("created_at ASC").
		Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}

// ListActive 上架中的全部优惠（商城展示），仅包含启用商户
func (r *GormOfferRepository) ListActive() ([]models.Offer, error) {
	var offers []models.Offer
	if err := r.db.Model(&models.Offer{}).
		Select("offers.*").
		Joins("JOIN merchants ON merchants.id = offers.merchant_id AND merchants.active = ?", true).
		Where("offers.active = ?", true).
		Order("offers.created_at ASC").
		Find(&offers).Error; err != nil {
		return nil, err
	}
	return offers, nil
}
