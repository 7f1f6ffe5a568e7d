package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/fidelidade-next/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnrollmentRepository 积分账户数据访问接口
type EnrollmentRepository interface {
	InsertIfAbsent(record *models.EnrollmentRecord) (bool, error)
	Get(customerID string, merchantID string) (*models.EnrollmentRecord, error)
	GetForUpdate(customerID string, merchantID string) (*models.EnrollmentRecord, error)
	UpdatePoints(id string, points int64) error
	ListBalances(customerID string) ([]BalanceRow, error)
	SumPointsByCustomer() ([]CustomerPointsRow, error)
	CreateTransaction(txn *models.PointsTransaction) error
	ListTransactions(filter PointsTransactionListFilter) ([]models.PointsTransaction, int64, error)
	WithTx(tx *gorm.DB) *GormEnrollmentRepository
	Transaction(fn func(tx *gorm.DB) error) error
}

// GormEnrollmentRepository GORM 实现
type GormEnrollmentRepository struct {
	db *gorm.DB
}

// NewEnrollmentRepository 创建积分账户仓库
func NewEnrollmentRepository(db *gorm.DB) *GormEnrollmentRepository {
	return &GormEnrollmentRepository{db: db}
}

// WithTx 绑定事务
func (r *GormEnrollmentRepository) WithTx(tx *gorm.DB) *GormEnrollmentRepository {
	if tx == nil {
		return r
	}
	return &GormEnrollmentRepository{db: tx}
}

// Transaction 在事务中执行
func (r *GormEnrollmentRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

// InsertIfAbsent 插入积分账户，(customer_id, merchant_id) 已存在时不写入并返回 false
func (r *GormEnrollmentRepository) InsertIfAbsent(record *models.EnrollmentRecord) (bool, error) {
	if record == nil {
		return false, nil
	}
	result := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "customer_id"}, {Name: "merchant_id"}},
		DoNothing: true,
	}).Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// Get 获取顾客在指定商户的积分账户
func (r *GormEnrollmentRepository) Get(customerID string, merchantID string) (*models.EnrollmentRecord, error) {
	return r.get(r.db, customerID, merchantID)
}

// GetForUpdate 加锁获取积分账户
func (r *GormEnrollmentRepository) GetForUpdate(customerID string, merchantID string) (*models.EnrollmentRecord, error) {
	query := r.db
	if dialectOf(r.db).supportsRowLock() {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.get(query, customerID, merchantID)
}

func (r *GormEnrollmentRepository) get(query *gorm.DB, customerID string, merchantID string) (*models.EnrollmentRecord, error) {
	if strings.TrimSpace(customerID) == "" || strings.TrimSpace(merchantID) == "" {
		return nil, nil
	}
	var record models.EnrollmentRecord
	if err := query.Where("customer_id = ? AND merchant_id = ?", customerID, merchantID).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// UpdatePoints 写入新的积分余额
func (r *GormEnrollmentRepository) UpdatePoints(id string, points int64) error {
	return r.db.Model(&models.EnrollmentRecord{}).Where("id = ?", id).Updates(map[string]interface{}{
		"points":     points,
		"updated_at": time.Now(),
	}).Error
}

// ListBalances 顾客各门店积分余额（关联门店名称），按加入顺序
func (r *GormEnrollmentRepository) ListBalances(customerID string) ([]BalanceRow, error) {
	rows := make([]BalanceRow, 0)
	if strings.TrimSpace(customerID) == "" {
		return rows, nil
	}
	if err := r.db.Table("customer_points AS cp").
		Select("cp.merchant_id AS merchant_id, m.store_name AS store_name, m.city AS city, cp.points AS points").
		Joins("JOIN merchants m ON m.id = cp.merchant_id").
		Where("cp.customer_id = ?", customerID).
		Order("cp.created_at ASC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SumPointsByCustomer 按顾客汇总积分
func (r *GormEnrollmentRepository) SumPointsByCustomer() ([]CustomerPointsRow, error) {
	rows := make([]CustomerPointsRow, 0)
	if err := r.db.Table("customer_points AS cp").
		Select("cp.customer_id AS customer_id, p.name AS name, p.email AS email, COUNT(cp.id) AS store_count, COALESCE(SUM(cp.points), 0) AS total_points").
		Joins("JOIN profiles p ON p.id = cp.customer_id").
		Group("cp.customer_id, p.name, p.email").
		Order("total_points DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateTransaction 写入积分流水
func (r *GormEnrollmentRepository) CreateTransaction(txn *models.PointsTransaction) error {
	return r.db.Create(txn).Error
}

// ListTransactions 分页查询积分流水
func (r *GormEnrollmentRepository) ListTransactions(filter PointsTransactionListFilter) ([]models.PointsTransaction, int64, error) {
	query := r.db.Model(&models.PointsTransaction{})
	if filter.CustomerID != "" {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.MerchantID != "" {
		query = query.Where("merchant_id = ?", filter.MerchantID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
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

	var txns []models.PointsTransaction
	if err := query.Order("created_at DESC").Find(&txns).Error; err != nil {
		return nil, 0, err
	}
	return txns, total, nil
}
