package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/models"
	"github.com/fidelidade-next/internal/repository"

	"gorm.io/gorm"
)

const pointsReasonMaxLen = 200

// MaxPointsBalance 单个门店积分余额上限
const MaxPointsBalance int64 = 1_000_000_000_000_000

// 加入门店结果
const (
	EnrollStatusCreated         = "created"
	EnrollStatusAlreadyEnrolled = "already_enrolled"
)

// EnrollResult 加入门店结果
type EnrollResult struct {
	Status string                   `json:"status"`
	Record *models.EnrollmentRecord `json:"record,omitempty"`
}

// Created 是否新建了积分账户
func (r EnrollResult) Created() bool {
	return r.Status == EnrollStatusCreated
}

// PointsSummary 顾客积分汇总，总分在读取时计算
type PointsSummary struct {
	Balances []repository.BalanceRow `json:"balances"`
	Total    int64                   `json:"total"`
}

// CustomerLookup 商户查询到的顾客信息
type CustomerLookup struct {
	CustomerID string `json:"customer_id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Enrolled   bool   `json:"enrolled"`
	Points     int64  `json:"points"`
}

// RedeemResult 兑换结果
type RedeemResult struct {
	OfferID      string `json:"offer_id"`
	MerchantID   string `json:"merchant_id"`
	PointsSpent  int64  `json:"points_spent"`
	BalanceAfter int64  `json:"balance_after"`
}

// EnrollmentService 门店积分账本服务
type EnrollmentService struct {
	enrollmentRepo repository.EnrollmentRepository
	merchantRepo   repository.MerchantRepository
	profileRepo    repository.ProfileRepository
	offerRepo      repository.OfferRepository
	now            func() time.Time
}

// NewEnrollmentService 创建积分账本服务
func NewEnrollmentService(
	enrollmentRepo repository.EnrollmentRepository,
	merchantRepo repository.MerchantRepository,
	profileRepo repository.ProfileRepository,
	offerRepo repository.OfferRepository,
) *EnrollmentService {
	return &EnrollmentService{
		enrollmentRepo: enrollmentRepo,
		merchantRepo:   merchantRepo,
		profileRepo:    profileRepo,
		offerRepo:      offerRepo,
		now:            time.Now,
	}
}

// Enroll 顾客加入门店，重复加入不会新建账户也不会重置余额
func (s *EnrollmentService) Enroll(ctx context.Context, customerID, merchantID string) (EnrollResult, error) {
	customerID = strings.TrimSpace(customerID)
	merchantID = strings.TrimSpace(merchantID)
	if customerID == "" {
		return EnrollResult{}, ErrCustomerNotFound
	}
	merchant, err := s.merchantRepo.GetByID(merchantID)
	if err != nil {
		return EnrollResult{}, err
	}
	if merchant == nil || !merchant.Active {
		return EnrollResult{}, ErrMerchantNotFound
	}

	result := EnrollResult{Status: EnrollStatusAlreadyEnrolled}
	err = s.enrollmentRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.enrollmentRepo.WithTx(tx)
		record := &models.EnrollmentRecord{CustomerID: customerID, MerchantID: merchantID, Points: 0}
		inserted, err := repo.InsertIfAbsent(record)
		if err != nil {
			return err
		}
		if !inserted {
			existing, err := repo.Get(customerID, merchantID)
			if err != nil {
				return err
			}
			result.Record = existing
			return nil
		}
		if err := repo.CreateTransaction(&models.PointsTransaction{
			EnrollmentID: record.ID,
			CustomerID:   customerID,
			MerchantID:   merchantID,
			Type:         constants.PointsTxnTypeEnroll,
			Points:       0,
			BalanceAfter: 0,
		}); err != nil {
			return err
		}
		result.Status = EnrollStatusCreated
		result.Record = record
		return nil
	})
	if err != nil {
		logger.Errorw("enrollment_insert_failed", "customer_id", customerID, "merchant_id", merchantID, "error", err)
		return EnrollResult{}, ErrEnrollmentFailed
	}
	logger.Infow("enrollment_processed", "customer_id", customerID, "merchant_id", merchantID, "status", result.Status)
	return result, nil
}

// Accrue 商户为已加入的顾客增加积分，余额不得超过 MaxPointsBalance
func (s *EnrollmentService) Accrue(ctx context.Context, merchantID, customerID string, points int64, reason string) (*models.PointsTransaction, error) {
	if points <= 0 || points > MaxPointsBalance {
		return nil, ErrPointsAmountInvalid
	}
	reason = truncateRunes(strings.TrimSpace(reason), pointsReasonMaxLen)

	var txn *models.PointsTransaction
	err := s.enrollmentRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.enrollmentRepo.WithTx(tx)
		record, err := repo.GetForUpdate(customerID, merchantID)
		if err != nil {
			return err
		}
		if record == nil {
			return ErrNotEnrolled
		}
		if points > MaxPointsBalance-record.Points {
			return ErrPointsAmountInvalid
		}
		balance := record.Points + points
		if err := repo.UpdatePoints(record.ID, balance); err != nil {
			return err
		}
		txn = &models.PointsTransaction{
			EnrollmentID: record.ID,
			CustomerID:   record.CustomerID,
			MerchantID:   record.MerchantID,
			Type:         constants.PointsTxnTypeAccrue,
			Points:       points,
			BalanceAfter: balance,
			Reason:       reason,
		}
		return repo.CreateTransaction(txn)
	})
	if err != nil {
		if errors.Is(err, ErrNotEnrolled) || errors.Is(err, ErrPointsAmountInvalid) {
			return nil, err
		}
		logger.Errorw("points_accrue_failed", "merchant_id", merchantID, "customer_id", customerID, "points", points, "error", err)
		return nil, ErrPointsUpdateFailed
	}
	logger.Infow("points_accrued", "merchant_id", merchantID, "customer_id", customerID, "points", points, "balance_after", txn.BalanceAfter)
	return txn, nil
}

// Redeem 顾客使用门店积分兑换优惠
func (s *EnrollmentService) Redeem(ctx context.Context, customerID, offerID string) (*RedeemResult, error) {
	offer, err := s.offerRepo.GetByID(strings.TrimSpace(offerID))
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}
	if !offer.Active {
		return nil, ErrOfferInactive
	}
	if offer.Expired(s.now()) {
		return nil, ErrOfferExpired
	}
	merchant, err := s.merchantRepo.GetByID(offer.MerchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil || !merchant.Active {
		return nil, ErrMerchantInactive
	}

	var result *RedeemResult
	err = s.enrollmentRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.enrollmentRepo.WithTx(tx)
		record, err := repo.GetForUpdate(customerID, offer.MerchantID)
		if err != nil {
			return err
		}
		if record == nil {
			return ErrNotEnrolled
		}
		if record.Points < offer.PointsRequired {
			return ErrInsufficientPoints
		}
		balance := record.Points - offer.PointsRequired
		if err := repo.UpdatePoints(record.ID, balance); err != nil {
			return err
		}
		offerRef := offer.ID
		if err := repo.CreateTransaction(&models.PointsTransaction{
			EnrollmentID: record.ID,
			CustomerID:   record.CustomerID,
			MerchantID:   record.MerchantID,
			Type:         constants.PointsTxnTypeRedeem,
			Points:       -offer.PointsRequired,
			BalanceAfter: balance,
			OfferID:      &offerRef,
			Reason:       offer.Title,
		}); err != nil {
			return err
		}
		result = &RedeemResult{
			OfferID:      offer.ID,
			MerchantID:   offer.MerchantID,
			PointsSpent:  offer.PointsRequired,
			BalanceAfter: balance,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotEnrolled) || errors.Is(err, ErrInsufficientPoints) {
			return nil, err
		}
		logger.Errorw("points_redeem_failed", "customer_id", customerID, "offer_id", offer.ID, "error", err)
		return nil, ErrPointsUpdateFailed
	}
	logger.Infow("points_redeemed", "customer_id", customerID, "offer_id", offer.ID, "points", offer.PointsRequired, "balance_after", result.BalanceAfter)
	return result, nil
}

// ListBalances 顾客各门店积分
func (s *EnrollmentService) ListBalances(customerID string) ([]repository.BalanceRow, error) {
	return s.enrollmentRepo.ListBalances(strings.TrimSpace(customerID))
}

// Summary 顾客积分汇总
func (s *EnrollmentService) Summary(customerID string) (*PointsSummary, error) {
	balances, err := s.ListBalances(customerID)
	if err != nil {
		return nil, err
	}
	return &PointsSummary{Balances: balances, Total: totalPoints(balances)}, nil
}

// SearchMerchants 按城市搜索可加入的门店，空白条件返回空列表
func (s *EnrollmentService) SearchMerchants(city string) ([]models.Merchant, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return []models.Merchant{}, nil
	}
	return s.merchantRepo.SearchByCity(city)
}

// ListTransactions 积分流水
func (s *EnrollmentService) ListTransactions(filter repository.PointsTransactionListFilter) ([]models.PointsTransaction, int64, error) {
	return s.enrollmentRepo.ListTransactions(filter)
}

// LookupCustomer 商户按 ID 或邮箱查询顾客及其在本店的积分
func (s *EnrollmentService) LookupCustomer(merchantID, customerRef string) (*CustomerLookup, error) {
	customerRef = strings.TrimSpace(customerRef)
	if customerRef == "" {
		return nil, ErrCustomerRefInvalid
	}
	var (
		profile *models.Profile
		err     error
	)
	if strings.Contains(customerRef, "@") {
		profile, err = s.profileRepo.GetByEmail(customerRef)
	} else {
		profile, err = s.profileRepo.GetByID(customerRef)
	}
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.Role != constants.RoleCustomer {
		return nil, ErrCustomerNotFound
	}
	lookup := &CustomerLookup{CustomerID: profile.ID, Name: profile.Name, Email: profile.Email}
	record, err := s.enrollmentRepo.Get(profile.ID, merchantID)
	if err != nil {
		return nil, err
	}
	if record != nil {
		lookup.Enrolled = true
		lookup.Points = record.Points
	}
	return lookup, nil
}

// ResolveCustomerID 将顾客 ID 或邮箱解析为顾客 ID
func (s *EnrollmentService) ResolveCustomerID(customerRef string) (string, error) {
	lookup, err := s.LookupCustomer("", customerRef)
	if err != nil {
		return "", err
	}
	return lookup.CustomerID, nil
}

func totalPoints(balances []repository.BalanceRow) int64 {
	var total int64
	for _, row := range balances {
		total += row.Points
	}
	return total
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
