package service

import (
	"context"
	"strings"

	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/models"
	"github.com/fidelidade-next/internal/repository"
)

// OfferEventPublisher 优惠变更通知
type OfferEventPublisher interface {
	OfferChanged(ctx context.Context, kind string, offer models.Offer)
}

type noopOfferPublisher struct{}

func (noopOfferPublisher) OfferChanged(ctx context.Context, kind string, offer models.Offer) {}

// OfferService 优惠生命周期服务
type OfferService struct {
	offerRepo    repository.OfferRepository
	merchantRepo repository.MerchantRepository
	publisher    OfferEventPublisher
}

// NewOfferService 创建优惠服务
func NewOfferService(offerRepo repository.OfferRepository, merchantRepo repository.MerchantRepository, publisher OfferEventPublisher) *OfferService {
	if publisher == nil {
		publisher = noopOfferPublisher{}
	}
	return &OfferService{
		offerRepo:    offerRepo,
		merchantRepo: merchantRepo,
		publisher:    publisher,
	}
}

// Create 商户新建优惠，创建即上架
func (s *OfferService) Create(ctx context.Context, merchantID string, draft OfferDraft) (*models.Offer, error) {
	if _, err := s.requireActiveMerchant(merchantID); err != nil {
		return nil, err
	}
	terms, fieldErrors := normalizeOfferDraft(draft)
	if len(fieldErrors) > 0 {
		return nil, &OfferValidationError{Fields: fieldErrors}
	}

	offer := &models.Offer{
		MerchantID:       merchantID,
		Title:            terms.Title,
		Description:      terms.Description,
		TotalPrice:       terms.TotalPrice,
		PointsPercentage: terms.PointsPercentage,
		PointsRequired:   terms.PointsRequired,
		ValidUntil:       terms.ValidUntil,
		ImageURL:         terms.ImageURL,
		Active:           true,
	}
	if err := s.offerRepo.Create(offer); err != nil {
		return nil, err
	}
	logger.Infow("offer_created",
		"offer_id", offer.ID,
		"merchant_id", merchantID,
		"points_required", offer.PointsRequired,
	)
	s.publisher.OfferChanged(ctx, constants.FeedEventInsert, *offer)
	return offer, nil
}

// Update 商户编辑优惠，积分按新价格与比例重新计算
func (s *OfferService) Update(ctx context.Context, merchantID, offerID string, draft OfferDraft) (*models.Offer, error) {
	merchantID = strings.TrimSpace(merchantID)
	offerID = strings.TrimSpace(offerID)
	if merchantID == "" || offerID == "" {
		return nil, ErrOfferNotFound
	}
	if _, err := s.requireActiveMerchant(merchantID); err != nil {
		return nil, err
	}
	terms, fieldErrors := normalizeOfferDraft(draft)
	if len(fieldErrors) > 0 {
		return nil, &OfferValidationError{Fields: fieldErrors}
	}

	matched, err := s.offerRepo.UpdateOwned(&models.Offer{
		ID:               offerID,
		MerchantID:       merchantID,
		Title:            terms.Title,
		Description:      terms.Description,
		TotalPrice:       terms.TotalPrice,
		PointsPercentage: terms.PointsPercentage,
		PointsRequired:   terms.PointsRequired,
		ValidUntil:       terms.ValidUntil,
		ImageURL:         terms.ImageURL,
	})
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrOfferNotFound
	}

	offer, err := s.offerRepo.GetOwned(offerID, merchantID)
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}
	logger.Infow("offer_updated", "offer_id", offerID, "merchant_id", merchantID, "points_required", offer.PointsRequired)
	s.publisher.OfferChanged(ctx, constants.FeedEventUpdate, *offer)
	return offer, nil
}

// ToggleStatus 切换上下架状态
func (s *OfferService) ToggleStatus(ctx context.Context, merchantID, offerID string) (*models.Offer, error) {
	if _, err := s.requireActiveMerchant(merchantID); err != nil {
		return nil, err
	}
	offer, err := s.offerRepo.GetOwned(strings.TrimSpace(offerID), strings.TrimSpace(merchantID))
	if err != nil {
		return nil, err
	}
	if offer == nil {
		return nil, ErrOfferNotFound
	}
	next := !offer.Active
	matched, err := s.offerRepo.SetActiveOwned(offer.ID, offer.MerchantID, next)
	if err != nil {
		return nil, err
	}
	if !matched {
		return nil, ErrOfferNotFound
	}
	offer.Active = next
	logger.Infow("offer_status_toggled", "offer_id", offer.ID, "merchant_id", offer.MerchantID, "active", next)
	s.publisher.OfferChanged(ctx, constants.FeedEventUpdate, *offer)
	return offer, nil
}

// BroadcastMerchantActive 门店启停后逐条推送其优惠，停用时按删除推送
func (s *OfferService) BroadcastMerchantActive(ctx context.Context, merchantID string, active bool) error {
	offers, err := s.offerRepo.ListByMerchant(strings.TrimSpace(merchantID))
	if err != nil {
		return err
	}
	kind := constants.FeedEventUpdate
	if !active {
		kind = constants.FeedEventDelete
	}
	for _, offer := range offers {
		s.publisher.OfferChanged(ctx, kind, offer)
	}
	logger.Infow("merchant_offers_broadcast", "merchant_id", merchantID, "kind", kind, "count", len(offers))
	return nil
}

// ListForMerchant 商户全部优惠，含已下架
func (s *OfferService) ListForMerchant(merchantID string) ([]models.Offer, error) {
	return s.offerRepo.ListByMerchant(strings.TrimSpace(merchantID))
}

// ListStorefront 商城可见优惠
func (s *OfferService) ListStorefront() ([]models.Offer, error) {
	return s.offerRepo.ListActive()
}

// ListAll 后台分页查看全部优惠
func (s *OfferService) ListAll(filter repository.OfferListFilter) ([]models.Offer, int64, error) {
	return s.offerRepo.List(filter)
}

func (s *OfferService) requireActiveMerchant(merchantID string) (*models.Merchant, error) {
	merchantID = strings.TrimSpace(merchantID)
	if merchantID == "" || s.merchantRepo == nil {
		return nil, ErrMerchantNotFound
	}
	merchant, err := s.merchantRepo.GetByID(merchantID)
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, ErrMerchantNotFound
	}
	if !merchant.Active {
		return nil, ErrMerchantInactive
	}
	return merchant, nil
}
