package service

import (
	"context"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/models"
	"github.com/fidelidade-next/internal/repository"
)

const storeNameMaxLen = 120

var (
	cnpjDigitsPattern = regexp.MustCompile(`^\d{14}$`)
	zipDigitsPattern  = regexp.MustCompile(`^\d{8}$`)
	statePattern      = regexp.MustCompile(`^[A-Z]{2}$`)
)

// StorefrontReloader 商户启停后刷新商城视图
type StorefrontReloader interface {
	Reload() error
}

// MerchantOfferBroadcaster 门店启停后向其他实例同步该门店优惠
type MerchantOfferBroadcaster interface {
	BroadcastMerchantActive(ctx context.Context, merchantID string, active bool) error
}

// MerchantSettingsInput 门店资料
type MerchantSettingsInput struct {
	StoreName string
	City      string
	CNPJ      string
	Street    string
	State     string
	ZipCode   string
	WhatsApp  string
}

// MerchantService 门店资料与启停
type MerchantService struct {
	merchantRepo repository.MerchantRepository
	reloader     StorefrontReloader
	broadcaster  MerchantOfferBroadcaster
}

// NewMerchantService 创建门店服务，reloader 与 broadcaster 均可为空
func NewMerchantService(merchantRepo repository.MerchantRepository, reloader StorefrontReloader, broadcaster MerchantOfferBroadcaster) *MerchantService {
	return &MerchantService{merchantRepo: merchantRepo, reloader: reloader, broadcaster: broadcaster}
}

// GetSettings 获取门店资料
func (s *MerchantService) GetSettings(merchantID string) (*models.Merchant, error) {
	merchant, err := s.merchantRepo.GetByID(strings.TrimSpace(merchantID))
	if err != nil {
		return nil, err
	}
	if merchant == nil {
		return nil, ErrMerchantNotFound
	}
	return merchant, nil
}

// UpdateSettings 更新门店资料
func (s *MerchantService) UpdateSettings(merchantID string, input MerchantSettingsInput) (*models.Merchant, error) {
	merchant, err := s.GetSettings(merchantID)
	if err != nil {
		return nil, err
	}
	merchant.StoreName = strings.TrimSpace(input.StoreName)
	merchant.City = strings.TrimSpace(input.City)
	merchant.CNPJ = strings.TrimSpace(input.CNPJ)
	merchant.Street = strings.TrimSpace(input.Street)
	merchant.State = strings.ToUpper(strings.TrimSpace(input.State))
	merchant.ZipCode = strings.TrimSpace(input.ZipCode)
	merchant.WhatsApp = strings.TrimSpace(input.WhatsApp)
	if err := validateMerchantFields(merchant); err != nil {
		return nil, err
	}
	if err := s.merchantRepo.Update(merchant); err != nil {
		return nil, err
	}
	logger.Infow("merchant_settings_updated", "merchant_id", merchant.ID)
	return merchant, nil
}

// SetActive 后台启用或停用门店，停用后门店优惠退出商城
func (s *MerchantService) SetActive(ctx context.Context, merchantID string, active bool) error {
	merchantID = strings.TrimSpace(merchantID)
	matched, err := s.merchantRepo.SetActive(merchantID, active)
	if err != nil {
		return err
	}
	if !matched {
		return ErrMerchantNotFound
	}
	logger.Infow("merchant_active_changed", "merchant_id", merchantID, "active", active)
	if s.broadcaster != nil {
		if err := s.broadcaster.BroadcastMerchantActive(ctx, merchantID, active); err != nil {
			logger.Warnw("merchant_offers_broadcast_failed", "merchant_id", merchantID, "error", err)
		}
	}
	if s.reloader != nil {
		if err := s.reloader.Reload(); err != nil {
			logger.Warnw("storefront_reload_failed", "merchant_id", merchantID, "error", err)
		}
	}
	return nil
}

// List 后台门店列表
func (s *MerchantService) List(filter repository.MerchantListFilter) ([]models.Merchant, int64, error) {
	return s.merchantRepo.List(filter)
}

func validateMerchantFields(merchant *models.Merchant) error {
	if merchant.StoreName == "" {
		return ErrStoreNameRequired
	}
	if utf8.RuneCountInString(merchant.StoreName) > storeNameMaxLen {
		return merchantFieldError("store_name")
	}
	if merchant.CNPJ != "" && !cnpjDigitsPattern.MatchString(onlyDigits(merchant.CNPJ)) {
		return merchantFieldError("cnpj")
	}
	if merchant.ZipCode != "" && !zipDigitsPattern.MatchString(onlyDigits(merchant.ZipCode)) {
		return merchantFieldError("zip_code")
	}
	if merchant.State != "" && !statePattern.MatchString(merchant.State) {
		return merchantFieldError("state")
	}
	if merchant.WhatsApp != "" {
		digits := onlyDigits(merchant.WhatsApp)
		if len(digits) < 10 || len(digits) > 13 {
			return merchantFieldError("whatsapp")
		}
	}
	return nil
}

// MerchantFieldError 门店字段格式错误
type MerchantFieldError struct {
	Field string
}

func (e *MerchantFieldError) Error() string {
	return "merchant field invalid: " + e.Field
}

// Is 与 ErrMerchantFieldInvalid 等价
func (e *MerchantFieldError) Is(target error) bool {
	return target == ErrMerchantFieldInvalid
}

// FieldErrors 以表单字段错误形式返回
func (e *MerchantFieldError) FieldErrors() []FieldError {
	return []FieldError{{Field: e.Field, Key: "error.merchant_field_invalid"}}
}

func merchantFieldError(field string) error {
	return &MerchantFieldError{Field: field}
}

func onlyDigits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
