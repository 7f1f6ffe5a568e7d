package service

import (
	"strings"
	"unicode/utf8"

	"github.com/fidelidade-next/internal/models"
)

const (
	offerTitleMaxLen       = 120
	offerDescriptionMaxLen = 2000
)

// 表单字段名
const (
	OfferFieldTitle            = "title"
	OfferFieldDescription      = "description"
	OfferFieldTotalPrice       = "total_price"
	OfferFieldPointsPercentage = "points_percentage"
	OfferFieldValidUntil       = "valid_until"
)

// OfferDraft 优惠表单草稿，提交前的原始输入
type OfferDraft struct {
	Title            string
	Description      string
	TotalPrice       string
	PointsPercentage int
	ValidUntil       string
	ImageURL         string
}

// FieldError 单个字段的校验失败
type FieldError struct {
	Field string `json:"field"`
	Key   string `json:"key"`
}

// OfferValidationError 聚合全部字段错误
type OfferValidationError struct {
	Fields []FieldError
}

func (e *OfferValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, field.Field)
	}
	return "offer invalid: " + strings.Join(parts, ",")
}

// Is 与 ErrOfferInvalid 等价，便于 errors.Is 统一映射
func (e *OfferValidationError) Is(target error) bool {
	return target == ErrOfferInvalid
}

// FieldErrors 失败字段列表
func (e *OfferValidationError) FieldErrors() []FieldError {
	return e.Fields
}

// offerTerms 校验通过后的规范化字段
type offerTerms struct {
	Title            string
	Description      string
	TotalPrice       models.Money
	PointsPercentage int
	PointsRequired   int64
	ValidUntil       models.Date
	ImageURL         string
}

// ValidateOfferDraft 校验草稿，返回全部失败字段（为空表示通过）
func ValidateOfferDraft(draft OfferDraft) []FieldError {
	_, fieldErrors := normalizeOfferDraft(draft)
	return fieldErrors
}

func normalizeOfferDraft(draft OfferDraft) (offerTerms, []FieldError) {
	var terms offerTerms
	var fieldErrors []FieldError
	fail := func(field, key string) {
		fieldErrors = append(fieldErrors, FieldError{Field: field, Key: key})
	}

	terms.Title = strings.TrimSpace(draft.Title)
	switch {
	case terms.Title == "":
		fail(OfferFieldTitle, "error.offer_title_required")
	case utf8.RuneCountInString(terms.Title) > offerTitleMaxLen:
		fail(OfferFieldTitle, "error.offer_title_too_long")
	}

	terms.Description = strings.TrimSpace(draft.Description)
	switch {
	case terms.Description == "":
		fail(OfferFieldDescription, "error.offer_description_required")
	case utf8.RuneCountInString(terms.Description) > offerDescriptionMaxLen:
		fail(OfferFieldDescription, "error.offer_description_too_long")
	}

	priceValid := false
	if strings.TrimSpace(draft.TotalPrice) == "" {
		fail(OfferFieldTotalPrice, "error.offer_price_required")
	} else if price, err := models.ParseMoney(draft.TotalPrice); err != nil {
		fail(OfferFieldTotalPrice, "error.offer_price_invalid")
	} else if price.IsNegative() {
		fail(OfferFieldTotalPrice, "error.offer_price_invalid")
	} else {
		terms.TotalPrice = price
		priceValid = true
	}

	pctValid := draft.PointsPercentage >= MinPointsPercentage && draft.PointsPercentage <= MaxPointsPercentage
	if !pctValid {
		fail(OfferFieldPointsPercentage, "error.offer_percentage_invalid")
	} else {
		terms.PointsPercentage = draft.PointsPercentage
	}

	if strings.TrimSpace(draft.ValidUntil) == "" {
		fail(OfferFieldValidUntil, "error.offer_valid_until_required")
	} else if validUntil, err := models.ParseDate(draft.ValidUntil); err != nil {
		fail(OfferFieldValidUntil, "error.offer_valid_until_invalid")
	} else {
		terms.ValidUntil = validUntil
	}

	terms.ImageURL = strings.TrimSpace(draft.ImageURL)

	if priceValid && pctValid {
		points, err := ComputeRequiredPoints(terms.TotalPrice.Decimal, terms.PointsPercentage)
		if err != nil {
			fail(OfferFieldTotalPrice, "error.offer_price_invalid")
		} else {
			terms.PointsRequired = points
		}
	}
	return terms, fieldErrors
}
