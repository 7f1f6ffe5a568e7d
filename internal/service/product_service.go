package service

import (
	"strings"
	"unicode/utf8"

	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/models"
	"github.com/fidelidade-next/internal/repository"
)

const productNameMaxLen = 120

// ProductInput 后台商品表单
type ProductInput struct {
	Category         string
	Name             string
	Description      string
	Price            string
	PointsPercentage int
	ImageURL         string
}

// ProductService 积分商城商品服务
type ProductService struct {
	productRepo repository.ProductRepository
}

// NewProductService 创建商品服务
func NewProductService(productRepo repository.ProductRepository) *ProductService {
	return &ProductService{productRepo: productRepo}
}

// Create 后台新增商品，积分价格按价格与比例推导
func (s *ProductService) Create(createdBy string, input ProductInput) (*models.Product, error) {
	product, fieldErrors := normalizeProductInput(input)
	if len(fieldErrors) > 0 {
		return nil, &ProductValidationError{Fields: fieldErrors}
	}
	product.CreatedBy = strings.TrimSpace(createdBy)
	product.Active = true
	if err := s.productRepo.Create(product); err != nil {
		return nil, err
	}
	logger.Infow("product_created", "product_id", product.ID, "category", product.Category, "points_price", product.PointsPrice)
	return product, nil
}

// Get 获取商品
func (s *ProductService) Get(id string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// ListStore 商城商品列表，仅上架
func (s *ProductService) ListStore(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	filter.OnlyActive = true
	filter.Category = strings.ToLower(strings.TrimSpace(filter.Category))
	return s.productRepo.List(filter)
}

// ProductValidationError 商品表单字段错误
type ProductValidationError struct {
	Fields []FieldError
}

func (e *ProductValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, field := range e.Fields {
		parts = append(parts, field.Field)
	}
	return "product invalid: " + strings.Join(parts, ",")
}

// Is 与 ErrProductInvalid 等价
func (e *ProductValidationError) Is(target error) bool {
	return target == ErrProductInvalid
}

// FieldErrors 失败字段列表
func (e *ProductValidationError) FieldErrors() []FieldError {
	return e.Fields
}

func normalizeProductInput(input ProductInput) (*models.Product, []FieldError) {
	product := &models.Product{}
	var fieldErrors []FieldError
	fail := func(field, key string) {
		fieldErrors = append(fieldErrors, FieldError{Field: field, Key: key})
	}

	product.Category = strings.ToLower(strings.TrimSpace(input.Category))
	if !isProductCategory(product.Category) {
		fail("category", "error.product_category_invalid")
	}
	product.Name = strings.TrimSpace(input.Name)
	if product.Name == "" || utf8.RuneCountInString(product.Name) > productNameMaxLen {
		fail("name", "error.product_name_invalid")
	}
	product.Description = strings.TrimSpace(input.Description)
	product.ImageURL = strings.TrimSpace(input.ImageURL)

	price, err := models.ParseMoney(input.Price)
	priceValid := err == nil && !price.IsNegative() && strings.TrimSpace(input.Price) != ""
	if !priceValid {
		fail("price", "error.product_price_invalid")
	} else {
		product.Price = price
	}
	if input.PointsPercentage < MinPointsPercentage || input.PointsPercentage > MaxPointsPercentage {
		fail("points_percentage", "error.offer_percentage_invalid")
	} else if priceValid {
		points, err := ComputeRequiredPoints(price.Decimal, input.PointsPercentage)
		if err != nil {
			fail("price", "error.product_price_invalid")
		} else {
			product.PointsPercentage = input.PointsPercentage
			product.PointsPrice = points
		}
	}
	return product, fieldErrors
}

func isProductCategory(category string) bool {
	for _, item := range constants.ProductCategories {
		if item == category {
			return true
		}
	}
	return false
}
