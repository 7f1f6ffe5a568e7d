package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"time"

	"github.com/fidelidade-next/internal/config"
	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/logger"
	"github.com/fidelidade-next/internal/models"
	"github.com/fidelidade-next/internal/repository"
	"github.com/fidelidade-next/internal/service"
)

const defaultOfferValidDays = 30

// seeder 通过业务服务写入演示数据，确保积分计算与校验和线上一致
type seeder struct {
	auth     *service.AuthService
	offers   *service.OfferService
	products *service.ProductService
	password string

	created int
	skipped int
	failed  int
}

func main() {
	fixturesPath := flag.String("fixtures", "", "fixtures YAML path, defaults to the embedded data")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	defer func() { _ = logger.Z().Sync() }()

	if err := run(cfg, *fixturesPath); err != nil {
		logger.Errorw("seed_failed", "error", err)
		_ = logger.Z().Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, fixturesPath string) error {
	if err := models.Setup(cfg.Database); err != nil {
		return err
	}
	fixtures, err := loadFixtures(fixturesPath)
	if err != nil {
		return err
	}

	profileRepo := repository.NewProfileRepository(models.DB)
	merchantRepo := repository.NewMerchantRepository(models.DB)
	s := &seeder{
		auth:     service.NewAuthService(cfg, profileRepo, merchantRepo),
		offers:   service.NewOfferService(repository.NewOfferRepository(models.DB), merchantRepo, nil),
		products: service.NewProductService(repository.NewProductRepository(models.DB)),
		password: fixtures.Password,
	}

	ctx := context.Background()
	for _, item := range fixtures.Merchants {
		s.merchant(ctx, item)
	}
	for _, item := range fixtures.Customers {
		s.customer(item)
	}
	for _, item := range fixtures.Products {
		s.product(item)
	}
	logger.Infow("seed_completed", "created", s.created, "skipped", s.skipped, "failed", s.failed)
	return nil
}

func (s *seeder) merchant(ctx context.Context, item MerchantFixture) {
	_, merchant, _, _, err := s.auth.RegisterMerchant(service.MerchantRegistration{
		CustomerRegistration: s.registration(item.Name, item.Email),
		StoreName:            item.StoreName,
		City:                 item.City,
		State:                item.State,
		WhatsApp:             item.WhatsApp,
	})
	if !s.record("merchant", item.Email, err) {
		return
	}
	for _, offer := range item.Offers {
		validDays := offer.ValidDays
		if validDays <= 0 {
			validDays = defaultOfferValidDays
		}
		created, err := s.offers.Create(ctx, merchant.ID, service.OfferDraft{
			Title:            offer.Title,
			Description:      offer.Description,
			TotalPrice:       offer.TotalPrice,
			PointsPercentage: offer.PointsPercentage,
			ValidUntil:       time.Now().AddDate(0, 0, validDays).Format(constants.DateLayout),
		})
		if s.record("offer", offer.Title, err) {
			logger.Debugw("seed_offer_points", "offer", created.Title, "points_required", created.PointsRequired)
		}
	}
}

func (s *seeder) customer(item CustomerFixture) {
	_, _, _, err := s.auth.RegisterCustomer(s.registration(item.Name, item.Email))
	s.record("customer", item.Email, err)
}

func (s *seeder) product(item ProductFixture) {
	_, err := s.products.Create("seed", service.ProductInput{
		Category:         item.Category,
		Name:             item.Name,
		Description:      item.Description,
		Price:            item.Price,
		PointsPercentage: item.PointsPercentage,
	})
	s.record("product", item.Name, err)
}

func (s *seeder) registration(name, email string) service.CustomerRegistration {
	return service.CustomerRegistration{
		Name:            name,
		Email:           email,
		Password:        s.password,
		ConfirmPassword: s.password,
	}
}

// record 统计一条写入结果，已存在的账号记为跳过；返回是否新建成功
func (s *seeder) record(kind, name string, err error) bool {
	switch {
	case err == nil:
		s.created++
		logger.Infow("seed_created", "kind", kind, "name", name)
		return true
	case errors.Is(err, service.ErrEmailExists):
		s.skipped++
		logger.Infow("seed_skipped", "kind", kind, "name", name, "reason", "exists")
	default:
		s.failed++
		logger.Warnw("seed_item_failed", "kind", kind, "name", name, "error", err)
	}
	return false
}
