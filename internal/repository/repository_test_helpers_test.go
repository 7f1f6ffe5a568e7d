package repository

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var seedSeq atomic.Int64

func setupRepositoryTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_test_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateTo(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func seedProfile(t *testing.T, db *gorm.DB, email, name, role string) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		Email:        email,
		Name:         name,
		PasswordHash: "hash",
		Role:         role,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	return profile
}

func seedMerchant(t *testing.T, db *gorm.DB, storeName, city string, active bool) *models.Merchant {
	t.Helper()
	owner := seedProfile(t, db, fmt.Sprintf("loja%d@example.com", seedSeq.Add(1)), storeName, constants.RoleMerchant)
	merchant := &models.Merchant{
		ID:        owner.ID,
		StoreName: storeName,
		City:      city,
		Active:    true,
	}
	if err := db.Create(merchant).Error; err != nil {
		t.Fatalf("create merchant failed: %v", err)
	}
	if !active {
		if err := db.Model(merchant).Update("active", false).Error; err != nil {
			t.Fatalf("deactivate merchant failed: %v", err)
		}
		merchant.Active = false
	}
	return merchant
}

func seedOffer(t *testing.T, db *gorm.DB, merchantID, title string, active bool) *models.Offer {
	t.Helper()
	validUntil, _ := models.ParseDate("2099-12-31")
	offer := &models.Offer{
		MerchantID:       merchantID,
		Title:            title,
		Description:      title + " desc",
		TotalPrice:       models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		PointsPercentage: 10,
		PointsRequired:   1000,
		ValidUntil:       validUntil,
		Active:           true,
	}
	if err := db.Create(offer).Error; err != nil {
		t.Fatalf("create offer failed: %v", err)
	}
	if !active {
		if err := db.Model(offer).Update("active", false).Error; err != nil {
			t.Fatalf("deactivate offer failed: %v", err)
		}
		offer.Active = false
	}
	return offer
}
