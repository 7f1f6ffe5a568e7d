package service

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

var serviceSeedSeq atomic.Int64

func setupServiceTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_service_test_%d?mode=memory&cache=shared", name, time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := models.MigrateTo(db); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func seedTestProfile(t *testing.T, db *gorm.DB, role string) *models.Profile {
	t.Helper()
	seq := serviceSeedSeq.Add(1)
	profile := &models.Profile{
		Email:        fmt.Sprintf("%s%d@example.com", role, seq),
		Name:         fmt.Sprintf("%s %d", role, seq),
		PasswordHash: "hash",
		Role:         role,
		Status:       constants.UserStatusActive,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("create profile failed: %v", err)
	}
	return profile
}

func seedTestMerchant(t *testing.T, db *gorm.DB, storeName, city string, active bool) *models.Merchant {
	t.Helper()
	owner := seedTestProfile(t, db, constants.RoleMerchant)
	merchant := &models.Merchant{ID: owner.ID, StoreName: storeName, City: city, Active: true}
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

type publishedOffer struct {
	Kind  string
	Offer models.Offer
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedOffer
}

func (p *recordingPublisher) OfferChanged(ctx context.Context, kind string, offer models.Offer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedOffer{Kind: kind, Offer: offer})
}

func (p *recordingPublisher) snapshot() []publishedOffer {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]publishedOffer, len(p.events))
	copy(out, p.events)
	return out
}

func validDraft(price string, pct int) OfferDraft {
	return OfferDraft{
		Title:            "Pizza grande",
		Description:      "Pizza grande com borda recheada",
		TotalPrice:       price,
		PointsPercentage: pct,
		ValidUntil:       "2099-12-31",
	}
}
