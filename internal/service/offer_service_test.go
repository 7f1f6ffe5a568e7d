package service

import (
	"context"
	"errors"
	"testing"

	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/realtime"
	"github.com/fidelidade-next/internal/repository"

	"gorm.io/gorm"
)

func setupOfferServiceTest(t *testing.T, publisher OfferEventPublisher) (*OfferService, *repository.GormOfferRepository, *gorm.DB) {
	t.Helper()
	db := setupServiceTestDB(t, "offer")
	offerRepo := repository.NewOfferRepository(db)
	merchantRepo := repository.NewMerchantRepository(db)
	return NewOfferService(offerRepo, merchantRepo, publisher), offerRepo, db
}

func TestOfferServiceCreateComputesPointsAndPublishes(t *testing.T) {
	publisher := &recordingPublisher{}
	svc, _, db := setupOfferServiceTest(t, publisher)
	merchant := seedTestMerchant(t, db, "Pizzaria", "Recife", true)

	offer, err := svc.Create(context.Background(), merchant.ID, validDraft("300.00", 20))
	if err != nil {
		t.Fatalf("create offer failed: %v", err)
	}
	if offer.PointsRequired != 6000 {
		t.Fatalf("expected 6000 points, got %d", offer.PointsRequired)
	}
	if !offer.Active {
		t.Fatalf("new offer should be active")
	}
	events := publisher.snapshot()
	if len(events) != 1 || events[0].Kind != constants.FeedEventInsert || events[0].Offer.ID != offer.ID {
		t.Fatalf("unexpected published events: %+v", events)
	}
}

func TestOfferServiceCreateRejectsInvalidDraft(t *testing.T) {
	publisher := &recordingPublisher{}
	svc, _, db := setupOfferServiceTest(t, publisher)
	merchant := seedTestMerchant(t, db, "Pizzaria", "Recife", true)

	_, err := svc.Create(context.Background(), merchant.ID, OfferDraft{TotalPrice: "abc", PointsPercentage: 0})
	if !errors.Is(err, ErrOfferInvalid) {
		t.Fatalf("expected ErrOfferInvalid, got %v", err)
	}
	var validationErr *OfferValidationError
	if !errors.As(err, &validationErr) || len(validationErr.Fields) != 5 {
		t.Fatalf("expected five field errors, got %+v", err)
	}
	if len(publisher.snapshot()) != 0 {
		t.Fatalf("invalid draft should not publish")
	}
}

func TestOfferServiceCreateRequiresActiveMerchant(t *testing.T) {
	svc, _, db := setupOfferServiceTest(t, nil)
	merchant := seedTestMerchant(t, db, "Fechada", "Recife", false)

	if _, err := svc.Create(context.Background(), merchant.ID, validDraft("10", 10)); !errors.Is(err, ErrMerchantInactive) {
		t.Fatalf("expected ErrMerchantInactive, got %v", err)
	}
	if _, err := svc.Create(context.Background(), "missing", validDraft("10", 10)); !errors.Is(err, ErrMerchantNotFound) {
		t.Fatalf("expected ErrMerchantNotFound, got %v", err)
	}
}

func TestOfferServiceUpdateRecomputesPoints(t *testing.T) {
	publisher := &recordingPublisher{}
	svc, _, db := setupOfferServiceTest(t, publisher)
	merchant := seedTestMerchant(t, db, "Pizzaria", "Recife", true)
	offer, err := svc.Create(context.Background(), merchant.ID, validDraft("300.00", 20))
	if err != nil {
		t.Fatalf("create offer failed: %v", err)
	}

	updated, err := svc.Update(context.Background(), merchant.ID, offer.ID, validDraft("200.00", 10))
	if err != nil {
		t.Fatalf("update offer failed: %v", err)
	}
	if updated.PointsRequired != 2000 {
		t.Fatalf("expected 2000 points, got %d", updated.PointsRequired)
	}
	events := publisher.snapshot()
	if len(events) != 2 || events[1].Kind != constants.FeedEventUpdate {
		t.Fatalf("expected update event, got %+v", events)
	}
}

func TestOfferServiceUpdateForeignOfferNotFound(t *testing.T) {
	publisher := &recordingPublisher{}
	svc, _, db := setupOfferServiceTest(t, publisher)
	owner := seedTestMerchant(t, db, "Dona", "Recife", true)
	other := seedTestMerchant(t, db, "Outra", "Olinda", true)
	offer, err := svc.Create(context.Background(), owner.ID, validDraft("50", 50))
	if err != nil {
		t.Fatalf("create offer failed: %v", err)
	}

	if _, err := svc.Update(context.Background(), other.ID, offer.ID, validDraft("1", 1)); !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("expected ErrOfferNotFound, got %v", err)
	}
	if _, err := svc.Update(context.Background(), owner.ID, "missing", validDraft("1", 1)); !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("expected ErrOfferNotFound for missing id, got %v", err)
	}
	if _, err := svc.ToggleStatus(context.Background(), other.ID, offer.ID); !errors.Is(err, ErrOfferNotFound) {
		t.Fatalf("expected ErrOfferNotFound on foreign toggle, got %v", err)
	}
	if len(publisher.snapshot()) != 1 {
		t.Fatalf("rejected edits should not publish")
	}
}

func TestOfferServiceToggleFlowsThroughStorefront(t *testing.T) {
	hub := realtime.NewHub(8, nil)
	svc, offerRepo, db := setupOfferServiceTest(t, hub)
	view := realtime.NewStorefrontView(hub, offerRepo.ListActive, 0)
	if err := view.Attach(); err != nil {
		t.Fatalf("attach storefront failed: %v", err)
	}
	sub, err := hub.Subscribe(nil)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer hub.Unsubscribe(sub)

	merchant := seedTestMerchant(t, db, "Pizzaria", "Recife", true)
	merchantCache := realtime.NewMerchantCache(merchant.ID)
	apply := func() {
		event := <-sub.C()
		merchantCache.Apply(event)
		view.Cache().Apply(event)
	}

	offer, err := svc.Create(context.Background(), merchant.ID, validDraft("300", 20))
	if err != nil {
		t.Fatalf("create offer failed: %v", err)
	}
	apply()
	if got, ok := view.Cache().Get(offer.ID); !ok || got.PointsRequired != 6000 {
		t.Fatalf("storefront should list new offer with 6000 points, got=%+v ok=%v", got, ok)
	}

	toggled, err := svc.ToggleStatus(context.Background(), merchant.ID, offer.ID)
	if err != nil {
		t.Fatalf("toggle offer failed: %v", err)
	}
	if toggled.Active {
		t.Fatalf("first toggle should deactivate")
	}
	apply()
	if _, ok := view.Cache().Get(offer.ID); ok {
		t.Fatalf("inactive offer should leave storefront")
	}
	if got, ok := merchantCache.Get(offer.ID); !ok || got.Active {
		t.Fatalf("merchant view should keep inactive offer, got=%+v ok=%v", got, ok)
	}
	active, err := offerRepo.ListActive()
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if len(active) != 0 {
		t.Fatalf("store query should exclude inactive offer, got %d", len(active))
	}

	if _, err := svc.ToggleStatus(context.Background(), merchant.ID, offer.ID); err != nil {
		t.Fatalf("second toggle failed: %v", err)
	}
	apply()
	if _, ok := view.Cache().Get(offer.ID); !ok {
		t.Fatalf("reactivated offer should return to storefront")
	}
	if list, err := svc.ListStorefront(); err != nil || len(list) != 1 {
		t.Fatalf("expected one storefront offer, got %d err=%v", len(list), err)
	}
	if list, err := svc.ListForMerchant(merchant.ID); err != nil || len(list) != 1 {
		t.Fatalf("expected one merchant offer, got %d err=%v", len(list), err)
	}
}

func TestOfferServiceRejectsEditsForInactiveMerchant(t *testing.T) {
	publisher := &recordingPublisher{}
	svc, _, db := setupOfferServiceTest(t, publisher)
	merchant := seedTestMerchant(t, db, "Lanchonete", "Recife", true)
	offer, err := svc.Create(context.Background(), merchant.ID, validDraft("40", 10))
	if err != nil {
		t.Fatalf("create offer failed: %v", err)
	}
	if _, err := svc.ToggleStatus(context.Background(), merchant.ID, offer.ID); err != nil {
		t.Fatalf("toggle offer failed: %v", err)
	}
	if err := db.Model(merchant).Update("active", false).Error; err != nil {
		t.Fatalf("deactivate merchant failed: %v", err)
	}

	if _, err := svc.ToggleStatus(context.Background(), merchant.ID, offer.ID); !errors.Is(err, ErrMerchantInactive) {
		t.Fatalf("expected ErrMerchantInactive on toggle, got %v", err)
	}
	if _, err := svc.Update(context.Background(), merchant.ID, offer.ID, validDraft("40", 10)); !errors.Is(err, ErrMerchantInactive) {
		t.Fatalf("expected ErrMerchantInactive on update, got %v", err)
	}
	if len(publisher.snapshot()) != 2 {
		t.Fatalf("rejected edits should not publish, got %+v", publisher.snapshot())
	}
	stored, err := svc.ListForMerchant(merchant.ID)
	if err != nil || len(stored) != 1 || stored[0].Active {
		t.Fatalf("offer should stay inactive, got %+v err=%v", stored, err)
	}
}

func TestMerchantDeactivationRemovesOffersFromStorefrontCache(t *testing.T) {
	hub := realtime.NewHub(8, nil)
	svc, offerRepo, db := setupOfferServiceTest(t, hub)
	merchants := NewMerchantService(repository.NewMerchantRepository(db), nil, svc)
	view := realtime.NewStorefrontView(hub, offerRepo.ListActive, 0)
	sub, err := hub.Subscribe(nil)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	defer hub.Unsubscribe(sub)

	merchant := seedTestMerchant(t, db, "Sorveteria", "Natal", true)
	offer, err := svc.Create(context.Background(), merchant.ID, validDraft("25", 20))
	if err != nil {
		t.Fatalf("create offer failed: %v", err)
	}
	view.Cache().Apply(<-sub.C())
	if _, ok := view.Cache().Get(offer.ID); !ok {
		t.Fatalf("new offer should be on storefront")
	}

	if err := merchants.SetActive(context.Background(), merchant.ID, false); err != nil {
		t.Fatalf("deactivate merchant failed: %v", err)
	}
	event := <-sub.C()
	if event.Kind != realtime.Deleted {
		t.Fatalf("expected delete event, got %+v", event)
	}
	view.Cache().Apply(event)
	if _, ok := view.Cache().Get(offer.ID); ok {
		t.Fatalf("offer of inactive merchant should leave storefront cache")
	}
	active, err := offerRepo.ListActive()
	if err != nil || len(active) != 0 {
		t.Fatalf("store query should agree with cache, got %d err=%v", len(active), err)
	}

	if err := merchants.SetActive(context.Background(), merchant.ID, true); err != nil {
		t.Fatalf("reactivate merchant failed: %v", err)
	}
	view.Cache().Apply(<-sub.C())
	if _, ok := view.Cache().Get(offer.ID); !ok {
		t.Fatalf("reactivated merchant offer should return to storefront")
	}
}
