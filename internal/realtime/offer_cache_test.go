package realtime

import (
	"testing"

	"github.com/fidelidade-next/internal/models"

	"github.com/shopspring/decimal"
)

func testOffer(id, merchantID string, active bool) models.Offer {
	return models.Offer{
		ID:               id,
		MerchantID:       merchantID,
		Title:            "offer " + id,
		PointsRequired:   1000,
		TotalPrice:       models.NewMoneyFromDecimal(decimal.NewFromInt(50)),
		PointsPercentage: 20,
		Active:           active,
	}
}

func TestOfferCacheReplayedInsertKeepsSingleEntry(t *testing.T) {
	cache := NewStorefrontCache()
	event := NewOfferEvent(Inserted, testOffer("o-1", "m-1", true))

	if !cache.Apply(event) {
		t.Fatalf("first insert should change cache")
	}
	if cache.Apply(event) {
		t.Fatalf("replayed insert should be ignored")
	}
	if cache.Len() != 1 {
		t.Fatalf("expected one entry, got %d", cache.Len())
	}
}

func TestOfferCacheUpdateToInactiveByScope(t *testing.T) {
	storefront := NewStorefrontCache()
	merchant := NewMerchantCache("m-1")
	offer := testOffer("o-1", "m-1", true)
	storefront.Reset([]models.Offer{offer})
	merchant.Reset([]models.Offer{offer})

	offer.Active = false
	event := NewOfferEvent(Updated, offer)
	storefront.Apply(event)
	merchant.Apply(event)

	if _, ok := storefront.Get("o-1"); ok {
		t.Fatalf("inactive offer should leave storefront scope")
	}
	got, ok := merchant.Get("o-1")
	if !ok {
		t.Fatalf("inactive offer should stay in merchant scope")
	}
	if got.Active {
		t.Fatalf("merchant scope should hold inactive state")
	}
}

func TestOfferCacheUpdateUpsertsAndPreservesOrder(t *testing.T) {
	cache := NewMerchantCache("m-1")
	cache.Reset([]models.Offer{
		testOffer("o-1", "m-1", true),
		testOffer("o-2", "m-1", true),
	})

	changed := testOffer("o-1", "m-1", true)
	changed.Title = "renamed"
	cache.Apply(NewOfferEvent(Updated, changed))
	cache.Apply(NewOfferEvent(Updated, testOffer("o-3", "m-1", false)))

	items := cache.Snapshot()
	if len(items) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(items))
	}
	if items[0].ID != "o-1" || items[0].Title != "renamed" {
		t.Fatalf("update should replace in place: %+v", items[0])
	}
	if items[2].ID != "o-3" {
		t.Fatalf("unknown id update should append, got %s", items[2].ID)
	}
}

func TestOfferCacheDeleteAndReindex(t *testing.T) {
	cache := NewStorefrontCache()
	cache.Reset([]models.Offer{
		testOffer("o-1", "m-1", true),
		testOffer("o-2", "m-1", true),
		testOffer("o-3", "m-2", true),
	})

	if !cache.Apply(NewDeleteEvent("o-1", "m-1")) {
		t.Fatalf("delete should change cache")
	}
	if cache.Apply(NewDeleteEvent("o-1", "m-1")) {
		t.Fatalf("delete of absent id should be a no-op")
	}

	changed := testOffer("o-3", "m-2", true)
	changed.Title = "after delete"
	cache.Apply(NewOfferEvent(Updated, changed))
	got, ok := cache.Get("o-3")
	if !ok || got.Title != "after delete" {
		t.Fatalf("index should follow removal, got=%+v ok=%v", got, ok)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
}

func TestOfferCacheStorefrontIgnoresInactiveInsert(t *testing.T) {
	cache := NewStorefrontCache()
	if cache.Apply(NewOfferEvent(Inserted, testOffer("o-1", "m-1", false))) {
		t.Fatalf("inactive insert should not enter storefront")
	}
	cache.Reset([]models.Offer{testOffer("o-2", "m-1", false)})
	if cache.Len() != 0 {
		t.Fatalf("reset should drop inactive offers, got %d", cache.Len())
	}
}

func TestOfferCacheMerchantScopeIgnoresForeignEvents(t *testing.T) {
	cache := NewMerchantCache("m-1")
	if cache.Apply(NewOfferEvent(Inserted, testOffer("o-9", "m-2", true))) {
		t.Fatalf("foreign merchant event should be ignored")
	}
	if cache.Len() != 0 {
		t.Fatalf("expected empty cache, got %d", cache.Len())
	}
}

func TestOfferCacheSnapshotIsCopy(t *testing.T) {
	cache := NewStorefrontCache()
	cache.Reset([]models.Offer{testOffer("o-1", "m-1", true)})
	items := cache.Snapshot()
	items[0].Title = "mutated"
	got, _ := cache.Get("o-1")
	if got.Title == "mutated" {
		t.Fatalf("snapshot should not alias cache storage")
	}
}

func TestOfferCacheProjectTurnsDeactivationIntoDelete(t *testing.T) {
	cache := NewStorefrontCache()
	offer := testOffer("o-1", "m-1", true)
	cache.Reset([]models.Offer{offer})

	offer.Active = false
	out, ok := cache.Project(NewOfferEvent(Updated, offer))
	if !ok {
		t.Fatalf("deactivation should be visible in storefront scope")
	}
	if out.Kind != Deleted || out.OfferID != "o-1" || out.MerchantID != "m-1" {
		t.Fatalf("unexpected projected event: %+v", out)
	}

	if _, ok := cache.Project(NewOfferEvent(Updated, offer)); ok {
		t.Fatalf("repeated inactive update should be invisible")
	}

	offer.Active = true
	out, ok = cache.Project(NewOfferEvent(Updated, offer))
	if !ok || out.Kind != Updated || out.Offer == nil {
		t.Fatalf("reactivation should pass through as update, got %+v ok=%v", out, ok)
	}
}
