package repository

import (
	"testing"

	"github.com/fidelidade-next/internal/models"

	"github.com/shopspring/decimal"
)

func TestOfferRepositoryUpdateOwnedRejectsForeignMerchant(t *testing.T) {
	db := setupRepositoryTestDB(t, "offer_repo_owned")
	repo := NewOfferRepository(db)
	owner := seedMerchant(t, db, "Dono", "Recife", true)
	other := seedMerchant(t, db, "Outro", "Recife", true)
	offer := seedOffer(t, db, owner.ID, "Café grátis", true)

	foreign := *offer
	foreign.MerchantID = other.ID
	foreign.Title = "Sequestro"
	found, err := repo.UpdateOwned(&foreign)
	if err != nil {
		t.Fatalf("update owned failed: %v", err)
	}
	if found {
		t.Fatalf("foreign merchant must not update offer")
	}

	offer.Title = "Café duplo"
	offer.TotalPrice = models.NewMoneyFromDecimal(decimal.NewFromInt(300))
	offer.PointsPercentage = 20
	offer.PointsRequired = 6000
	found, err = repo.UpdateOwned(offer)
	if err != nil || !found {
		t.Fatalf("owner update failed: found=%v err=%v", found, err)
	}
	reloaded, err := repo.GetByID(offer.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Title != "Café duplo" || reloaded.PointsRequired != 6000 {
		t.Fatalf("unexpected offer after update: %+v", reloaded)
	}
	if reloaded.ValidUntil.String() != "2099-12-31" {
		t.Fatalf("valid_until should survive update, got %s", reloaded.ValidUntil.String())
	}
}

func TestOfferRepositorySetActiveOwned(t *testing.T) {
	db := setupRepositoryTestDB(t, "offer_repo_toggle")
	repo := NewOfferRepository(db)
	owner := seedMerchant(t, db, "Dono", "Recife", true)
	offer := seedOffer(t, db, owner.ID, "Pão", true)

	found, err := repo.SetActiveOwned(offer.ID, "someone-else", false)
	if err != nil {
		t.Fatalf("toggle failed: %v", err)
	}
	if found {
		t.Fatalf("toggle by non-owner should not match")
	}
	found, err = repo.SetActiveOwned(offer.ID, owner.ID, false)
	if err != nil || !found {
		t.Fatalf("toggle by owner failed: found=%v err=%v", found, err)
	}
	reloaded, _ := repo.GetOwned(offer.ID, owner.ID)
	if reloaded == nil || reloaded.Active {
		t.Fatalf("offer should be inactive after toggle")
	}
}

func TestOfferRepositoryListActiveSkipsInactiveOffersAndMerchants(t *testing.T) {
	db := setupRepositoryTestDB(t, "offer_repo_active")
	repo := NewOfferRepository(db)
	open := seedMerchant(t, db, "Aberta", "Recife", true)
	closed := seedMerchant(t, db, "Fechada", "Recife", false)

	visible := seedOffer(t, db, open.ID, "Visível", true)
	seedOffer(t, db, open.ID, "Pausada", false)
	seedOffer(t, db, closed.ID, "Loja fechada", true)

	offers, err := repo.ListActive()
	if err != nil {
		t.Fatalf("list active failed: %v", err)
	}
	if len(offers) != 1 || offers[0].ID != visible.ID {
		t.Fatalf("expected only the visible offer, got %+v", offers)
	}

	all, err := repo.ListByMerchant(open.ID)
	if err != nil {
		t.Fatalf("list by merchant failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("merchant list should include inactive offers, got %d", len(all))
	}
}
