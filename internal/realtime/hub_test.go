package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fidelidade-next/internal/constants"
	"github.com/fidelidade-next/internal/models"
)

type failingBroker struct{}

func (failingBroker) Name() string { return "failing" }

func (failingBroker) Publish(ctx context.Context, event ChangeEvent) (bool, error) {
	return false, errors.New("broker down")
}

func receive(t *testing.T, sub *Subscription) ChangeEvent {
	t.Helper()
	select {
	case event, ok := <-sub.C():
		if !ok {
			t.Fatalf("subscription closed unexpectedly")
		}
		return event
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for event")
	}
	return ChangeEvent{}
}

func TestHubPublishFansOutWithFilter(t *testing.T) {
	hub := NewHub(4, nil)
	all, err := hub.Subscribe(nil)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	own, err := hub.Subscribe(ForMerchant("m-2"))
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := hub.Publish(context.Background(), NewOfferEvent(Inserted, testOffer("o-1", "m-1", true))); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if err := hub.Publish(context.Background(), NewOfferEvent(Inserted, testOffer("o-2", "m-2", true))); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if got := receive(t, all); got.OfferID != "o-1" {
		t.Fatalf("expected o-1 first, got %s", got.OfferID)
	}
	if got := receive(t, all); got.OfferID != "o-2" {
		t.Fatalf("expected o-2 second, got %s", got.OfferID)
	}
	if got := receive(t, own); got.OfferID != "o-2" {
		t.Fatalf("filtered subscriber should only see m-2, got %s", got.OfferID)
	}
	select {
	case event := <-own.C():
		t.Fatalf("unexpected event for filtered subscriber: %+v", event)
	default:
	}
}

func TestHubSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub(1, nil)
	sub, err := hub.Subscribe(nil)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	for i := 0; i < 3; i++ {
		if err := hub.Publish(context.Background(), NewDeleteEvent("o-1", "m-1")); err != nil {
			t.Fatalf("publish failed: %v", err)
		}
	}
	if sub.Dropped() != 2 {
		t.Fatalf("expected 2 dropped events, got %d", sub.Dropped())
	}
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub(1, nil)
	sub, err := hub.Subscribe(nil)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	hub.Unsubscribe(sub)
	hub.Unsubscribe(sub)
	if _, ok := <-sub.C(); ok {
		t.Fatalf("channel should be closed after unsubscribe")
	}
	if hub.SubscriberCount() != 0 {
		t.Fatalf("expected no subscribers, got %d", hub.SubscriberCount())
	}
}

func TestHubRejectsInvalidEventAndClosedHub(t *testing.T) {
	hub := NewHub(1, nil)
	if err := hub.Publish(context.Background(), ChangeEvent{Kind: "noop", OfferID: "o-1"}); !errors.Is(err, ErrEventInvalid) {
		t.Fatalf("expected ErrEventInvalid, got %v", err)
	}
	if err := hub.Publish(context.Background(), ChangeEvent{Kind: Deleted}); !errors.Is(err, ErrEventInvalid) {
		t.Fatalf("expected ErrEventInvalid for missing id, got %v", err)
	}
	hub.Close()
	if _, err := hub.Subscribe(nil); !errors.Is(err, ErrHubClosed) {
		t.Fatalf("expected ErrHubClosed, got %v", err)
	}
}

func TestHubFallsBackToLocalDeliveryWhenBrokerFails(t *testing.T) {
	hub := NewHub(2, failingBroker{})
	sub, err := hub.Subscribe(nil)
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}
	hub.OfferChanged(context.Background(), constants.FeedEventUpdate, testOffer("o-1", "m-1", true))
	got := receive(t, sub)
	if got.Kind != Updated || got.Offer == nil || got.Offer.ID != "o-1" {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestNewOfferEventDetachesMerchant(t *testing.T) {
	offer := testOffer("o-1", "m-1", true)
	offer.Merchant = &models.Merchant{ID: "m-1", StoreName: "Loja"}
	event := NewOfferEvent(Inserted, offer)
	if event.Offer.Merchant != nil {
		t.Fatalf("event payload should not carry merchant association")
	}
	if offer.Merchant == nil {
		t.Fatalf("source offer should be untouched")
	}
}

func TestDecodeEventAndFeedChannel(t *testing.T) {
	if FeedChannel("fid") != "fid:feed:offers" {
		t.Fatalf("unexpected channel: %s", FeedChannel("fid"))
	}
	if FeedChannel("") != "feed:offers" {
		t.Fatalf("unexpected channel without prefix: %s", FeedChannel(""))
	}
	event, err := decodeEvent(`{"kind":"delete","offer_id":"o-1","merchant_id":"m-1"}`)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if event.Kind != Deleted || event.OfferID != "o-1" {
		t.Fatalf("unexpected decoded event: %+v", event)
	}
	if _, err := decodeEvent(`{"kind":"upsert","offer_id":"o-1"}`); err == nil {
		t.Fatalf("expected invalid kind to fail")
	}
	if _, err := decodeEvent(`not-json`); err == nil {
		t.Fatalf("expected malformed payload to fail")
	}
}
