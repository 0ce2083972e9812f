package services

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v79"

	"github.com/kjaylee/contentforge/internal/domain/models"
)

type stubUserRepo struct {
	user        *models.User
	tierUpdates map[string]models.UserTier
	upserted    []*models.User
}

func newStubUserRepo(user *models.User) *stubUserRepo {
	return &stubUserRepo{user: user, tierUpdates: make(map[string]models.UserTier)}
}

func (s *stubUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	return s.user, nil
}

func (s *stubUserRepo) Upsert(_ context.Context, user *models.User) error {
	s.upserted = append(s.upserted, user)
	return nil
}

func (s *stubUserRepo) UpdateTier(_ context.Context, id string, tier models.UserTier) error {
	s.tierUpdates[id] = tier
	return nil
}

func newTestStripeService(subRepo *stubSubRepo, userRepo *stubUserRepo) *StripeService {
	return NewStripeService(subRepo, userRepo, testLogger(),
		"whsec_test", "price_pro", "https://contentforge.app")
}

func billingEvent(t *testing.T, eventType string, payload string) stripe.Event {
	t.Helper()
	return stripe.Event{
		Type: stripe.EventType(eventType),
		Data: &stripe.EventData{Raw: json.RawMessage(payload)},
	}
}

func TestSubscriptionDeletedDowngradesToFree(t *testing.T) {
	subRepo := &stubSubRepo{sub: proSubscription("cus_1")}
	userRepo := newStubUserRepo(&models.User{ID: "user-1", Email: "u@example.com"})
	svc := newTestStripeService(subRepo, userRepo)

	event := billingEvent(t, "customer.subscription.deleted",
		`{"id":"sub_1","customer":"cus_1","status":"canceled"}`)

	require.NoError(t, svc.ApplyEvent(context.Background(), event))

	require.Len(t, subRepo.updated, 1)
	assert.Equal(t, models.StatusCanceled, subRepo.sub.Status)
	assert.Equal(t, models.TierFree, subRepo.sub.Tier)
	assert.Equal(t, models.TierFree, userRepo.tierUpdates["user-1"])
}

func TestSubscriptionDeletedIsIdempotent(t *testing.T) {
	subRepo := &stubSubRepo{sub: proSubscription("cus_1")}
	userRepo := newStubUserRepo(&models.User{ID: "user-1"})
	svc := newTestStripeService(subRepo, userRepo)

	event := billingEvent(t, "customer.subscription.deleted",
		`{"id":"sub_1","customer":"cus_1","status":"canceled"}`)

	require.NoError(t, svc.ApplyEvent(context.Background(), event))
	require.NoError(t, svc.ApplyEvent(context.Background(), event))

	assert.Equal(t, models.StatusCanceled, subRepo.sub.Status)
	assert.Equal(t, models.TierFree, subRepo.sub.Tier)
}

func TestSubscriptionUpdatedMapsStatusAndPeriods(t *testing.T) {
	subRepo := &stubSubRepo{sub: proSubscription("cus_1")}
	userRepo := newStubUserRepo(&models.User{ID: "user-1"})
	svc := newTestStripeService(subRepo, userRepo)

	event := billingEvent(t, "customer.subscription.updated", `{
		"customer": "cus_1",
		"status": "trialing",
		"cancel_at_period_end": true,
		"current_period_start": 1756200000,
		"current_period_end": 1758878400,
		"items": {"data": [{"price": {"id": "price_pro"}}]}
	}`)

	require.NoError(t, svc.ApplyEvent(context.Background(), event))

	assert.Equal(t, models.StatusActive, subRepo.sub.Status)
	assert.True(t, subRepo.sub.CancelAtPeriodEnd)
	require.NotNil(t, subRepo.sub.CurrentPeriodEnd)
	assert.Equal(t, time.Unix(1758878400, 0).Unix(), subRepo.sub.CurrentPeriodEnd.Unix())
	require.NotNil(t, subRepo.sub.StripePriceID)
	assert.Equal(t, "price_pro", *subRepo.sub.StripePriceID)
}

func TestSubscriptionUpdatedPastDue(t *testing.T) {
	subRepo := &stubSubRepo{sub: proSubscription("cus_1")}
	svc := newTestStripeService(subRepo, newStubUserRepo(&models.User{ID: "user-1"}))

	event := billingEvent(t, "customer.subscription.updated",
		`{"customer":"cus_1","status":"past_due"}`)

	require.NoError(t, svc.ApplyEvent(context.Background(), event))
	assert.Equal(t, models.StatusPastDue, subRepo.sub.Status)
}

func TestPaymentFailedMarksPastDue(t *testing.T) {
	subRepo := &stubSubRepo{sub: proSubscription("cus_1")}
	svc := newTestStripeService(subRepo, newStubUserRepo(&models.User{ID: "user-1"}))

	event := billingEvent(t, "invoice.payment_failed", `{"customer":"cus_1"}`)

	require.NoError(t, svc.ApplyEvent(context.Background(), event))
	assert.Equal(t, models.StatusPastDue, subRepo.sub.Status)
	// Past due keeps the tier; only a deletion downgrades.
	assert.Equal(t, models.TierPro, subRepo.sub.Tier)
}

func TestUnknownEventIsIgnored(t *testing.T) {
	subRepo := &stubSubRepo{sub: proSubscription("cus_1")}
	svc := newTestStripeService(subRepo, newStubUserRepo(&models.User{ID: "user-1"}))

	event := billingEvent(t, "customer.created", `{"id":"cus_1"}`)

	require.NoError(t, svc.ApplyEvent(context.Background(), event))
	assert.Empty(t, subRepo.updated)
}

func TestEventForUnknownCustomerFails(t *testing.T) {
	subRepo := &stubSubRepo{}
	svc := newTestStripeService(subRepo, newStubUserRepo(&models.User{ID: "user-1"}))

	event := billingEvent(t, "invoice.payment_failed", `{"customer":"cus_unknown"}`)

	err := svc.ApplyEvent(context.Background(), event)
	var billingErr *models.BillingError
	assert.ErrorAs(t, err, &billingErr)
}

func TestWebhookRejectsBadSignature(t *testing.T) {
	subRepo := &stubSubRepo{sub: proSubscription("cus_1")}
	svc := newTestStripeService(subRepo, newStubUserRepo(&models.User{ID: "user-1"}))

	payload := []byte(`{"type":"customer.subscription.deleted","data":{"object":{"customer":"cus_1"}}}`)

	err := svc.HandleWebhook(context.Background(), payload, "t=123,v1=deadbeef")

	var billingErr *models.BillingError
	require.ErrorAs(t, err, &billingErr)
	assert.Empty(t, subRepo.updated)
	assert.Equal(t, models.StatusActive, subRepo.sub.Status)
}
