package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/stripe/stripe-go/v79"
	portalsession "github.com/stripe/stripe-go/v79/billingportal/session"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/subscription"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/kjaylee/contentforge/internal/domain/models"
	"github.com/kjaylee/contentforge/internal/domain/repositories"
)

type PaymentService interface {
	CreateCheckoutSession(ctx context.Context, userID string) (string, error)
	CreatePortalSession(ctx context.Context, userID string) (string, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// StripeService owns the billing collaborator boundary: checkout/portal
// session creation and the webhook-driven subscription state sync.
type StripeService struct {
	subRepo       repositories.SubscriptionRepository
	userRepo      repositories.UserRepository
	logger        *slog.Logger
	webhookSecret string
	proPriceID    string
	baseURL       string
}

func NewStripeService(
	subRepo repositories.SubscriptionRepository,
	userRepo repositories.UserRepository,
	logger *slog.Logger,
	webhookSecret, proPriceID, baseURL string,
) *StripeService {
	return &StripeService{
		subRepo:       subRepo,
		userRepo:      userRepo,
		logger:        logger,
		webhookSecret: webhookSecret,
		proPriceID:    proPriceID,
		baseURL:       baseURL,
	}
}

// CreateCheckoutSession returns the URL the caller should be redirected to.
// A caller with an already-active subscription gets the billing portal
// instead of a second checkout.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, userID string) (string, error) {
	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if err == nil && sub.Status == models.StatusActive && sub.StripeCustomerID != nil {
		return s.portalURL(*sub.StripeCustomerID)
	}

	customerID, err := s.getOrCreateCustomer(ctx, userID)
	if err != nil {
		return "", &models.BillingError{Op: "customer lookup", Err: err}
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer:   stripe.String(customerID),
		SuccessURL: stripe.String(s.baseURL + "/?success=true"),
		CancelURL:  stripe.String(s.baseURL + "/?canceled=true"),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.proPriceID),
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"user_id": userID,
		},
	}

	sess, err := session.New(params)
	if err != nil {
		return "", &models.BillingError{Op: "checkout session", Err: err}
	}

	return sess.URL, nil
}

func (s *StripeService) CreatePortalSession(ctx context.Context, userID string) (string, error) {
	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if err != nil || sub.StripeCustomerID == nil {
		return "", &models.BillingError{Op: "portal session", Err: fmt.Errorf("no billing customer for user %s", userID)}
	}

	return s.portalURL(*sub.StripeCustomerID)
}

// HandleWebhook authenticates and applies one billing lifecycle event. An
// unverifiable signature rejects the event outright; no state changes.
func (s *StripeService) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	event, err := webhook.ConstructEvent(payload, signature, s.webhookSecret)
	if err != nil {
		return &models.BillingError{Op: "webhook signature verification", Err: err}
	}

	return s.ApplyEvent(ctx, event)
}

// ApplyEvent runs the state-transition table for one verified event. Every
// transition fully overwrites the fields it owns, so redelivered events are
// safe to reapply.
func (s *StripeService) ApplyEvent(ctx context.Context, event stripe.Event) error {
	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return &models.BillingError{Op: "event decode", Err: err}
		}
		return s.applyCheckoutCompleted(ctx, &sess)

	case "customer.subscription.updated":
		var stripeSub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
			return &models.BillingError{Op: "event decode", Err: err}
		}
		return s.applySubscriptionUpdated(ctx, &stripeSub)

	case "customer.subscription.deleted":
		var stripeSub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &stripeSub); err != nil {
			return &models.BillingError{Op: "event decode", Err: err}
		}
		return s.applySubscriptionDeleted(ctx, &stripeSub)

	case "invoice.payment_failed":
		var invoice stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
			return &models.BillingError{Op: "event decode", Err: err}
		}
		return s.applyPaymentFailed(ctx, &invoice)

	default:
		s.logger.Debug("ignoring webhook event", slog.String("type", string(event.Type)))
		return nil
	}
}

func (s *StripeService) applyCheckoutCompleted(ctx context.Context, sess *stripe.CheckoutSession) error {
	if sess.Customer == nil {
		return &models.BillingError{Op: "checkout completed", Err: fmt.Errorf("event carries no customer")}
	}

	sub, err := s.subRepo.GetByStripeCustomerID(ctx, sess.Customer.ID)
	if err != nil {
		return &models.BillingError{Op: "checkout completed", Err: err}
	}

	sub.Tier = models.TierPro
	sub.Status = models.StatusActive
	if sess.Subscription != nil {
		sub.StripeSubscriptionID = &sess.Subscription.ID

		// Periods and price live on the subscription object, not the checkout
		// session; fetch them when the API is reachable.
		if stripeSub, err := subscription.Get(sess.Subscription.ID, nil); err == nil {
			applyPeriodFields(sub, stripeSub)
		} else {
			s.logger.Warn("could not fetch subscription after checkout",
				slog.String("subscription_id", sess.Subscription.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if err := s.subRepo.Update(ctx, sub); err != nil {
		return &models.BillingError{Op: "checkout completed", Err: err}
	}

	s.updateUserTier(ctx, sub.UserID, models.TierPro)
	return nil
}

func (s *StripeService) applySubscriptionUpdated(ctx context.Context, stripeSub *stripe.Subscription) error {
	if stripeSub.Customer == nil {
		return &models.BillingError{Op: "subscription updated", Err: fmt.Errorf("event carries no customer")}
	}

	sub, err := s.subRepo.GetByStripeCustomerID(ctx, stripeSub.Customer.ID)
	if err != nil {
		return &models.BillingError{Op: "subscription updated", Err: err}
	}

	sub.Status = models.MapStripeStatus(string(stripeSub.Status))
	applyPeriodFields(sub, stripeSub)

	if err := s.subRepo.Update(ctx, sub); err != nil {
		return &models.BillingError{Op: "subscription updated", Err: err}
	}
	return nil
}

func (s *StripeService) applySubscriptionDeleted(ctx context.Context, stripeSub *stripe.Subscription) error {
	if stripeSub.Customer == nil {
		return &models.BillingError{Op: "subscription deleted", Err: fmt.Errorf("event carries no customer")}
	}

	sub, err := s.subRepo.GetByStripeCustomerID(ctx, stripeSub.Customer.ID)
	if err != nil {
		return &models.BillingError{Op: "subscription deleted", Err: err}
	}

	sub.Status = models.StatusCanceled
	sub.Tier = models.TierFree

	if err := s.subRepo.Update(ctx, sub); err != nil {
		return &models.BillingError{Op: "subscription deleted", Err: err}
	}

	s.updateUserTier(ctx, sub.UserID, models.TierFree)
	return nil
}

func (s *StripeService) applyPaymentFailed(ctx context.Context, invoice *stripe.Invoice) error {
	if invoice.Customer == nil {
		return &models.BillingError{Op: "payment failed", Err: fmt.Errorf("event carries no customer")}
	}

	sub, err := s.subRepo.GetByStripeCustomerID(ctx, invoice.Customer.ID)
	if err != nil {
		return &models.BillingError{Op: "payment failed", Err: err}
	}

	sub.Status = models.StatusPastDue

	if err := s.subRepo.Update(ctx, sub); err != nil {
		return &models.BillingError{Op: "payment failed", Err: err}
	}
	return nil
}

func (s *StripeService) getOrCreateCustomer(ctx context.Context, userID string) (string, error) {
	sub, err := s.subRepo.GetByUserID(ctx, userID)
	if err == nil && sub.StripeCustomerID != nil {
		return *sub.StripeCustomerID, nil
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
		Metadata: map[string]string{
			"user_id": userID,
		},
	}
	if user.Name != nil {
		params.Name = stripe.String(*user.Name)
	}

	cust, err := customer.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create Stripe customer: %w", err)
	}

	if sub == nil {
		sub = &models.Subscription{
			UserID: userID,
			Tier:   models.TierFree,
			Status: models.StatusInactive,
		}
		sub.StripeCustomerID = &cust.ID
		if err := s.subRepo.Create(ctx, sub); err != nil {
			s.logger.Error("failed to create subscription record",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	} else {
		sub.StripeCustomerID = &cust.ID
		if err := s.subRepo.Update(ctx, sub); err != nil {
			s.logger.Error("failed to store customer id",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	return cust.ID, nil
}

func (s *StripeService) portalURL(customerID string) (string, error) {
	portal, err := portalsession.New(&stripe.BillingPortalSessionParams{
		Customer:  stripe.String(customerID),
		ReturnURL: stripe.String(s.baseURL + "/"),
	})
	if err != nil {
		return "", &models.BillingError{Op: "portal session", Err: err}
	}
	return portal.URL, nil
}

func (s *StripeService) updateUserTier(ctx context.Context, userID string, tier models.UserTier) {
	if err := s.userRepo.UpdateTier(ctx, userID, tier); err != nil {
		s.logger.Error("failed to update user tier",
			slog.String("user_id", userID),
			slog.String("tier", string(tier)),
			slog.String("error", err.Error()),
		)
	}
}

func applyPeriodFields(sub *models.Subscription, stripeSub *stripe.Subscription) {
	if stripeSub.CurrentPeriodStart > 0 {
		start := time.Unix(stripeSub.CurrentPeriodStart, 0)
		sub.CurrentPeriodStart = &start
	}
	if stripeSub.CurrentPeriodEnd > 0 {
		end := time.Unix(stripeSub.CurrentPeriodEnd, 0)
		sub.CurrentPeriodEnd = &end
	}
	sub.CancelAtPeriodEnd = stripeSub.CancelAtPeriodEnd
	if stripeSub.Items != nil && len(stripeSub.Items.Data) > 0 && stripeSub.Items.Data[0].Price != nil {
		sub.StripePriceID = &stripeSub.Items.Data[0].Price.ID
	}
}
