package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/kjaylee/contentforge/internal/domain/models"
	"github.com/kjaylee/contentforge/internal/domain/repositories"
)

type subscriptionRepository struct {
	db *PostgresDB
}

func NewSubscriptionRepository(db *PostgresDB) repositories.SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

const subscriptionColumns = `id, user_id, stripe_customer_id, stripe_subscription_id, stripe_price_id,
       tier, status, current_period_start, current_period_end, cancel_at_period_end,
       created_at, updated_at`

func (r *subscriptionRepository) GetByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	query := `SELECT ` + subscriptionColumns + `
              FROM subscriptions
              WHERE user_id = $1
              ORDER BY created_at DESC
              LIMIT 1`

	err := r.db.GetContext(ctx, &sub, query, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("subscription not found for user %s", userID)
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

func (r *subscriptionRepository) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.Subscription, error) {
	var sub models.Subscription
	query := `SELECT ` + subscriptionColumns + `
              FROM subscriptions
              WHERE stripe_customer_id = $1`

	err := r.db.GetContext(ctx, &sub, query, customerID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("subscription not found for stripe customer %s", customerID)
		}
		return nil, fmt.Errorf("failed to get subscription: %w", err)
	}
	return &sub, nil
}

func (r *subscriptionRepository) Create(ctx context.Context, sub *models.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}

	query := `INSERT INTO subscriptions (id, user_id, stripe_customer_id, stripe_subscription_id,
                                         stripe_price_id, tier, status, current_period_start,
                                         current_period_end, cancel_at_period_end)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
              RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, sub.ID, sub.UserID, sub.StripeCustomerID,
		sub.StripeSubscriptionID, sub.StripePriceID, sub.Tier, sub.Status,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd,
	).Scan(&sub.CreatedAt, &sub.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create subscription: %w", err)
	}
	return nil
}

func (r *subscriptionRepository) Update(ctx context.Context, sub *models.Subscription) error {
	query := `UPDATE subscriptions
              SET stripe_customer_id = $2, stripe_subscription_id = $3, stripe_price_id = $4,
                  tier = $5, status = $6, current_period_start = $7, current_period_end = $8,
                  cancel_at_period_end = $9, updated_at = CURRENT_TIMESTAMP
              WHERE id = $1
              RETURNING updated_at`

	err := r.db.QueryRowContext(ctx, query, sub.ID, sub.StripeCustomerID,
		sub.StripeSubscriptionID, sub.StripePriceID, sub.Tier, sub.Status,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.CancelAtPeriodEnd,
	).Scan(&sub.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to update subscription: %w", err)
	}
	return nil
}
