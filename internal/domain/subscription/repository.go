package subscription

import (
	"context"
	"time"

	"github.com/billcraft/billcraft/internal/types"
)

// Repository defines the interface for subscription data access
type Repository interface {
	// CreateWithLineItems persists a subscription and its lines in a
	// single transaction.
	CreateWithLineItems(ctx context.Context, subscription *Subscription) error
	Get(ctx context.Context, id string) (*Subscription, error)
	// GetWithLineItems loads the subscription along with its ordered lines.
	GetWithLineItems(ctx context.Context, id string) (*Subscription, error)
	List(ctx context.Context, filter *types.SubscriptionFilter) ([]*Subscription, error)
	Count(ctx context.Context, filter *types.SubscriptionFilter) (int, error)
	// Update writes the subscription row guarded by its version; callers
	// get ErrConcurrentModification when the version moved underneath them.
	Update(ctx context.Context, subscription *Subscription) error
	// UpdateWithLineItems replaces the line set and the parent row together.
	UpdateWithLineItems(ctx context.Context, subscription *Subscription) error
	Delete(ctx context.Context, id string) error
	// ListDueForRenewal returns confirmed subscriptions whose next billing
	// date is on or before asOf.
	ListDueForRenewal(ctx context.Context, asOf time.Time) ([]*Subscription, error)
}
