package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/providers"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/repositories"
	apperrors "github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/pkg/errors"
)

// VerificationPolicy holds the thresholds used to classify verified items.
// ReviewThreshold is independent of FlagPolicy.MinNegative.
type VerificationPolicy struct {
	ReviewThreshold int
	MaxAge          time.Duration
}

// DefaultVerificationPolicy reviews at three reports and expires after 30 days
func DefaultVerificationPolicy() VerificationPolicy {
	return VerificationPolicy{
		ReviewThreshold: 3,
		MaxAge:          30 * 24 * time.Hour,
	}
}

const defaultBatchConcurrency = 8

// NeedsReview reports whether a verified item has collected at least threshold negative reports
func NeedsReview(item *entities.Item, threshold int) bool {
	return item != nil && item.Verified && item.ReportCount >= threshold
}

// IsExpired reports whether a verified item was last verified more than maxAge before now
func IsExpired(item *entities.Item, maxAge time.Duration, now time.Time) bool {
	if item == nil || !item.Verified || item.VerifiedAt == nil {
		return false
	}
	return now.Sub(*item.VerifiedAt) > maxAge
}

// Classify derives the trust state of item at now. Needs-review wins over expired.
func (p VerificationPolicy) Classify(item *entities.Item, now time.Time) entities.VerificationState {
	switch {
	case item == nil || !item.Verified:
		return entities.VerificationStateUnverified
	case NeedsReview(item, p.ReviewThreshold):
		return entities.VerificationStateVerifiedNeedsReview
	case IsExpired(item, p.MaxAge, now):
		return entities.VerificationStateVerifiedExpired
	}
	return entities.VerificationStateVerified
}

// VerificationService owns the verified flag and verification timestamp of items
type VerificationService struct {
	items       repositories.ItemRepository
	policy      VerificationPolicy
	concurrency int
	eventBus    providers.EventBus
	now         func() time.Time
}

// NewVerificationService creates a new verification service
func NewVerificationService(items repositories.ItemRepository, policy VerificationPolicy) *VerificationService {
	defaults := DefaultVerificationPolicy()
	if policy.ReviewThreshold < 1 {
		policy.ReviewThreshold = defaults.ReviewThreshold
	}
	if policy.MaxAge <= 0 {
		policy.MaxAge = defaults.MaxAge
	}
	return &VerificationService{
		items:       items,
		policy:      policy,
		concurrency: defaultBatchConcurrency,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// SetEventBus sets the event bus for verification events
func (s *VerificationService) SetEventBus(eventBus providers.EventBus) {
	s.eventBus = eventBus
}

// SetBatchConcurrency bounds how many updates BatchVerify runs at once
func (s *VerificationService) SetBatchConcurrency(n int) {
	if n > 0 {
		s.concurrency = n
	}
}

// Policy returns the thresholds in use
func (s *VerificationService) Policy() VerificationPolicy {
	return s.policy
}

// Classify derives the item's trust state as of now
func (s *VerificationService) Classify(item *entities.Item) entities.VerificationState {
	return s.policy.Classify(item, s.now())
}

// Verify marks the item trusted and restarts its expiry clock
func (s *VerificationService) Verify(ctx context.Context, id string) error {
	now := s.now()
	verified := true
	if err := s.items.Update(ctx, id, entities.ItemUpdate{
		Verified:   &verified,
		VerifiedAt: &now,
		UpdatedAt:  now,
	}); err != nil {
		return err
	}
	s.publish(ctx, id, entities.ItemEventTypeVerified)
	return nil
}

// Unverify clears the verified flag. VerifiedAt keeps the time the item was last trusted.
func (s *VerificationService) Unverify(ctx context.Context, id string) error {
	verified := false
	if err := s.items.Update(ctx, id, entities.ItemUpdate{
		Verified:  &verified,
		UpdatedAt: s.now(),
	}); err != nil {
		return err
	}
	s.publish(ctx, id, entities.ItemEventTypeUnverified)
	return nil
}

// Refresh restarts the expiry clock without changing the verified flag
func (s *VerificationService) Refresh(ctx context.Context, id string) error {
	now := s.now()
	if err := s.items.Update(ctx, id, entities.ItemUpdate{
		VerifiedAt: &now,
		UpdatedAt:  now,
	}); err != nil {
		return err
	}
	s.publish(ctx, id, entities.ItemEventTypeVerificationRefreshed)
	return nil
}

// CreateVerifiedItem stores an owner-submitted item and verifies it
func (s *VerificationService) CreateVerifiedItem(ctx context.Context, input entities.NewItem) (string, error) {
	input.StoreID = strings.TrimSpace(input.StoreID)
	input.Name = strings.TrimSpace(input.Name)
	if input.StoreID == "" {
		return "", apperrors.NewValidationError("store id is required")
	}
	if input.Name == "" {
		return "", apperrors.NewValidationError("item name is required")
	}

	now := s.now()
	item := &entities.Item{
		ID:          uuid.New().String(),
		StoreID:     input.StoreID,
		Name:        input.Name,
		Description: strings.TrimSpace(input.Description),
		Position:    input.Position,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.items.Create(ctx, item); err != nil {
		return "", err
	}

	if err := s.Verify(ctx, item.ID); err != nil {
		return "", err
	}
	return item.ID, nil
}

// ResetReportCount zeroes the item's report count after an administrative review
func (s *VerificationService) ResetReportCount(ctx context.Context, id string) error {
	if err := s.items.ResetReportCount(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, id, entities.ItemEventTypeReportCountReset)
	return nil
}

// ListNeedingReview returns the store's verified items with at least threshold reports.
// A threshold below 1 uses the policy default.
func (s *VerificationService) ListNeedingReview(ctx context.Context, storeID string, threshold int) ([]*entities.Item, error) {
	if threshold < 1 {
		threshold = s.policy.ReviewThreshold
	}
	items, err := s.items.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	result := make([]*entities.Item, 0)
	for _, item := range items {
		if NeedsReview(item, threshold) {
			result = append(result, item)
		}
	}
	return result, nil
}

// ListExpired returns the store's verified items last verified more than maxAge ago.
// A maxAge of zero or less uses the policy default.
func (s *VerificationService) ListExpired(ctx context.Context, storeID string, maxAge time.Duration) ([]*entities.Item, error) {
	if maxAge <= 0 {
		maxAge = s.policy.MaxAge
	}
	items, err := s.items.ListByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	result := make([]*entities.Item, 0)
	for _, item := range items {
		if IsExpired(item, maxAge, now) {
			result = append(result, item)
		}
	}
	return result, nil
}

// Stats folds the store's items into verification counts
func (s *VerificationService) Stats(ctx context.Context, storeID string) (entities.VerificationStats, error) {
	items, err := s.items.ListByStore(ctx, storeID)
	if err != nil {
		return entities.VerificationStats{}, err
	}

	now := s.now()
	var stats entities.VerificationStats
	for _, item := range items {
		stats.Total++
		if !item.Verified {
			stats.Unverified++
			continue
		}
		stats.Verified++
		if NeedsReview(item, s.policy.ReviewThreshold) {
			stats.NeedsReview++
		}
		if IsExpired(item, s.policy.MaxAge, now) {
			stats.Expired++
		}
	}
	return stats, nil
}

// BatchVerify verifies every id concurrently. Results follow the order of ids and
// one failure never stops the others.
func (s *VerificationService) BatchVerify(ctx context.Context, ids []string) []entities.BatchResult {
	results := make([]entities.BatchResult, len(ids))

	// Errors stay per id; the group itself never fails.
	var g errgroup.Group
	g.SetLimit(s.concurrency)

	for i, id := range ids {
		results[i].ItemID = id
		g.Go(func() error {
			results[i].Err = s.Verify(ctx, id)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	if failed > 0 {
		log.Warn().Int("requested", len(ids)).Int("failed", failed).Msg("batch verify finished with failures")
	}
	return results
}

func (s *VerificationService) publish(ctx context.Context, itemID string, eventType entities.ItemEventType) {
	if s.eventBus == nil {
		return
	}
	event := entities.NewItemEvent(itemID, "", eventType, nil)
	if err := s.eventBus.Publish(ctx, providers.EventChannelItemUpdates, event); err != nil {
		log.Warn().Err(err).Str("item_id", itemID).Str("event_type", string(eventType)).Msg("failed to publish item event")
	}
}
