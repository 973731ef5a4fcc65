package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/providers"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/repositories"
	apperrors "github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/pkg/errors"
)

const (
	maxReportCommentLength = 500
	minStatsVersionTTL     = time.Hour
)

// FlagPolicy decides when crowd reports put an item up for review
type FlagPolicy struct {
	// MinNegative is the minimum number of missing/moved reports before flagging.
	MinNegative int
}

// DefaultFlagPolicy flags at three negative reports
func DefaultFlagPolicy() FlagPolicy {
	return FlagPolicy{MinNegative: 3}
}

// ShouldFlag requires both a minimum volume of negative reports and a negative majority
func (p FlagPolicy) ShouldFlag(stats entities.ReportStats) bool {
	negative := stats.Negative()
	return negative >= p.MinNegative && negative > stats.Positive()
}

// ReportInput is a crowd submission about an item
type ReportInput struct {
	ItemID   string
	StoreID  string
	Type     entities.ReportType
	Comment  string
	UserID   *string
	Location *entities.Location
}

// ReportService records crowd reports and flags items whose reports turn negative
type ReportService struct {
	reports  repositories.ReportRepository
	items    repositories.ItemRepository
	flags    repositories.FlagRepository
	policy   FlagPolicy
	cache    providers.CacheProvider
	statsTTL time.Duration
	eventBus providers.EventBus
	now      func() time.Time
}

// NewReportService creates a new report service
func NewReportService(
	reports repositories.ReportRepository,
	items repositories.ItemRepository,
	flags repositories.FlagRepository,
	policy FlagPolicy,
) *ReportService {
	if policy.MinNegative < 1 {
		policy = DefaultFlagPolicy()
	}
	return &ReportService{
		reports: reports,
		items:   items,
		flags:   flags,
		policy:  policy,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SetCache enables caching of report stats for ttl
func (s *ReportService) SetCache(cache providers.CacheProvider, ttl time.Duration) {
	s.cache = cache
	s.statsTTL = ttl
}

// SetEventBus sets the event bus for report and flag events
func (s *ReportService) SetEventBus(eventBus providers.EventBus) {
	s.eventBus = eventBus
}

// SubmitReport stores a report and, for missing/moved reports, bumps the item's report count.
// Store failures come back as a REPORT_SUBMISSION AppError with no storage detail.
func (s *ReportService) SubmitReport(ctx context.Context, input ReportInput) (string, error) {
	report, err := s.buildReport(input)
	if err != nil {
		return "", err
	}

	if err := s.reports.Create(ctx, report); err != nil {
		log.Error().Err(err).Str("item_id", report.ItemID).Msg("failed to store report")
		return "", apperrors.NewReportSubmissionError(err)
	}

	s.invalidateStats(ctx, report.ItemID)

	if report.Type.IsNegative() {
		if err := s.items.IncrementReportCount(ctx, report.ItemID); err != nil {
			log.Error().Err(err).
				Str("item_id", report.ItemID).
				Str("report_id", report.ID).
				Msg("report stored but report count increment failed")
			return "", apperrors.NewReportSubmissionError(err)
		}
	}

	s.publish(ctx, entities.NewItemEvent(report.ItemID, report.StoreID, entities.ItemEventTypeReportSubmitted, map[string]interface{}{
		"report_id": report.ID,
		"type":      string(report.Type),
	}))

	return report.ID, nil
}

// ProcessReportAndFlag submits the report and, for negative reports only, flags the item
// when the flag policy says so. Flag failures are logged and never fail the call.
func (s *ReportService) ProcessReportAndFlag(ctx context.Context, input ReportInput) (string, error) {
	reportID, err := s.SubmitReport(ctx, input)
	if err != nil {
		return "", err
	}

	if !input.Type.IsNegative() {
		return reportID, nil
	}

	flag, err := s.ShouldFlag(ctx, input.ItemID)
	if err != nil {
		log.Warn().Err(err).Str("item_id", input.ItemID).Msg("could not evaluate flag policy")
		return reportID, nil
	}
	if !flag {
		return reportID, nil
	}
	if s.hasPendingFlag(ctx, input.ItemID, strings.TrimSpace(input.StoreID)) {
		return reportID, nil
	}

	reason := fmt.Sprintf("Multiple reports: %s", input.Type)
	if err := s.FlagForReview(ctx, input.ItemID, input.StoreID, reason); err != nil {
		log.Warn().Err(err).Str("item_id", input.ItemID).Msg("failed to flag item for review")
	}

	return reportID, nil
}

// GetStats folds all reports of an item into per-type counts
func (s *ReportService) GetStats(ctx context.Context, itemID string) (entities.ReportStats, error) {
	if strings.TrimSpace(itemID) == "" {
		return entities.ReportStats{}, apperrors.NewValidationError("item id is required")
	}

	cached, version, ok := s.cachedStats(ctx, itemID)
	if ok {
		return cached, nil
	}

	stats, err := s.freshStats(ctx, itemID)
	if err != nil {
		return entities.ReportStats{}, err
	}

	s.storeStats(ctx, itemID, version, stats)
	return stats, nil
}

// ShouldFlag evaluates the flag policy against the item's current reports
func (s *ReportService) ShouldFlag(ctx context.Context, itemID string) (bool, error) {
	stats, err := s.freshStats(ctx, itemID)
	if err != nil {
		return false, err
	}
	return s.policy.ShouldFlag(stats), nil
}

// FlagForReview records a pending-review flag for the item
func (s *ReportService) FlagForReview(ctx context.Context, itemID, storeID, reason string) error {
	flag := &entities.FlagRecord{
		ID:        uuid.New().String(),
		ItemID:    itemID,
		StoreID:   storeID,
		Reason:    reason,
		Status:    entities.FlagStatusPendingReview,
		Timestamp: s.now(),
	}
	if err := s.flags.Create(ctx, flag); err != nil {
		return fmt.Errorf("failed to record flag for item %s: %w", itemID, err)
	}

	log.Info().Str("item_id", itemID).Str("reason", reason).Msg("item flagged for review")

	s.publish(ctx, entities.NewItemEvent(itemID, storeID, entities.ItemEventTypeFlagged, map[string]interface{}{
		"flag_id": flag.ID,
		"reason":  reason,
	}))
	return nil
}

// ListReports returns every report filed against an item
func (s *ReportService) ListReports(ctx context.Context, itemID string) ([]*entities.Report, error) {
	return s.reports.ListByItem(ctx, itemID)
}

// ListPendingFlags returns the flags of a store that still await review
func (s *ReportService) ListPendingFlags(ctx context.Context, storeID string) ([]*entities.FlagRecord, error) {
	return s.flags.ListPending(ctx, storeID)
}

// hasPendingFlag reports whether the item already awaits review. A failed lookup counts as no flag.
func (s *ReportService) hasPendingFlag(ctx context.Context, itemID, storeID string) bool {
	pending, err := s.flags.ListPending(ctx, storeID)
	if err != nil {
		log.Warn().Err(err).Str("item_id", itemID).Msg("could not list pending flags")
		return false
	}
	for _, f := range pending {
		if f.ItemID == strings.TrimSpace(itemID) {
			return true
		}
	}
	return false
}

func (s *ReportService) buildReport(input ReportInput) (*entities.Report, error) {
	input.ItemID = strings.TrimSpace(input.ItemID)
	input.StoreID = strings.TrimSpace(input.StoreID)
	input.Comment = strings.TrimSpace(input.Comment)

	if input.ItemID == "" {
		return nil, apperrors.NewValidationError("item id is required")
	}
	if input.StoreID == "" {
		return nil, apperrors.NewValidationError("store id is required")
	}
	if !input.Type.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("invalid report type %q", input.Type))
	}
	if len(input.Comment) > maxReportCommentLength {
		return nil, apperrors.NewValidationError("comment is too long")
	}
	if input.Location != nil {
		if err := input.Location.Validate(); err != nil {
			return nil, apperrors.NewValidationError(err.Error())
		}
	}

	return &entities.Report{
		ID:        uuid.New().String(),
		ItemID:    input.ItemID,
		StoreID:   input.StoreID,
		Type:      input.Type,
		Comment:   input.Comment,
		UserID:    input.UserID,
		Location:  input.Location,
		Timestamp: s.now(),
	}, nil
}

func (s *ReportService) freshStats(ctx context.Context, itemID string) (entities.ReportStats, error) {
	reports, err := s.reports.ListByItem(ctx, itemID)
	if err != nil {
		return entities.ReportStats{}, err
	}
	return entities.FoldReports(reports), nil
}

func reportStatsVersionKey(itemID string) string {
	return "reports:stats:version:" + itemID
}

func reportStatsCacheKey(itemID, version string) string {
	return "reports:stats:" + itemID + ":" + version
}

// statsVersion returns the token stats are currently cached under. Every invalidation rotates it.
func (s *ReportService) statsVersion(ctx context.Context, itemID string) (string, bool) {
	data, err := s.cache.Get(ctx, reportStatsVersionKey(itemID))
	if errors.Is(err, providers.ErrCacheMiss) {
		return "0", true
	}
	if err != nil || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

func (s *ReportService) cachedStats(ctx context.Context, itemID string) (entities.ReportStats, string, bool) {
	if s.cache == nil {
		return entities.ReportStats{}, "", false
	}
	version, ok := s.statsVersion(ctx, itemID)
	if !ok {
		return entities.ReportStats{}, "", false
	}
	data, err := s.cache.Get(ctx, reportStatsCacheKey(itemID, version))
	if err != nil || len(data) == 0 {
		return entities.ReportStats{}, version, false
	}
	var stats entities.ReportStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return entities.ReportStats{}, version, false
	}
	return stats, version, true
}

func (s *ReportService) storeStats(ctx context.Context, itemID, version string, stats entities.ReportStats) {
	if s.cache == nil || s.statsTTL <= 0 || version == "" {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, reportStatsCacheKey(itemID, version), data, int(s.statsTTL.Seconds())); err != nil {
		log.Warn().Err(err).Str("item_id", itemID).Msg("failed to cache report stats")
	}
}

func (s *ReportService) invalidateStats(ctx context.Context, itemID string) {
	if s.cache == nil {
		return
	}
	// The version must outlive any entry cached under the implicit "0" version.
	ttl := max(2*s.statsTTL, minStatsVersionTTL)
	if err := s.cache.Set(ctx, reportStatsVersionKey(itemID), []byte(uuid.New().String()), int(ttl.Seconds())); err != nil {
		log.Warn().Err(err).Str("item_id", itemID).Msg("failed to invalidate report stats")
	}
}

func (s *ReportService) publish(ctx context.Context, event *entities.ItemEvent) {
	if s.eventBus == nil {
		return
	}
	if err := s.eventBus.Publish(ctx, providers.EventChannelItemUpdates, event); err != nil {
		log.Warn().Err(err).Str("item_id", event.ItemID).Str("event_type", string(event.EventType)).Msg("failed to publish item event")
	}
	if event.StoreID != "" {
		if err := s.eventBus.Publish(ctx, providers.GetStoreChannel(event.StoreID), event); err != nil {
			log.Warn().Err(err).Str("store_id", event.StoreID).Msg("failed to publish store event")
		}
	}
}
