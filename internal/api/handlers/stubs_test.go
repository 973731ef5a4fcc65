package handlers_test

import (
	"context"
	"errors"
	"time"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/application/services"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
)

type stubLocationService struct {
	state    entities.PermissionState
	location entities.Location
	err      error
	lastOpts *services.LocationOptions
}

func (s *stubLocationService) CheckPermission(ctx context.Context) entities.PermissionState {
	return s.state
}

func (s *stubLocationService) RequestLocation(ctx context.Context, opts *services.LocationOptions) (entities.Location, error) {
	s.lastOpts = opts
	return s.location, s.err
}

func (s *stubLocationService) State() entities.PermissionState {
	return s.state
}

type stubProximityService struct {
	stores    []entities.Ranked[*entities.Store]
	items     []entities.Ranked[entities.ItemWithStore]
	err       error
	lastUser  *entities.Location
	lastOpts  services.NearbyOptions
	lastQuery string
}

func (s *stubProximityService) NearbyStores(ctx context.Context, user *entities.Location, opts services.NearbyOptions) ([]entities.Ranked[*entities.Store], error) {
	s.lastUser = user
	s.lastOpts = opts
	return s.stores, s.err
}

func (s *stubProximityService) RankItems(ctx context.Context, user *entities.Location, query string, limit int) ([]entities.Ranked[entities.ItemWithStore], error) {
	s.lastUser = user
	s.lastQuery = query
	return s.items, s.err
}

type stubReportService struct {
	submitted []services.ReportInput
	err       error
	stats     entities.ReportStats
	flag      bool
}

func (s *stubReportService) ProcessReportAndFlag(ctx context.Context, input services.ReportInput) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.submitted = append(s.submitted, input)
	return "report-1", nil
}

func (s *stubReportService) GetStats(ctx context.Context, itemID string) (entities.ReportStats, error) {
	return s.stats, s.err
}

func (s *stubReportService) ShouldFlag(ctx context.Context, itemID string) (bool, error) {
	return s.flag, s.err
}

func (s *stubReportService) ListReports(ctx context.Context, itemID string) ([]*entities.Report, error) {
	return []*entities.Report{{ID: "r1", ItemID: itemID, Type: entities.ReportTypeMissing}}, s.err
}

func (s *stubReportService) ListPendingFlags(ctx context.Context, storeID string) ([]*entities.FlagRecord, error) {
	return []*entities.FlagRecord{{ID: "f1", StoreID: storeID, Status: entities.FlagStatusPendingReview}}, s.err
}

type stubVerificationService struct {
	created   []entities.NewItem
	actions   []string
	err       error
	results   []entities.BatchResult
	threshold int
	maxAge    time.Duration
}

func (s *stubVerificationService) CreateVerifiedItem(ctx context.Context, input entities.NewItem) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.created = append(s.created, input)
	return "item-1", nil
}

func (s *stubVerificationService) record(action, id string) error {
	s.actions = append(s.actions, action+":"+id)
	return s.err
}

func (s *stubVerificationService) Verify(ctx context.Context, id string) error {
	return s.record("verify", id)
}

func (s *stubVerificationService) Unverify(ctx context.Context, id string) error {
	return s.record("unverify", id)
}

func (s *stubVerificationService) Refresh(ctx context.Context, id string) error {
	return s.record("refresh", id)
}

func (s *stubVerificationService) ResetReportCount(ctx context.Context, id string) error {
	return s.record("reset", id)
}

func (s *stubVerificationService) BatchVerify(ctx context.Context, ids []string) []entities.BatchResult {
	return s.results
}

func (s *stubVerificationService) Stats(ctx context.Context, storeID string) (entities.VerificationStats, error) {
	return entities.VerificationStats{Total: 3, Verified: 2, Unverified: 1}, s.err
}

func (s *stubVerificationService) ListNeedingReview(ctx context.Context, storeID string, threshold int) ([]*entities.Item, error) {
	s.threshold = threshold
	return []*entities.Item{}, s.err
}

func (s *stubVerificationService) ListExpired(ctx context.Context, storeID string, maxAge time.Duration) ([]*entities.Item, error) {
	s.maxAge = maxAge
	return []*entities.Item{}, s.err
}

func (s *stubVerificationService) Policy() services.VerificationPolicy {
	return services.DefaultVerificationPolicy()
}

var errCacheDown = errors.New("redis: connection refused")

type failingCache struct{}

func (failingCache) Get(ctx context.Context, key string) ([]byte, error) { return nil, errCacheDown }

func (failingCache) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	return errCacheDown
}

func (failingCache) Delete(ctx context.Context, key string) error { return errCacheDown }

func (failingCache) Exists(ctx context.Context, key string) (bool, error) { return false, errCacheDown }

func (failingCache) Incr(ctx context.Context, key string, expirationSeconds int) (int64, error) {
	return 0, errCacheDown
}
