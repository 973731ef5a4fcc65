package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/repositories"
	apperrors "github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/pkg/errors"
)

// ReportRepository implements repositories.ReportRepository over a DB
type ReportRepository struct {
	db *DB
}

// NewReportRepository creates a report repository backed by db
func NewReportRepository(db *DB) repositories.ReportRepository {
	return &ReportRepository{db: db}
}

// Create appends a report
func (r *ReportRepository) Create(ctx context.Context, report *entities.Report) error {
	if report == nil {
		return apperrors.NewInternalError("report is nil", fmt.Errorf("report is nil"))
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.reports[report.ItemID] = append(r.db.reports[report.ItemID], *report)
	return nil
}

// ListByItem returns an item's reports in submission order
func (r *ReportRepository) ListByItem(ctx context.Context, itemID string) ([]*entities.Report, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	stored := r.db.reports[itemID]
	reports := make([]*entities.Report, 0, len(stored))
	for i := range stored {
		report := stored[i]
		reports = append(reports, &report)
	}
	return reports, nil
}

// FlagRepository implements repositories.FlagRepository over a DB
type FlagRepository struct {
	db *DB
}

// NewFlagRepository creates a flag repository backed by db
func NewFlagRepository(db *DB) repositories.FlagRepository {
	return &FlagRepository{db: db}
}

// Create appends a flag
func (r *FlagRepository) Create(ctx context.Context, flag *entities.FlagRecord) error {
	if flag == nil {
		return apperrors.NewInternalError("flag is nil", fmt.Errorf("flag is nil"))
	}

	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.flags = append(r.db.flags, *flag)
	return nil
}

// ListPending returns the store's flags awaiting review, newest first
func (r *FlagRepository) ListPending(ctx context.Context, storeID string) ([]*entities.FlagRecord, error) {
	r.db.mu.RLock()
	flags := make([]*entities.FlagRecord, 0)
	for i := range r.db.flags {
		flag := r.db.flags[i]
		if flag.StoreID == storeID && flag.Status == entities.FlagStatusPendingReview {
			flags = append(flags, &flag)
		}
	}
	r.db.mu.RUnlock()

	sort.SliceStable(flags, func(i, j int) bool {
		return flags[i].Timestamp.After(flags[j].Timestamp)
	})
	return flags, nil
}
