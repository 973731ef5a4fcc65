package repositories

import (
	"context"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
)

// ReportRepository stores crowd reports. Reports are append-only.
type ReportRepository interface {
	Create(ctx context.Context, report *entities.Report) error
	ListByItem(ctx context.Context, itemID string) ([]*entities.Report, error)
}

// FlagRepository stores flags raised for administrative review
type FlagRepository interface {
	Create(ctx context.Context, flag *entities.FlagRecord) error
	ListPending(ctx context.Context, storeID string) ([]*entities.FlagRecord, error)
}
