package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/repositories"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/infrastructure/clients/postgres"
	apperrors "github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/pkg/errors"
)

// ReportAdapter persists crowd reports in Postgres. Rows are never updated.
type ReportAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	dbx    *sqlx.DB
}

// NewReportAdapter creates a new report adapter
func NewReportAdapter(client *postgres.Client) repositories.ReportRepository {
	db, dbx := handles(client)
	return &ReportAdapter{client: client, db: db, dbx: dbx}
}

// Create inserts a report record
func (a *ReportAdapter) Create(ctx context.Context, report *entities.Report) error {
	if report == nil {
		return apperrors.NewInternalError("report is nil", fmt.Errorf("report is nil"))
	}

	record := goqu.Record{
		"id":         report.ID,
		"item_id":    report.ItemID,
		"store_id":   report.StoreID,
		"type":       string(report.Type),
		"comment":    nullString(report.Comment),
		"user_id":    sql.NullString{},
		"latitude":   sql.NullFloat64{},
		"longitude":  sql.NullFloat64{},
		"created_at": report.Timestamp,
	}
	if report.UserID != nil {
		record["user_id"] = nullString(*report.UserID)
	}
	if report.Location != nil {
		record["latitude"] = sql.NullFloat64{Float64: report.Location.Latitude, Valid: true}
		record["longitude"] = sql.NullFloat64{Float64: report.Location.Longitude, Valid: true}
	}

	query, args, err := a.db.Insert(reportsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build report insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create report", err)
	}
	return nil
}

// ListByItem returns an item's reports, oldest first
func (a *ReportAdapter) ListByItem(ctx context.Context, itemID string) ([]*entities.Report, error) {
	query, args, err := a.db.Select(reportColumns...).
		From(reportsTable).
		Where(goqu.Ex{"item_id": itemID}).
		Order(goqu.I("created_at").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var rows []reportRow
	if err := a.dbx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list reports", err)
	}

	reports := make([]*entities.Report, 0, len(rows))
	for _, row := range rows {
		reports = append(reports, row.toEntity())
	}
	return reports, nil
}

// FlagAdapter persists review flags in Postgres
type FlagAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	dbx    *sqlx.DB
}

// NewFlagAdapter creates a new flag adapter
func NewFlagAdapter(client *postgres.Client) repositories.FlagRepository {
	db, dbx := handles(client)
	return &FlagAdapter{client: client, db: db, dbx: dbx}
}

// Create inserts a flag record
func (a *FlagAdapter) Create(ctx context.Context, flag *entities.FlagRecord) error {
	query, args, err := a.db.Insert(flagsTable).Rows(goqu.Record{
		"id":         flag.ID,
		"item_id":    flag.ItemID,
		"store_id":   flag.StoreID,
		"reason":     flag.Reason,
		"status":     string(flag.Status),
		"created_at": flag.Timestamp,
	}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build flag insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create flag", err)
	}
	return nil
}

// ListPending returns the store's flags awaiting review, newest first
func (a *FlagAdapter) ListPending(ctx context.Context, storeID string) ([]*entities.FlagRecord, error) {
	query, args, err := a.db.Select(flagColumns...).
		From(flagsTable).
		Where(goqu.Ex{"store_id": storeID, "status": string(entities.FlagStatusPendingReview)}).
		Order(goqu.I("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	flags := make([]*entities.FlagRecord, 0)
	if err := a.dbx.SelectContext(ctx, &flags, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list flags", err)
	}
	return flags, nil
}
