package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/repositories"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/infrastructure/clients/postgres"
	apperrors "github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/pkg/errors"
)

// ItemAdapter implements the ItemRepository interface
type ItemAdapter struct {
	client *postgres.Client
	db     *goqu.Database
	dbx    *sqlx.DB
}

// NewItemAdapter creates a new item adapter
func NewItemAdapter(client *postgres.Client) repositories.ItemRepository {
	db, dbx := handles(client)
	return &ItemAdapter{client: client, db: db, dbx: dbx}
}

// Create creates a new item
func (a *ItemAdapter) Create(ctx context.Context, item *entities.Item) error {
	if item == nil {
		return apperrors.NewInternalError("item is nil", fmt.Errorf("item is nil"))
	}

	record := goqu.Record{
		"id":           item.ID,
		"store_id":     item.StoreID,
		"name":         item.Name,
		"description":  nullString(item.Description),
		"position_x":   item.Position.X,
		"position_y":   item.Position.Y,
		"verified":     item.Verified,
		"verified_at":  nullTime(item.VerifiedAt),
		"report_count": item.ReportCount,
		"created_at":   item.CreatedAt,
		"updated_at":   item.UpdatedAt,
	}

	query, args, err := a.db.Insert(itemsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to create item", err)
	}
	return nil
}

// GetByID retrieves an item by ID
func (a *ItemAdapter) GetByID(ctx context.Context, id string) (*entities.Item, error) {
	query, args, err := a.db.Select(itemColumns...).
		From(itemsTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var row itemRow
	err = a.dbx.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("item with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get item", err)
	}
	return row.toEntity(), nil
}

// ListByStore retrieves all items of a store
func (a *ItemAdapter) ListByStore(ctx context.Context, storeID string) ([]*entities.Item, error) {
	query, args, err := a.db.Select(itemColumns...).
		From(itemsTable).
		Where(goqu.Ex{"store_id": storeID}).
		Order(goqu.I("name").Asc(), goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.selectItems(ctx, query, args)
}

// SearchByName finds items whose name contains query, case-insensitively
func (a *ItemAdapter) SearchByName(ctx context.Context, query string, limit int) ([]*entities.Item, error) {
	ds := a.db.Select(itemColumns...).
		From(itemsTable).
		Where(goqu.I("name").ILike("%" + escapeLike(query) + "%")).
		Order(goqu.I("name").Asc(), goqu.I("id").Asc())
	if limit > 0 {
		ds = ds.Limit(uint(limit))
	}

	sqlQuery, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}
	return a.selectItems(ctx, sqlQuery, args)
}

// Update overwrites the fields set in update
func (a *ItemAdapter) Update(ctx context.Context, id string, update entities.ItemUpdate) error {
	record := goqu.Record{"updated_at": update.UpdatedAt}
	if update.Verified != nil {
		record["verified"] = *update.Verified
	}
	if update.VerifiedAt != nil {
		record["verified_at"] = *update.VerifiedAt
	}

	query, args, err := a.db.Update(itemsTable).Set(record).Where(goqu.Ex{"id": id}).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}
	return a.execOne(ctx, id, "failed to update item", query, args...)
}

// IncrementReportCount adds one to the report count in a single statement
func (a *ItemAdapter) IncrementReportCount(ctx context.Context, id string) error {
	query := `UPDATE items SET report_count = report_count + 1, updated_at = NOW() WHERE id = $1`
	return a.execOne(ctx, id, "failed to increment report count", query, id)
}

// ResetReportCount sets the report count back to zero
func (a *ItemAdapter) ResetReportCount(ctx context.Context, id string) error {
	query := `UPDATE items SET report_count = 0, updated_at = NOW() WHERE id = $1`
	return a.execOne(ctx, id, "failed to reset report count", query, id)
}

func (a *ItemAdapter) execOne(ctx context.Context, id, failure, query string, args ...interface{}) error {
	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError(failure, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("item with id %s not found", id))
	}
	return nil
}

func (a *ItemAdapter) selectItems(ctx context.Context, query string, args []interface{}) ([]*entities.Item, error) {
	var rows []itemRow
	if err := a.dbx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list items", err)
	}

	items := make([]*entities.Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}
