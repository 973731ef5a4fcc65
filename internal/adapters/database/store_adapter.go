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

// StoreAdapter implements the StoreRepository interface
type StoreAdapter struct {
	db  *goqu.Database
	dbx *sqlx.DB
}

// NewStoreAdapter creates a new store adapter
func NewStoreAdapter(client *postgres.Client) repositories.StoreRepository {
	db, dbx := handles(client)
	return &StoreAdapter{db: db, dbx: dbx}
}

// GetByID retrieves a store by ID
func (a *StoreAdapter) GetByID(ctx context.Context, id string) (*entities.Store, error) {
	query, args, err := a.db.Select(storeColumns...).
		From(storesTable).
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	var row storeRow
	err = a.dbx.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("store with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get store", err)
	}

	return row.toEntity(), nil
}

// GetByIDs retrieves multiple stores by their IDs
func (a *StoreAdapter) GetByIDs(ctx context.Context, ids []string) ([]*entities.Store, error) {
	if len(ids) == 0 {
		return []*entities.Store{}, nil
	}

	query, args, err := a.db.Select(storeColumns...).
		From(storesTable).
		Where(goqu.Ex{"id": ids}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.selectStores(ctx, query, args)
}

// List retrieves stores with filters
func (a *StoreAdapter) List(ctx context.Context, filter repositories.StoreFilter) ([]*entities.Store, error) {
	ds := a.db.Select(storeColumns...).From(storesTable).Order(goqu.I("name").Asc(), goqu.I("id").Asc())

	if filter.IsActive != nil {
		ds = ds.Where(goqu.Ex{"is_active": *filter.IsActive})
	}
	if filter.Limit > 0 {
		ds = ds.Limit(uint(filter.Limit))
	}
	if filter.Offset > 0 {
		ds = ds.Offset(uint(filter.Offset))
	}

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	return a.selectStores(ctx, query, args)
}

func (a *StoreAdapter) selectStores(ctx context.Context, query string, args []interface{}) ([]*entities.Store, error) {
	var rows []storeRow
	if err := a.dbx.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, apperrors.NewInternalError("failed to list stores", err)
	}

	stores := make([]*entities.Store, 0, len(rows))
	for _, row := range rows {
		stores = append(stores, row.toEntity())
	}
	return stores, nil
}
