package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/repositories"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/infrastructure/clients/postgres"
	apperrors "github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/pkg/errors"
)

func setupMockDB(t *testing.T) (*postgres.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return postgres.NewClientFromDB(db), mock
}

var itemRowColumns = []string{
	"id", "store_id", "name", "description", "position_x", "position_y",
	"verified", "verified_at", "report_count", "created_at", "updated_at",
}

func TestItemAdapter_IncrementReportCount(t *testing.T) {
	t.Run("increments in a single statement", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewItemAdapter(client)

		mock.ExpectExec(`UPDATE items SET report_count = report_count \+ 1`).
			WithArgs("item-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, adapter.IncrementReportCount(context.Background(), "item-1"))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown item is not found", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewItemAdapter(client)

		mock.ExpectExec(`UPDATE items SET report_count`).
			WithArgs("ghost").
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.IncrementReportCount(context.Background(), "ghost")
		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("database failure is internal", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewItemAdapter(client)

		mock.ExpectExec(`UPDATE items SET report_count`).WillReturnError(errors.New("connection reset"))

		err := adapter.IncrementReportCount(context.Background(), "item-1")
		assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
	})
}

func TestItemAdapter_ResetReportCount(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewItemAdapter(client)

	mock.ExpectExec(`UPDATE items SET report_count = 0`).
		WithArgs("item-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, adapter.ResetReportCount(context.Background(), "item-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemAdapter_Update(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("verify writes flag and timestamps", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewItemAdapter(client)
		verified := true

		mock.ExpectExec(`UPDATE "items" SET "updated_at"=.*,"verified"=TRUE,"verified_at"=.* WHERE \("id" = 'item-1'\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := adapter.Update(context.Background(), "item-1", entities.ItemUpdate{Verified: &verified, VerifiedAt: &now, UpdatedAt: now})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unverify leaves verified_at alone", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewItemAdapter(client)
		verified := false

		mock.ExpectExec(`UPDATE "items" SET "updated_at"='[^']*',"verified"=FALSE WHERE \("id" = 'item-1'\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := adapter.Update(context.Background(), "item-1", entities.ItemUpdate{Verified: &verified, UpdatedAt: now})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown item is not found", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewItemAdapter(client)

		mock.ExpectExec(`UPDATE "items"`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := adapter.Update(context.Background(), "ghost", entities.ItemUpdate{UpdatedAt: now})
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestItemAdapter_GetByID(t *testing.T) {
	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("maps the row", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewItemAdapter(client)

		mock.ExpectQuery(`SELECT .* FROM "items" WHERE \("id" = 'item-1'\)`).
			WillReturnRows(sqlmock.NewRows(itemRowColumns).
				AddRow("item-1", "store-1", "Oat milk", nil, 12.5, 40.0, true, created, 2, created, created))

		item, err := adapter.GetByID(context.Background(), "item-1")

		require.NoError(t, err)
		assert.Equal(t, "Oat milk", item.Name)
		assert.Equal(t, "", item.Description)
		assert.Equal(t, entities.FloorPosition{X: 12.5, Y: 40}, item.Position)
		assert.True(t, item.Verified)
		require.NotNil(t, item.VerifiedAt)
		assert.True(t, item.VerifiedAt.Equal(created))
		assert.Equal(t, 2, item.ReportCount)
	})

	t.Run("missing row is not found", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewItemAdapter(client)

		mock.ExpectQuery(`SELECT .* FROM "items"`).WillReturnRows(sqlmock.NewRows(itemRowColumns))

		_, err := adapter.GetByID(context.Background(), "ghost")
		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestItemAdapter_SearchByName(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewItemAdapter(client)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM "items" WHERE \("name" ILIKE '%50\\%%'\).* LIMIT 10`).
		WillReturnRows(sqlmock.NewRows(itemRowColumns).
			AddRow("item-2", "store-1", "50% off bread", "day old", 1.0, 2.0, false, nil, 0, now, now))

	items, err := adapter.SearchByName(context.Background(), "50%", 10)

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].VerifiedAt)
	assert.Equal(t, "day old", items[0].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemAdapter_Create(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewItemAdapter(client)
	now := time.Now().UTC()

	mock.ExpectExec(`INSERT INTO "items"`).WillReturnResult(sqlmock.NewResult(0, 1))

	err := adapter.Create(context.Background(), &entities.Item{ID: "item-1", StoreID: "store-1", Name: "Bread", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportAdapter(t *testing.T) {
	now := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	t.Run("create failure is internal", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewReportAdapter(client)

		mock.ExpectExec(`INSERT INTO "reports"`).WillReturnError(errors.New("disk full"))

		err := adapter.Create(context.Background(), &entities.Report{ID: "r1", ItemID: "item-1", StoreID: "store-1", Type: entities.ReportTypeMissing, Timestamp: now})
		assert.Equal(t, apperrors.ErrorTypeInternal, apperrors.TypeOf(err))
	})

	t.Run("lists reports with optional fields", func(t *testing.T) {
		client, mock := setupMockDB(t)
		adapter := NewReportAdapter(client)

		mock.ExpectQuery(`FROM "reports" WHERE \("item_id" = 'item-1'\) ORDER BY "created_at" ASC`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "item_id", "store_id", "type", "comment", "user_id", "latitude", "longitude", "created_at"}).
				AddRow("r1", "item-1", "store-1", "missing", "shelf empty", "user-9", 51.5, -0.12, now).
				AddRow("r2", "item-1", "store-1", "found", nil, nil, nil, nil, now))

		reports, err := adapter.ListByItem(context.Background(), "item-1")

		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.Equal(t, entities.ReportTypeMissing, reports[0].Type)
		require.NotNil(t, reports[0].UserID)
		assert.Equal(t, "user-9", *reports[0].UserID)
		assert.Equal(t, &entities.Location{Latitude: 51.5, Longitude: -0.12}, reports[0].Location)
		assert.Nil(t, reports[1].UserID)
		assert.Nil(t, reports[1].Location)
	})
}

func TestFlagAdapter_ListPending(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewFlagAdapter(client)
	now := time.Now().UTC()

	mock.ExpectQuery(`FROM "item_flags" WHERE .*"status" = 'pending_review'.*"store_id" = 'store-1'`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "item_id", "store_id", "reason", "status", "created_at"}).
			AddRow("f1", "item-1", "store-1", "Multiple reports: missing", "pending_review", now))

	flags, err := adapter.ListPending(context.Background(), "store-1")

	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, entities.FlagStatusPendingReview, flags[0].Status)
	assert.Equal(t, "Multiple reports: missing", flags[0].Reason)
}

func TestStoreAdapter_List(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewStoreAdapter(client)
	now := time.Now().UTC()
	active := true

	mock.ExpectQuery(`FROM "stores" WHERE \("is_active" IS TRUE\) ORDER BY "name" ASC, "id" ASC LIMIT 5`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "address", "latitude", "longitude", "is_active", "created_at", "updated_at"}).
			AddRow("store-1", "Corner Shop", "1 High St", 51.5, -0.1, true, now, now))

	stores, err := adapter.List(context.Background(), repositories.StoreFilter{IsActive: &active, Limit: 5})

	require.NoError(t, err)
	require.Len(t, stores, 1)
	assert.Equal(t, entities.Location{Latitude: 51.5, Longitude: -0.1}, stores[0].Location)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreAdapter_GetByIDsEmpty(t *testing.T) {
	client, mock := setupMockDB(t)
	adapter := NewStoreAdapter(client)

	stores, err := adapter.GetByIDs(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, stores)
	assert.NoError(t, mock.ExpectationsWereMet())
}
