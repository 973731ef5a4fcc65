//go:build integration

package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/adapters/database"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/application/services"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/repositories"
	apperrors "github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/pkg/errors"
)

func TestStoreAdapterIntegration(t *testing.T) {
	client := newTestPostgresClient(t)
	ctx := context.Background()

	insertStore(t, client.DB(), "s-b", 51.51, -0.12, true)
	insertStore(t, client.DB(), "s-a", 51.50, -0.13, true)
	insertStore(t, client.DB(), "s-c", 51.52, -0.14, false)

	stores := database.NewStoreAdapter(client)

	active := true
	list, err := stores.List(ctx, repositories.StoreFilter{IsActive: &active})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "s-a", list[0].ID)
	assert.Equal(t, 51.50, list[0].Location.Latitude)

	byIDs, err := stores.GetByIDs(ctx, []string{"s-c", "missing", "s-a"})
	require.NoError(t, err)
	require.Len(t, byIDs, 2)

	_, err = stores.GetByID(ctx, "missing")
	assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
}

func TestItemAdapterIntegration(t *testing.T) {
	client := newTestPostgresClient(t)
	ctx := context.Background()
	insertStore(t, client.DB(), "s-1", 51.50, -0.12, true)

	items := database.NewItemAdapter(client)
	now := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, items.Create(ctx, &entities.Item{
		ID: "i-1", StoreID: "s-1", Name: "Oat milk 100%",
		Position:  entities.FloorPosition{X: 3, Y: 7},
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, items.Create(ctx, &entities.Item{
		ID: "i-2", StoreID: "s-1", Name: "Whole milk",
		CreatedAt: now, UpdatedAt: now,
	}))

	t.Run("search escapes wildcards", func(t *testing.T) {
		found, err := items.SearchByName(ctx, "100%", 10)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "i-1", found[0].ID)

		found, err = items.SearchByName(ctx, "MILK", 10)
		require.NoError(t, err)
		assert.Len(t, found, 2)
	})

	t.Run("report count increments atomically", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			require.NoError(t, items.IncrementReportCount(ctx, "i-2"))
		}
		item, err := items.GetByID(ctx, "i-2")
		require.NoError(t, err)
		assert.Equal(t, 5, item.ReportCount)

		require.NoError(t, items.ResetReportCount(ctx, "i-2"))
		item, err = items.GetByID(ctx, "i-2")
		require.NoError(t, err)
		assert.Equal(t, 0, item.ReportCount)
	})

	t.Run("unknown item is not found", func(t *testing.T) {
		err := items.IncrementReportCount(ctx, "nope")
		assert.Equal(t, apperrors.ErrorTypeNotFound, apperrors.TypeOf(err))
	})
}

func TestReportFlowIntegration(t *testing.T) {
	client := newTestPostgresClient(t)
	ctx := context.Background()
	insertStore(t, client.DB(), "s-1", 51.50, -0.12, true)

	items := database.NewItemAdapter(client)
	verification := services.NewVerificationService(items, services.DefaultVerificationPolicy())
	id, err := verification.CreateVerifiedItem(ctx, entities.NewItem{StoreID: "s-1", Name: "Bread"})
	require.NoError(t, err)

	reports := services.NewReportService(
		database.NewReportAdapter(client), items, database.NewFlagAdapter(client), services.DefaultFlagPolicy(),
	)
	for i := 0; i < 6; i++ {
		_, err := reports.ProcessReportAndFlag(ctx, services.ReportInput{ItemID: id, StoreID: "s-1", Type: entities.ReportTypeMissing})
		require.NoError(t, err)
	}

	stats, err := reports.GetStats(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 6, stats.Missing)

	flags, err := reports.ListPendingFlags(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, flags, 1)
	assert.Equal(t, id, flags[0].ItemID)

	review, err := verification.ListNeedingReview(ctx, "s-1", 0)
	require.NoError(t, err)
	require.Len(t, review, 1)
	assert.Equal(t, id, review[0].ID)
}
