// Command seed loads a YAML store/item seed file into PostgreSQL.
//
//	go run ./scripts/seed.go -file configs/seed.yaml
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/rs/zerolog/log"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/adapters/memory"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/repositories"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/infrastructure/clients/postgres"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/infrastructure/observability"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/pkg/config"
)

func main() {
	file := flag.String("file", "configs/seed.yaml", "seed file to load")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	observability.InitLogger("finditfast-seed", cfg.Env)

	ctx := context.Background()

	seed, err := memory.LoadSeed(*file)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load seed")
	}

	// Applying to an in-memory DB first validates coordinates and fills verification timestamps.
	staging := memory.NewDB()
	if err := seed.Apply(staging, time.Now().UTC()); err != nil {
		log.Fatal().Err(err).Msg("invalid seed")
	}

	pgClient, err := postgres.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pgClient.Close()

	db := goqu.New("postgres", pgClient.DB())

	if os.Getenv("RESET_DB") == "true" {
		log.Warn().Msg("RESET_DB=true, truncating tables before seeding")
		if _, err := pgClient.DB().ExecContext(ctx, `TRUNCATE TABLE item_flags, reports, items, stores`); err != nil {
			log.Fatal().Err(err).Msg("failed to truncate tables")
		}
	}

	stores, err := memory.NewStoreRepository(staging).List(ctx, repositories.StoreFilter{})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read staged stores")
	}
	itemRepo := memory.NewItemRepository(staging)

	var storeCount, itemCount int
	for _, store := range stores {
		query, args, err := db.Insert("stores").Rows(goqu.Record{
			"id":         store.ID,
			"name":       store.Name,
			"address":    store.Address,
			"latitude":   store.Location.Latitude,
			"longitude":  store.Location.Longitude,
			"is_active":  store.IsActive,
			"created_at": store.CreatedAt,
			"updated_at": store.UpdatedAt,
		}).OnConflict(goqu.DoNothing()).ToSQL()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to build store insert")
		}
		res, err := pgClient.DB().ExecContext(ctx, query, args...)
		if err != nil {
			log.Fatal().Err(err).Str("store_id", store.ID).Msg("failed to insert store")
		}
		if n, _ := res.RowsAffected(); n > 0 {
			storeCount++
		}

		items, err := itemRepo.ListByStore(ctx, store.ID)
		if err != nil {
			log.Fatal().Err(err).Str("store_id", store.ID).Msg("failed to read staged items")
		}
		for _, item := range items {
			var verifiedAt interface{}
			if item.VerifiedAt != nil {
				verifiedAt = *item.VerifiedAt
			}
			query, args, err := db.Insert("items").Rows(goqu.Record{
				"id":           item.ID,
				"store_id":     item.StoreID,
				"name":         item.Name,
				"description":  item.Description,
				"position_x":   item.Position.X,
				"position_y":   item.Position.Y,
				"verified":     item.Verified,
				"verified_at":  verifiedAt,
				"report_count": item.ReportCount,
				"created_at":   item.CreatedAt,
				"updated_at":   item.UpdatedAt,
			}).OnConflict(goqu.DoNothing()).ToSQL()
			if err != nil {
				log.Fatal().Err(err).Msg("failed to build item insert")
			}
			res, err := pgClient.DB().ExecContext(ctx, query, args...)
			if err != nil {
				log.Fatal().Err(err).Str("item_id", item.ID).Msg("failed to insert item")
			}
			if n, _ := res.RowsAffected(); n > 0 {
				itemCount++
			}
		}
	}

	log.Info().Int("stores", storeCount).Int("items", itemCount).Str("file", *file).Msg("seed complete")
}
