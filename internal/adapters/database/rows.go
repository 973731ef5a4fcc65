package database

import (
	"database/sql"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/domain/entities"
	"github.com/muhammadhaseebiqbal-dev/FindITFast-sub000/internal/infrastructure/clients/postgres"
)

const (
	storesTable  = "stores"
	itemsTable   = "items"
	reportsTable = "reports"
	flagsTable   = "item_flags"
)

// handles builds the query builder and the struct scanner over one pool
func handles(client *postgres.Client) (*goqu.Database, *sqlx.DB) {
	return goqu.New("postgres", client.DB()), sqlx.NewDb(client.DB(), "postgres")
}

var storeColumns = []interface{}{
	"id", "name", "address", "latitude", "longitude", "is_active", "created_at", "updated_at",
}

type storeRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Address   string    `db:"address"`
	Latitude  float64   `db:"latitude"`
	Longitude float64   `db:"longitude"`
	IsActive  bool      `db:"is_active"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r storeRow) toEntity() *entities.Store {
	return &entities.Store{
		ID:        r.ID,
		Name:      r.Name,
		Address:   r.Address,
		Location:  entities.Location{Latitude: r.Latitude, Longitude: r.Longitude},
		IsActive:  r.IsActive,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

var itemColumns = []interface{}{
	"id", "store_id", "name", "description", "position_x", "position_y",
	"verified", "verified_at", "report_count", "created_at", "updated_at",
}

type itemRow struct {
	ID          string         `db:"id"`
	StoreID     string         `db:"store_id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	PositionX   float64        `db:"position_x"`
	PositionY   float64        `db:"position_y"`
	Verified    bool           `db:"verified"`
	VerifiedAt  sql.NullTime   `db:"verified_at"`
	ReportCount int            `db:"report_count"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
}

func (r itemRow) toEntity() *entities.Item {
	item := &entities.Item{
		ID:          r.ID,
		StoreID:     r.StoreID,
		Name:        r.Name,
		Description: r.Description.String,
		Position:    entities.FloorPosition{X: r.PositionX, Y: r.PositionY},
		Verified:    r.Verified,
		ReportCount: r.ReportCount,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.VerifiedAt.Valid {
		t := r.VerifiedAt.Time
		item.VerifiedAt = &t
	}
	return item
}

var reportColumns = []interface{}{
	"id", "item_id", "store_id", "type", "comment", "user_id", "latitude", "longitude", "created_at",
}

type reportRow struct {
	ID        string          `db:"id"`
	ItemID    string          `db:"item_id"`
	StoreID   string          `db:"store_id"`
	Type      string          `db:"type"`
	Comment   sql.NullString  `db:"comment"`
	UserID    sql.NullString  `db:"user_id"`
	Latitude  sql.NullFloat64 `db:"latitude"`
	Longitude sql.NullFloat64 `db:"longitude"`
	CreatedAt time.Time       `db:"created_at"`
}

func (r reportRow) toEntity() *entities.Report {
	report := &entities.Report{
		ID:        r.ID,
		ItemID:    r.ItemID,
		StoreID:   r.StoreID,
		Type:      entities.ReportType(r.Type),
		Comment:   r.Comment.String,
		Timestamp: r.CreatedAt,
	}
	if r.UserID.Valid {
		userID := r.UserID.String
		report.UserID = &userID
	}
	if r.Latitude.Valid && r.Longitude.Valid {
		report.Location = &entities.Location{Latitude: r.Latitude.Float64, Longitude: r.Longitude.Float64}
	}
	return report
}

var flagColumns = []interface{}{"id", "item_id", "store_id", "reason", "status", "created_at"}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// escapeLike makes % and _ in user input match literally
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
