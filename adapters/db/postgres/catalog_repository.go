// Package postgres caches the open-data catalog listing so the explorer
// can keep serving dataset lists when the upstream API is slow or down.
// Chart configuration is never stored here.
package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/zuzivian/sgraphs/adapters/opendata"
	"github.com/zuzivian/sgraphs/internal"
	"github.com/zuzivian/sgraphs/internal/errors"
)

const catalogSchema = `
CREATE TABLE IF NOT EXISTS catalog_datasets (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	title         TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	organization  TEXT NOT NULL DEFAULT '',
	resource_ids  TEXT[] NOT NULL DEFAULT '{}',
	last_updated  TEXT NOT NULL DEFAULT '',
	cached_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_catalog_datasets_org ON catalog_datasets (organization);
`

// CatalogRepository persists dataset listing metadata.
type CatalogRepository struct {
	db     *sqlx.DB
	logger *internal.Logger
}

// NewCatalogRepository creates a repository over an open connection.
func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{
		db:     db,
		logger: internal.NewDefaultLogger("Catalog"),
	}
}

// EnsureSchema creates the cache table when missing.
func (r *CatalogRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, catalogSchema); err != nil {
		return errors.Wrap(err, "failed to create catalog schema")
	}
	return nil
}

type catalogRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Title        string         `db:"title"`
	Description  string         `db:"description"`
	Organization string         `db:"organization"`
	ResourceIDs  pq.StringArray `db:"resource_ids"`
	LastUpdated  string         `db:"last_updated"`
	CachedAt     time.Time      `db:"cached_at"`
}

// UpsertDatasets refreshes cached rows for a fetched listing page.
func (r *CatalogRepository) UpsertDatasets(ctx context.Context, datasets []opendata.DatasetSummary) error {
	if len(datasets) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO catalog_datasets
			(id, name, title, description, organization, resource_ids, last_updated, cached_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			organization = EXCLUDED.organization,
			resource_ids = EXCLUDED.resource_ids,
			last_updated = EXCLUDED.last_updated,
			cached_at = now()`

	for _, ds := range datasets {
		if _, err := tx.ExecContext(ctx, query,
			ds.ID, ds.Name, ds.Title, ds.Description, ds.Organization,
			pq.StringArray(ds.ResourceIDs), ds.LastUpdated); err != nil {
			return errors.Wrapf(err, "failed to upsert dataset %s", ds.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit catalog upsert")
	}
	r.logger.Debug("cached %d catalog entries", len(datasets))
	return nil
}

// Search serves a listing page from cache, newest first, filtering by a
// case-insensitive title/description match when query is non-empty.
func (r *CatalogRepository) Search(ctx context.Context, query string, limit, offset int) (*opendata.DatasetPage, error) {
	if limit <= 0 {
		limit = 20
	}

	where := ""
	args := []interface{}{}
	if query != "" {
		where = `WHERE title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%'`
		args = append(args, query)
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM catalog_datasets " + where
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, errors.Wrap(err, "failed to count cached datasets")
	}

	listQuery := "SELECT * FROM catalog_datasets " + where + " ORDER BY cached_at DESC, title ASC"
	if query != "" {
		listQuery += " LIMIT $2 OFFSET $3"
	} else {
		listQuery += " LIMIT $1 OFFSET $2"
	}
	args = append(args, limit, offset)

	var rows []catalogRow
	if err := r.db.SelectContext(ctx, &rows, listQuery, args...); err != nil {
		return nil, errors.Wrap(err, "failed to query cached datasets")
	}

	page := &opendata.DatasetPage{
		Total:    total,
		Page:     offset/limit + 1,
		PageSize: limit,
	}
	for _, row := range rows {
		page.Datasets = append(page.Datasets, opendata.DatasetSummary{
			ID:           row.ID,
			Name:         row.Name,
			Title:        row.Title,
			Description:  row.Description,
			Organization: row.Organization,
			ResourceIDs:  row.ResourceIDs,
			LastUpdated:  row.LastUpdated,
		})
	}
	return page, nil
}

// GetByID returns a single cached dataset, or NotFound.
func (r *CatalogRepository) GetByID(ctx context.Context, id string) (*opendata.DatasetSummary, error) {
	var row catalogRow
	err := r.db.GetContext(ctx, &row, "SELECT * FROM catalog_datasets WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("dataset")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load cached dataset")
	}
	return &opendata.DatasetSummary{
		ID:           row.ID,
		Name:         row.Name,
		Title:        row.Title,
		Description:  row.Description,
		Organization: row.Organization,
		ResourceIDs:  row.ResourceIDs,
		LastUpdated:  row.LastUpdated,
	}, nil
}
