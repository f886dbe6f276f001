package postgres

import (
	"context"

	"github.com/zuzivian/sgraphs/adapters/opendata"
	"github.com/zuzivian/sgraphs/domain/dataset"
	"github.com/zuzivian/sgraphs/internal"
)

// CachedCatalog wraps the live open-data client with the Postgres
// listing cache: successful listings are written through, and cached
// rows are served when the upstream API is unreachable. Tabular
// resources are never cached; charts always reflect a live snapshot.
type CachedCatalog struct {
	client *opendata.Client
	repo   *CatalogRepository
	logger *internal.Logger
}

// NewCachedCatalog wires the live client to the cache repository.
func NewCachedCatalog(client *opendata.Client, repo *CatalogRepository) *CachedCatalog {
	return &CachedCatalog{
		client: client,
		repo:   repo,
		logger: internal.NewDefaultLogger("CachedCatalog"),
	}
}

// ListDatasets serves a live listing page, falling back to the cache
// when the upstream fails.
func (c *CachedCatalog) ListDatasets(ctx context.Context, query string, page, pageSize int) (*opendata.DatasetPage, error) {
	listing, err := c.client.ListDatasets(ctx, query, page, pageSize)
	if err == nil {
		if cacheErr := c.repo.UpsertDatasets(ctx, listing.Datasets); cacheErr != nil {
			c.logger.Warn("cache write failed: %v", cacheErr)
		}
		return listing, nil
	}

	c.logger.Warn("upstream listing failed, serving cache: %v", err)
	offset := (page - 1) * pageSize
	if offset < 0 {
		offset = 0
	}
	cached, cacheErr := c.repo.Search(ctx, query, pageSize, offset)
	if cacheErr != nil {
		return nil, err
	}
	return cached, nil
}

// GetDataset serves live metadata, falling back to the cached listing
// entry.
func (c *CachedCatalog) GetDataset(ctx context.Context, id string) (*opendata.DatasetSummary, error) {
	summary, err := c.client.GetDataset(ctx, id)
	if err == nil {
		return summary, nil
	}
	cached, cacheErr := c.repo.GetByID(ctx, id)
	if cacheErr != nil {
		return nil, err
	}
	c.logger.Warn("upstream dataset fetch failed, serving cache: %v", err)
	return cached, nil
}

// ListOrganizations is a live passthrough; organizations are not cached.
func (c *CachedCatalog) ListOrganizations(ctx context.Context) ([]opendata.Organization, error) {
	return c.client.ListOrganizations(ctx)
}

// FetchTable is a live passthrough; record data is never cached.
func (c *CachedCatalog) FetchTable(ctx context.Context, resourceID string) (*dataset.Table, error) {
	return c.client.FetchTable(ctx, resourceID)
}
