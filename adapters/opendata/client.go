// Package opendata fetches catalog listings and tabular resources from a
// CKAN-style open-data API (the data.gov.sg shape). Every fetch returns
// a fully-materialized snapshot; the client keeps no per-resource state,
// so rapid reselection in the UI can never observe a stale mix of
// records from two different resources.
package opendata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"

	"github.com/zuzivian/sgraphs/domain/dataset"
	"github.com/zuzivian/sgraphs/internal"
	"github.com/zuzivian/sgraphs/internal/errors"
)

// Client talks to the open-data API.
type Client struct {
	config     Config
	httpClient *http.Client
	logger     *internal.Logger
}

// NewClient creates a client for the configured API endpoint.
func NewClient(config Config) *Client {
	if config.PageSize <= 0 {
		config.PageSize = DefaultConfig().PageSize
	}
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 1
	}
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = 1
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     internal.NewDefaultLogger("OpenData"),
	}
}

// ListDatasets searches the catalog. query may be empty; page is
// 1-based.
func (c *Client) ListDatasets(ctx context.Context, query string, page, pageSize int) (*DatasetPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	params := url.Values{}
	if query != "" {
		params.Set("q", query)
	}
	params.Set("rows", strconv.Itoa(pageSize))
	params.Set("start", strconv.Itoa((page-1)*pageSize))

	body, err := c.get(ctx, "/api/action/package_search", params)
	if err != nil {
		return nil, err
	}

	result := gjson.GetBytes(body, "result")
	pageOut := &DatasetPage{
		Total:    int(result.Get("count").Int()),
		Page:     page,
		PageSize: pageSize,
	}

	result.Get("results").ForEach(func(_, item gjson.Result) bool {
		summary := DatasetSummary{
			ID:           item.Get("id").String(),
			Name:         item.Get("name").String(),
			Title:        item.Get("title").String(),
			Description:  item.Get("notes").String(),
			Organization: item.Get("organization.title").String(),
			LastUpdated:  item.Get("metadata_modified").String(),
		}
		item.Get("resources").ForEach(func(_, res gjson.Result) bool {
			if id := res.Get("id").String(); id != "" {
				summary.ResourceIDs = append(summary.ResourceIDs, id)
			}
			return true
		})
		pageOut.Datasets = append(pageOut.Datasets, summary)
		return true
	})

	return pageOut, nil
}

// GetDataset fetches full metadata for a single dataset.
func (c *Client) GetDataset(ctx context.Context, id string) (*DatasetSummary, error) {
	if id == "" {
		return nil, errors.InvalidInput("dataset id is required")
	}

	params := url.Values{}
	params.Set("id", id)

	body, err := c.get(ctx, "/api/action/package_show", params)
	if err != nil {
		return nil, err
	}

	result := gjson.GetBytes(body, "result")
	if result.Get("id").String() == "" {
		return nil, errors.NotFound(fmt.Sprintf("dataset %s", id))
	}

	summary := &DatasetSummary{
		ID:           result.Get("id").String(),
		Name:         result.Get("name").String(),
		Title:        result.Get("title").String(),
		Description:  result.Get("notes").String(),
		Organization: result.Get("organization.title").String(),
		LastUpdated:  result.Get("metadata_modified").String(),
	}
	result.Get("resources").ForEach(func(_, res gjson.Result) bool {
		if resID := res.Get("id").String(); resID != "" {
			summary.ResourceIDs = append(summary.ResourceIDs, resID)
		}
		return true
	})
	return summary, nil
}

// ListOrganizations fetches the publishing agencies, sorted by title.
func (c *Client) ListOrganizations(ctx context.Context) ([]Organization, error) {
	params := url.Values{}
	params.Set("all_fields", "true")

	body, err := c.get(ctx, "/api/action/organization_list", params)
	if err != nil {
		return nil, err
	}

	var orgs []Organization
	gjson.GetBytes(body, "result").ForEach(func(_, item gjson.Result) bool {
		orgs = append(orgs, Organization{
			Name:         item.Get("name").String(),
			Title:        item.Get("title").String(),
			DatasetCount: int(item.Get("package_count").Int()),
		})
		return true
	})

	sort.Slice(orgs, func(i, j int) bool { return orgs[i].Title < orgs[j].Title })
	return orgs, nil
}

// FetchTable materializes one tabular resource: the field list plus
// every record up to the configured cap. The first page establishes the
// field set and total; remaining pages are fetched concurrently and
// reassembled in offset order.
func (c *Client) FetchTable(ctx context.Context, resourceID string) (*dataset.Table, error) {
	if resourceID == "" {
		return nil, errors.InvalidInput("resource id is required")
	}

	start := time.Now()
	fields, firstRecords, total, err := c.fetchPage(ctx, resourceID, 0)
	if err != nil {
		return nil, err
	}

	if total > c.config.MaxRecords {
		c.logger.Warn("resource %s has %d records, capping at %d", resourceID, total, c.config.MaxRecords)
		total = c.config.MaxRecords
	}

	table := &dataset.Table{
		ResourceID: resourceID,
		Fields:     fields,
		Records:    firstRecords,
	}

	if total > len(firstRecords) {
		rest, err := c.fetchRemaining(ctx, resourceID, len(firstRecords), total)
		if err != nil {
			return nil, err
		}
		table.Records = append(table.Records, rest...)
	}

	c.logger.Info("fetched resource %s: %d fields, %d records in %v",
		resourceID, len(table.Fields), len(table.Records), time.Since(start).Round(time.Millisecond))
	return table, nil
}

// fetchRemaining pulls pages [alreadyFetched, total) concurrently.
func (c *Client) fetchRemaining(ctx context.Context, resourceID string, alreadyFetched, total int) ([]dataset.Record, error) {
	var offsets []int
	for off := alreadyFetched; off < total; off += c.config.PageSize {
		offsets = append(offsets, off)
	}

	pages := make([][]dataset.Record, len(offsets))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.config.MaxConcurrent)
	for i, off := range offsets {
		g.Go(func() error {
			_, records, _, err := c.fetchPage(gctx, resourceID, off)
			if err != nil {
				return err
			}
			mu.Lock()
			pages[i] = records
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []dataset.Record
	for _, page := range pages {
		out = append(out, page...)
	}
	if len(out) > total-alreadyFetched {
		out = out[:total-alreadyFetched]
	}
	return out, nil
}

// fetchPage runs one datastore_search request.
func (c *Client) fetchPage(ctx context.Context, resourceID string, offset int) ([]dataset.Field, []dataset.Record, int, error) {
	params := url.Values{}
	params.Set("resource_id", resourceID)
	params.Set("limit", strconv.Itoa(c.config.PageSize))
	params.Set("offset", strconv.Itoa(offset))

	body, err := c.get(ctx, "/api/action/datastore_search", params)
	if err != nil {
		return nil, nil, 0, err
	}

	result := gjson.GetBytes(body, "result")
	if !result.Exists() {
		return nil, nil, 0, errors.ExternalServiceError("open-data",
			fmt.Errorf("datastore_search response has no result"))
	}

	var fields []dataset.Field
	result.Get("fields").ForEach(func(_, f gjson.Result) bool {
		fields = append(fields, dataset.Field{
			ID:   f.Get("id").String(),
			Type: f.Get("type").String(),
		})
		return true
	})

	var records []dataset.Record
	result.Get("records").ForEach(func(_, row gjson.Result) bool {
		record := make(dataset.Record)
		row.ForEach(func(key, value gjson.Result) bool {
			record[key.String()] = value.Value()
			return true
		})
		records = append(records, record)
		return true
	})

	total := int(result.Get("total").Int())
	return fields, records, total, nil
}

// get issues a GET with bounded retries. Only transport errors and 5xx
// responses are retried; 4xx responses fail immediately.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint := c.config.BaseURL + path + "?" + params.Encode()

	var lastErr error
	for attempt := 1; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 1 {
			c.logger.Debug("retrying %s (attempt %d/%d)", path, attempt, c.config.RetryAttempts)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryBackoff * time.Duration(attempt-1)):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build request")
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch {
		case resp.StatusCode == http.StatusOK:
			return body, nil
		case resp.StatusCode >= 500:
			lastErr = fmt.Errorf("API returned status %d", resp.StatusCode)
			continue
		default:
			return nil, errors.ExternalServiceError("open-data",
				fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(body, 200)))
		}
	}

	return nil, errors.ExternalServiceError("open-data", lastErr)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
