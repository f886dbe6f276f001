package opendata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zuzivian/sgraphs/internal/errors"
)

func testConfig(baseURL string) Config {
	cfg := DefaultConfig()
	cfg.BaseURL = baseURL
	cfg.PageSize = 2
	cfg.MaxRecords = 100
	cfg.RetryAttempts = 2
	cfg.RetryBackoff = time.Millisecond
	return cfg
}

func TestListDatasets(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/action/package_search", r.URL.Path)
		assert.Equal(t, "hdb", r.URL.Query().Get("q"))
		assert.Equal(t, "20", r.URL.Query().Get("rows"))
		assert.Equal(t, "20", r.URL.Query().Get("start"))

		fmt.Fprint(w, `{"success": true, "result": {"count": 42, "results": [
			{"id": "d1", "name": "resale-prices", "title": "Resale Prices",
			 "notes": "Median **resale** prices.",
			 "organization": {"title": "Housing Board"},
			 "resources": [{"id": "r1"}, {"id": "r2"}]}
		]}}`)
	}))
	defer server.Close()

	client := NewClient(testConfig(server.URL))
	page, err := client.ListDatasets(context.Background(), "hdb", 2, 20)
	require.NoError(t, err)

	assert.Equal(t, 42, page.Total)
	require.Len(t, page.Datasets, 1)
	ds := page.Datasets[0]
	assert.Equal(t, "Resale Prices", ds.Title)
	assert.Equal(t, "Housing Board", ds.Organization)
	assert.Equal(t, []string{"r1", "r2"}, ds.ResourceIDs)
}

func TestGetDataset(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/action/package_show", r.URL.Path)
		assert.Equal(t, "d1", r.URL.Query().Get("id"))
		fmt.Fprint(w, `{"success": true, "result":
			{"id": "d1", "name": "resale-prices", "title": "Resale Prices",
			 "organization": {"title": "Housing Board"},
			 "resources": [{"id": "r1"}]}}`)
	}))
	defer server.Close()

	ds, err := NewClient(testConfig(server.URL)).GetDataset(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "Resale Prices", ds.Title)
	assert.Equal(t, []string{"r1"}, ds.ResourceIDs)
}

func TestGetDatasetMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success": false, "result": {}}`)
	}))
	defer server.Close()

	_, err := NewClient(testConfig(server.URL)).GetDataset(context.Background(), "nope")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeNotFound))
}

func TestListOrganizationsSorted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/action/organization_list", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("all_fields"))
		fmt.Fprint(w, `{"result": [
			{"name": "moh", "title": "Ministry of Health", "package_count": 10},
			{"name": "hdb", "title": "Housing Board", "package_count": 25}
		]}`)
	}))
	defer server.Close()

	orgs, err := NewClient(testConfig(server.URL)).ListOrganizations(context.Background())
	require.NoError(t, err)
	require.Len(t, orgs, 2)
	assert.Equal(t, "Housing Board", orgs[0].Title)
	assert.Equal(t, 25, orgs[1].DatasetCount)
}

func TestFetchTablePaginates(t *testing.T) {
	const total = 5
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/action/datastore_search", r.URL.Path)
		require.Equal(t, "r1", r.URL.Query().Get("resource_id"))
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

		records := make([]map[string]interface{}, 0, limit)
		for i := offset; i < offset+limit && i < total; i++ {
			records = append(records, map[string]interface{}{
				"year":  fmt.Sprintf("%d", 1990+i),
				"price": float64(100 + i),
			})
		}
		resp := map[string]interface{}{
			"result": map[string]interface{}{
				"total": total,
				"fields": []map[string]string{
					{"id": "year", "type": "text"},
					{"id": "price", "type": "numeric"},
				},
				"records": records,
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	table, err := NewClient(testConfig(server.URL)).FetchTable(context.Background(), "r1")
	require.NoError(t, err)

	require.Len(t, table.Fields, 2)
	assert.Equal(t, "year", table.Fields[0].ID)
	require.Len(t, table.Records, total)

	// Pages must reassemble in offset order.
	for i, record := range table.Records {
		assert.Equal(t, fmt.Sprintf("%d", 1990+i), record["year"])
		assert.Equal(t, float64(100+i), record["price"])
	}
}

func TestFetchTableCapsRecords(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		records := make([]map[string]interface{}, 0, limit)
		for i := offset; i < offset+limit; i++ {
			records = append(records, map[string]interface{}{"v": i})
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": map[string]interface{}{
				"total":   1000000,
				"fields":  []map[string]string{{"id": "v", "type": "int"}},
				"records": records,
			},
		})
	}))
	defer server.Close()

	cfg := testConfig(server.URL)
	cfg.MaxRecords = 6
	table, err := NewClient(cfg).FetchTable(context.Background(), "r1")
	require.NoError(t, err)
	assert.Len(t, table.Records, 6)
}

func TestFetchTableRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"result": {"total": 1,
			"fields": [{"id": "v", "type": "int"}],
			"records": [{"v": 1}]}}`)
	}))
	defer server.Close()

	table, err := NewClient(testConfig(server.URL)).FetchTable(context.Background(), "r1")
	require.NoError(t, err)
	assert.Len(t, table.Records, 1)
	assert.GreaterOrEqual(t, calls.Load(), int32(2))
}

func TestFetchTableClientErrorFailsFast(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewClient(testConfig(server.URL)).FetchTable(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeExternalService))
	assert.Equal(t, int32(1), calls.Load(), "4xx must not be retried")
}

func TestFetchTableRequiresResourceID(t *testing.T) {
	_, err := NewClient(DefaultConfig()).FetchTable(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeInvalidInput))
}
