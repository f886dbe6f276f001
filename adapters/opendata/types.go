package opendata

import "time"

// DatasetSummary is one entry in the public data catalog listing.
type DatasetSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Organization string   `json:"organization,omitempty"`
	ResourceIDs  []string `json:"resource_ids"`
	LastUpdated  string   `json:"last_updated,omitempty"`
}

// Organization is a publishing agency in the catalog.
type Organization struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	DatasetCount int    `json:"dataset_count"`
}

// DatasetPage is one page of catalog results.
type DatasetPage struct {
	Datasets []DatasetSummary `json:"datasets"`
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// Config holds connection settings for the open-data API.
type Config struct {
	BaseURL       string
	Timeout       time.Duration
	PageSize      int           // rows per datastore_search request
	MaxRecords    int           // hard cap on records fetched per resource
	MaxConcurrent int           // concurrent page fetches after the first
	RetryAttempts int           // attempts per request, including the first
	RetryBackoff  time.Duration // base delay between attempts
}

// DefaultConfig returns sensible defaults for the public API.
func DefaultConfig() Config {
	return Config{
		BaseURL:       "https://data.gov.sg",
		Timeout:       30 * time.Second,
		PageSize:      1000,
		MaxRecords:    20000,
		MaxConcurrent: 4,
		RetryAttempts: 3,
		RetryBackoff:  500 * time.Millisecond,
	}
}
