package ui

import (
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/samber/lo"

	"github.com/zuzivian/sgraphs/adapters/export"
	"github.com/zuzivian/sgraphs/app"
)

const listingPageSize = 20

// handleIndex serves the catalog browsing page.
func (s *Server) handleIndex(c *gin.Context) {
	query := c.Query("q")
	org := c.Query("organization")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	// Organization filtering rides on the search query; the catalog
	// search backend understands field clauses.
	effective := query
	if org != "" {
		clause := fmt.Sprintf("organization:%q", org)
		if effective == "" {
			effective = clause
		} else {
			effective += " " + clause
		}
	}

	listing, err := s.catalog.ListDatasets(c.Request.Context(), effective, page, listingPageSize)
	if err != nil {
		s.respondError(c, err)
		return
	}

	// The filter dropdown degrades to hidden when the listing is not
	// available.
	orgs, err := s.catalog.ListOrganizations(c.Request.Context())
	if err != nil {
		s.logger.Warn("organization listing unavailable: %v", err)
		orgs = nil
	}

	totalPages := (listing.Total + listing.PageSize - 1) / listing.PageSize
	s.renderTemplate(c, "index.html", gin.H{
		"Query":         query,
		"Organization":  org,
		"Organizations": orgs,
		"Datasets":      listing.Datasets,
		"Total":         listing.Total,
		"Page":          listing.Page,
		"TotalPages":    totalPages,
		"HasPrev":       listing.Page > 1,
		"HasNext":       listing.Page < totalPages,
	})
}

// resourceView is one selectable resource on the dataset page.
type resourceView struct {
	ID       string
	ChartURL string
}

// handleDataset serves the chart view for a single dataset.
func (s *Server) handleDataset(c *gin.Context) {
	summary, err := s.catalog.GetDataset(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	resources := lo.Map(summary.ResourceIDs, func(id string, _ int) resourceView {
		return resourceView{
			ID:       id,
			ChartURL: fmt.Sprintf("/api/resources/%s/chart", id),
		}
	})

	s.renderTemplate(c, "dataset.html", gin.H{
		"Dataset":     summary,
		"Description": renderMarkdown(summary.Description),
		"Resources":   resources,
	})
}

// renderMarkdown converts a catalog description into HTML. Catalog
// descriptions are authored in markdown on the publishing side.
func renderMarkdown(source string) template.HTML {
	if source == "" {
		return ""
	}
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := html.NewRenderer(html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank,
	})
	return template.HTML(markdown.ToHTML([]byte(source), p, renderer))
}

// handleListDatasets serves a catalog listing page as JSON.
func (s *Server) handleListDatasets(c *gin.Context) {
	query := c.Query("q")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(listingPageSize)))

	listing, err := s.catalog.ListDatasets(c.Request.Context(), query, page, pageSize)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

// handleListOrganizations serves the publishing agencies as JSON.
func (s *Server) handleListOrganizations(c *gin.Context) {
	orgs, err := s.catalog.ListOrganizations(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"organizations": orgs,
		"total":         len(orgs),
	})
}

// chartSelection extracts the optional axis overrides from the query
// string. An empty parameter means "let the engine decide".
func chartSelection(c *gin.Context) (app.Selection, error) {
	selection := app.Selection{
		XKey:      c.Query("x"),
		YKey:      c.Query("y"),
		SeriesKey: c.Query("series"),
	}
	if raw := c.Query("sum"); raw != "" {
		sum, err := strconv.ParseBool(raw)
		if err != nil {
			return selection, fmt.Errorf("invalid sum parameter %q: %w", raw, err)
		}
		selection.Sum = &sum
	}
	return selection, nil
}

// handleChart fetches a resource and returns its chart configuration.
func (s *Server) handleChart(c *gin.Context) {
	selection, err := chartSelection(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	table, err := s.catalog.FetchTable(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondError(c, err)
		return
	}

	config, err := s.charts.BuildChartConfigWithSelection(table, selection)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, config)
}

// handleExport streams the resource's chart data as an Excel workbook.
func (s *Server) handleExport(c *gin.Context) {
	selection, err := chartSelection(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resourceID := c.Param("id")
	table, err := s.catalog.FetchTable(c.Request.Context(), resourceID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	config, err := s.charts.BuildChartConfigWithSelection(table, selection)
	if err != nil {
		s.respondError(c, err)
		return
	}

	workbook, err := export.ChartWorkbook(config)
	if err != nil {
		s.respondError(c, err)
		return
	}

	filename := fmt.Sprintf("%s.xlsx", resourceID)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", workbook)
}
