// Package ui serves the explorer web application: HTML pages for
// browsing the public data catalog plus the JSON API the chart view
// is driven by.
package ui

import (
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/zuzivian/sgraphs/adapters/opendata"
	"github.com/zuzivian/sgraphs/app"
	"github.com/zuzivian/sgraphs/domain/dataset"
	"github.com/zuzivian/sgraphs/internal"
	"github.com/zuzivian/sgraphs/internal/errors"
)

// CatalogSource is the slice of the open-data client the UI needs.
type CatalogSource interface {
	ListDatasets(ctx context.Context, query string, page, pageSize int) (*opendata.DatasetPage, error)
	GetDataset(ctx context.Context, id string) (*opendata.DatasetSummary, error)
	ListOrganizations(ctx context.Context) ([]opendata.Organization, error)
	FetchTable(ctx context.Context, resourceID string) (*dataset.Table, error)
}

// Server represents the explorer web server.
type Server struct {
	router    *gin.Engine
	catalog   CatalogSource
	charts    *app.ChartService
	templates *template.Template
	logger    *internal.Logger
}

//go:embed templates/*.html static/*
var embeddedFiles embed.FS

// NewServer creates a server wired to a catalog source and the chart
// configuration service.
func NewServer(catalog CatalogSource, charts *app.ChartService) (*Server, error) {
	s := &Server{
		router:  gin.Default(),
		catalog: catalog,
		charts:  charts,
		logger:  internal.NewDefaultLogger("UI"),
	}

	funcMap := template.FuncMap{
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"upper": strings.ToUpper,
		"contains": func(s, substr string) bool {
			return strings.Contains(s, substr)
		},
	}

	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse templates")
	}
	s.templates = templates

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		s.logger.Error("failed to create static filesystem: %v", err)
		return
	}
	s.router.StaticFS("/static", http.FS(staticFS))
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/datasets/:id", s.handleDataset)

	s.router.GET("/api/datasets", s.handleListDatasets)
	s.router.GET("/api/organizations", s.handleListOrganizations)
	s.router.GET("/api/resources/:id/chart", s.handleChart)
	s.router.GET("/api/resources/:id/export", s.handleExport)
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	s.logger.Info("starting explorer on http://%s", addr)
	return s.router.Run(addr)
}

// Router exposes the handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// renderTemplate executes a template with the given data
func (s *Server) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(c.Writer, templateName, data); err != nil {
		s.logger.Error("template error for %s: %v", templateName, err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// respondError maps application error codes onto HTTP statuses.
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeUnresolvableAxis, errors.CodeConfigInvalid:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeExternalService:
		status = http.StatusBadGateway
	}
	s.logger.Warn("request failed: %v", err)
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
