package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kumar-cmd/syngenta-ai/internal/classify"
	"github.com/kumar-cmd/syngenta-ai/internal/config"
	"github.com/kumar-cmd/syngenta-ai/internal/docquery"
	"github.com/kumar-cmd/syngenta-ai/internal/importer"
	"github.com/kumar-cmd/syngenta-ai/internal/logger"
	"github.com/kumar-cmd/syngenta-ai/internal/metrics"
	"github.com/kumar-cmd/syngenta-ai/internal/store"
)

// QueryClassifier labels a query's intent.
type QueryClassifier interface {
	Classify(ctx context.Context, query string) (classify.Label, error)
}

// DocumentEngine answers document queries with cited sources.
type DocumentEngine interface {
	Query(ctx context.Context, query string) (*docquery.Result, error)
}

// CSVImporter runs one ingestion pass over a server-local file.
type CSVImporter interface {
	ImportFile(ctx context.Context, path string) (importer.Summary, error)
}

// Server owns the HTTP surface. All collaborators are injected; the
// server holds no process-global state.
type Server struct {
	cfg        config.ServerConfig
	csvPath    string
	classifier QueryClassifier
	engine     DocumentEngine
	importer   CSVImporter
	orders     store.OrderStore
	router     *gin.Engine
}

// Options bundles the server's collaborators.
type Options struct {
	Config       config.ServerConfig
	CSVPath      string
	Classifier   QueryClassifier
	Engine       DocumentEngine
	Importer     CSVImporter
	Orders       store.OrderStore
	TemplateGlob string
}

func New(opts Options) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		cfg:        opts.Config,
		csvPath:    opts.CSVPath,
		classifier: opts.Classifier,
		engine:     opts.Engine,
		importer:   opts.Importer,
		orders:     opts.Orders,
		router:     router,
	}

	if opts.TemplateGlob != "" {
		router.LoadHTMLGlob(opts.TemplateGlob)
	}

	router.Use(s.corsMiddleware())

	router.GET("/", s.handleDashboard)
	router.GET("/update_data", s.handleUpdateData)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	if s.cfg.APIToken != "" {
		api.Use(s.tokenAuthMiddleware())
	}
	api.POST("/query", s.handleQuery)
	api.OPTIONS("/query", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	return s
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run blocks serving HTTP on addr.
func (s *Server) Run(addr string) error {
	logger.Infof("server: listening on %s", addr)
	return s.router.Run(addr)
}

// corsMiddleware restricts cross-origin access to the single configured
// frontend origin.
func (s *Server) corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == s.cfg.CORSOrigin {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func (s *Server) tokenAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		token := strings.TrimPrefix(auth, "Bearer ")
		if token == "" || token != s.cfg.APIToken {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

type queryRequest struct {
	Query string `json:"query"`
	// Context is accepted for forward compatibility and currently unused.
	Context map[string]any `json:"context,omitempty"`
}

func (s *Server) handleQuery(c *gin.Context) {
	if !isJSONContentType(c.ContentType()) {
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": "Unsupported Content-Type"})
		return
	}

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	total := time.Now()
	classifyStart := time.Now()
	label, err := s.classifier.Classify(c.Request.Context(), req.Query)
	metrics.ObserveQueryStage("classify", classifyStart)
	if err != nil {
		if errors.Is(err, classify.ErrUpstream) {
			metrics.IncUpstreamError("classifier")
			logger.Errorf("server: classifier unavailable: %v", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable"})
			return
		}
		// Model answered, just not with a known label.
		logger.Warnf("server: unrecognized classification for %q: %v", req.Query, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unrecognized query type"})
		return
	}
	metrics.IncClassified(string(label))

	if label != classify.LabelDocument {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unrecognized query type"})
		return
	}

	result, err := s.engine.Query(c.Request.Context(), req.Query)
	if err != nil {
		logger.Errorf("server: document query failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "upstream unavailable"})
		return
	}
	metrics.ObserveQueryStage("total", total)

	c.JSON(http.StatusOK, gin.H{
		"answer":  result.Answer,
		"sources": result.Sources,
		"type":    "document",
	})
}

func (s *Server) handleUpdateData(c *gin.Context) {
	sum, err := s.importer.ImportFile(c.Request.Context(), s.csvPath)
	if err != nil {
		// File-level failure mirrors a one-error run.
		logger.Errorf("server: csv import failed: %v", err)
		c.String(http.StatusOK, "Successfully inserted: %d, Errors: %d", 0, 1)
		return
	}
	c.String(http.StatusOK, "Successfully inserted: %d, Errors: %d", sum.Inserted, sum.Errors)
}

func (s *Server) handleDashboard(c *gin.Context) {
	var count int64
	if s.orders != nil {
		if n, err := s.orders.Count(c.Request.Context()); err == nil {
			count = n
		} else {
			logger.Warnf("server: order count failed: %v", err)
		}
	}
	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"OrderCount": count,
	})
}

// isJSONContentType matches the media type with or without parameters.
func isJSONContentType(ct string) bool {
	return ct == "application/json" || strings.HasPrefix(ct, "application/json;")
}
