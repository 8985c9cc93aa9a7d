package server

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rezonia/zugferd/internal/config"
	"github.com/rezonia/zugferd/internal/logging"
	"github.com/rezonia/zugferd/internal/model"
	"github.com/rezonia/zugferd/internal/pdfa"
	"github.com/rezonia/zugferd/internal/processor"
	"github.com/rezonia/zugferd/internal/profile"
	"github.com/rezonia/zugferd/pkg/zugferd"
)

const (
	buildTimeout    = 30 * time.Second
	validateTimeout = 2 * time.Minute
	maxPDFSize      = 32 << 20
)

// Server represents the HTTP API server
type Server struct {
	config   config.ServerConfig
	router   *gin.Engine
	logger   *zap.Logger
	builders map[string]*zugferd.Builder
}

// NewServer creates a new API server with one builder per profile. opts are
// applied to every builder after the validator settings of cfg.
func NewServer(cfg *config.Config, logger *zap.Logger, opts ...zugferd.Option) (*Server, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	logger = logging.OrNop(logger)

	if !cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Server.Debug {
		router.Use(gin.Logger())
	}
	router.Use(requestLogger(logger))

	builders := make(map[string]*zugferd.Builder)
	for _, id := range profile.IDs() {
		builderOpts := append([]zugferd.Option{
			zugferd.WithConfig(cfg),
			zugferd.WithLogger(logger),
		}, opts...)
		b, err := zugferd.New(id, builderOpts...)
		if err != nil {
			return nil, err
		}
		builders[id] = b
	}

	s := &Server{
		config:   cfg.Server,
		router:   router,
		logger:   logger,
		builders: builders,
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/profiles", s.handleProfiles)
		v1.POST("/info", s.handleInfo)

		invoices := v1.Group("/invoices/:profile")
		invoices.Use(s.resolveProfile)
		{
			invoices.POST("/xml", s.handleBuildXML)
			invoices.POST("/pdf", s.handleBuildPDF)
			invoices.POST("/validate", s.handleValidate)
		}
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.logger.Info("listening", zap.String("address", s.config.Address))
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
}

func (s *Server) resolveProfile(c *gin.Context) {
	p, err := profile.Lookup(c.Param("profile"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{Error: "unknown profile", Details: err.Error()})
		return
	}
	c.Set("builder", s.builders[p.ID])
	c.Next()
}

func builder(c *gin.Context) *zugferd.Builder {
	return c.MustGet("builder").(*zugferd.Builder)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleProfiles(c *gin.Context) {
	all := profile.All()
	out := make([]ProfileResponse, 0, len(all))
	for _, p := range all {
		out = append(out, ProfileResponse{ID: p.ID, Name: p.Name, Guideline: p.Guideline})
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleInfo(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, InfoResponse{
		Format: processor.DetectFormat(body).String(),
		Size:   len(body),
	})
}

func (s *Server) handleBuildXML(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	raw, err := processor.Decode(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid invoice data", Details: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), buildTimeout)
	defer cancel()

	xml, err := builder(c).BuildXML(ctx, raw)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/xml; charset=utf-8", xml)
}

func (s *Server) handleBuildPDF(c *gin.Context) {
	header, err := c.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing pdf form file", Details: err.Error()})
		return
	}
	if header.Size > maxPDFSize {
		c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "pdf too large"})
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "cannot read pdf", Details: err.Error()})
		return
	}
	defer f.Close()

	pdf, err := io.ReadAll(f)
	if err != nil || !pdfa.IsPDF(pdf) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "upload is not a pdf"})
		return
	}

	raw, err := processor.Decode([]byte(c.PostForm("invoice")))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid invoice data", Details: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), validateTimeout)
	defer cancel()

	var out bytes.Buffer
	if err := builder(c).BuildPDFA(ctx, raw, bytes.NewReader(pdf), &out, zugferd.PDFOptions{}); err != nil {
		s.writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "application/pdf", out.Bytes())
}

func (s *Server) handleValidate(c *gin.Context) {
	body, ok := readBody(c)
	if !ok {
		return
	}

	if processor.DetectFormat(body) != processor.FormatXML {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "only XML validation is supported"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), validateTimeout)
	defer cancel()

	b := builder(c)
	results, err := b.Validate(ctx, body)
	if err != nil {
		s.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ValidationResponse{
		Valid:   zugferd.AllValid(results),
		Profile: b.Profile(),
		Results: results,
	})
}

func readBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return nil, false
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return nil, false
	}
	return body, true
}

func (s *Server) writeError(c *gin.Context, err error) {
	var (
		sve *model.SchemaValidationError
		zve *model.ZugferdValidationError
		ce  *model.ConfigError
	)

	switch {
	case errors.As(err, &sve):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:    "invoice data does not match the profile",
			Failures: sve.Failures,
		})
	case errors.As(err, &zve):
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:     "invoice rejected by validator",
			Details:   zve.Message,
			Validator: zve.Validator,
			Detail:    zve.Detail,
		})
	case errors.As(err, &ce):
		s.logger.Error("configuration error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "server misconfigured", Details: ce.Message})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, ErrorResponse{Error: "build timed out"})
	default:
		s.logger.Warn("build failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "build failed", Details: err.Error()})
	}
}
