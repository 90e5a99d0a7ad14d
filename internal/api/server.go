package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"datasight/ai"
	"datasight/internal/config"
	"datasight/internal/errors"
	"datasight/internal/session"
)

// Server wires the HTTP surface: upload, question answering, column
// stats and on-demand correlation.
type Server struct {
	router *gin.Engine
	slot   *session.Slot
	ai     *ai.Service
	upload config.UploadConfig
}

// NewServer creates the API server with its routes configured
func NewServer(cfg *config.Config, answerService *ai.Service) *Server {
	gin.SetMode(cfg.Server.GinMode)

	s := &Server{
		router: gin.New(),
		slot:   session.NewSlot(),
		ai:     answerService,
		upload: cfg.Upload,
	}

	s.router.Use(gin.Logger(), gin.Recovery(), corsMiddleware())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleRoot)
	s.router.POST("/upload", s.handleUpload)
	s.router.POST("/ask-ai", s.handleAsk)
	s.router.GET("/columns/:name/stats", s.handleColumnStats)
	s.router.GET("/correlation", s.handleCorrelation)
}

// Handler exposes the router for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the server on the given address
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// corsMiddleware allows the browser frontend to talk to the API from
// another origin
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// respondError maps application error codes onto HTTP statuses.
// Anything without a recognized code is a processing failure.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeUnsupportedFormat, errors.CodeNoDataset, errors.CodeInvalidInput:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
