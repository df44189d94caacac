// Package server exposes the comparison pipeline over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bull/laptop-battle/internal/compare"
	"github.com/bull/laptop-battle/internal/storage"
	"github.com/bull/laptop-battle/internal/subject"
)

// CompareService runs a two-laptop comparison end to end.
type CompareService interface {
	Compare(ctx context.Context, laptop1, laptop2 string) (*compare.Result, error)
}

// HealthChecker reports whether the vector store is reachable and how much
// it holds. The storage layer implements both.
type HealthChecker interface {
	Health(ctx context.Context) error
	GetCollectionInfo(ctx context.Context) (*storage.CollectionInfo, error)
}

type Server struct {
	comparer CompareService
	health   HealthChecker
	logger   *slog.Logger
}

func New(comparer CompareService, health HealthChecker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{comparer: comparer, health: health, logger: logger}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/", s.Root)
	r.GET("/api/health", s.Health)
	r.POST("/api/compare", s.Compare)

	return r
}

func (s *Server) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "laptop-battle",
		"endpoints": gin.H{
			"health":  "GET /api/health",
			"compare": "POST /api/compare",
		},
	})
}

func (s *Server) Health(c *gin.Context) {
	ctx := c.Request.Context()
	if err := s.health.Health(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "degraded",
			"qdrant": err.Error(),
		})
		return
	}

	resp := gin.H{"status": "ok", "qdrant": "connected"}
	if info, err := s.health.GetCollectionInfo(ctx); err != nil {
		s.logger.Warn("Failed to read collection info", "error", err)
	} else {
		resp["indexed_points"] = info.PointsCount
	}
	c.JSON(http.StatusOK, resp)
}

type CompareRequest struct {
	Laptop1 string `json:"laptop1"`
	Laptop2 string `json:"laptop2"`
}

// Compare validates the pair and runs both pipelines. Two names that
// normalize to the same subject are rejected: the result would always be a
// tie, and concurrent runs over one subject's files are unsupported.
func (s *Server) Compare(c *gin.Context) {
	var req CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	laptop1 := strings.TrimSpace(req.Laptop1)
	laptop2 := strings.TrimSpace(req.Laptop2)
	if laptop1 == "" || laptop2 == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Both laptop1 and laptop2 are required"})
		return
	}
	if subject.Slug(laptop1) == subject.Slug(laptop2) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "laptop1 and laptop2 must be different laptops"})
		return
	}

	result, err := s.comparer.Compare(c.Request.Context(), laptop1, laptop2)
	if err != nil {
		s.logger.Error("Comparison failed", "laptop1", laptop1, "laptop2", laptop2, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Comparison failed"})
		return
	}

	c.JSON(http.StatusOK, result)
}
