// Package api is the optional, strictly non-blocking progress-reporting
// surface: it lets an external dashboard poll or stream the orchestrator's
// progress while a batch run is in flight, and fetch the finished report
// once it lands. Nothing in the detection critical path depends on this
// package being reachable (spec.md §5, SPEC_FULL.md §4.9).
//
// Grounded on the teacher's internal/api/routes.go: same gin.Engine +
// CORS-middleware + grouped-route shape, with the Bitcoin-forensics
// handlers replaced by progress/report handlers and the bearer-token auth
// and per-IP rate limiting dropped — this surface is read-only local
// telemetry, not a multi-tenant API, so neither concern has anywhere to
// attach.
package api

import (
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/TheAuroraAI/medicaid-fraud-detector/internal/orchestrator"
	"github.com/TheAuroraAI/medicaid-fraud-detector/pkg/models"
)

// Server exposes a running orchestrator.Runner's progress and, once
// available, the finished Report.
type Server struct {
	Runner *orchestrator.Runner
	Hub    *Hub
	Log    zerolog.Logger

	mu     sync.RWMutex
	report *models.Report
}

// SetReport publishes the finished report, making it visible to GET
// /api/v1/report. Safe to call once from the orchestrating goroutine after
// Run returns.
func (s *Server) SetReport(r models.Report) {
	s.mu.Lock()
	s.report = &r
	s.mu.Unlock()
}

func (s *Server) getReport() (models.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.report == nil {
		return models.Report{}, false
	}
	return *s.report, true
}

// SetupRouter builds the gin.Engine serving the progress/report surface.
func SetupRouter(srv *Server) *gin.Engine {
	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", srv.handleHealth)
		v1.GET("/progress", srv.handleProgress)
		v1.GET("/report", srv.handleReport)
		v1.GET("/stream", srv.Hub.Subscribe)
	}

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "operational"})
}

func (s *Server) handleProgress(c *gin.Context) {
	if s.Runner == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "run not started"})
		return
	}
	c.JSON(http.StatusOK, s.Runner.Progress())
}

func (s *Server) handleReport(c *gin.Context) {
	rpt, ok := s.getReport()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "report not yet available"})
		return
	}
	c.JSON(http.StatusOK, rpt)
}
