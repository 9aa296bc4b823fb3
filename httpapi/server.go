// Package httpapi exposes the scheduler's latest solved schedule and
// diagnostics over a REST API, for a dashboard or voyage-planning client.
package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"

	"github.com/oceanvolt/voyage-optimizer/voyage"
)

// SchedulerView is the read-only surface the API needs from the scheduler.
// scheduler.VoyageScheduler satisfies this without httpapi importing the
// scheduler package directly.
type SchedulerView interface {
	GetLatestResult() *voyage.OptimizationResult
}

// Server is the gin-based REST API.
type Server struct {
	scheduler SchedulerView
	router    *gin.Engine
	server    *http.Server
}

// NewServer builds the API router: health, latest-result, and CORS-wrapped
// routes under /api/v1, mirroring the teacher's gin-plus-rs/cors layering.
func NewServer(addr string, allowedOrigins []string, scheduler SchedulerView) *Server {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"code": "INTERNAL_ERROR", "message": fmt.Sprintf("%v", recovered)},
		})
		c.Abort()
	}))

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	})

	s := &Server{
		scheduler: scheduler,
		router:    router,
		server: &http.Server{
			Addr:         addr,
			Handler:      corsMiddleware.Handler(router),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	router.GET("/health", s.healthHandler)

	api := router.Group("/api/v1")
	{
		api.GET("/schedule", s.latestScheduleHandler)
		api.GET("/schedule/steps", s.stepsHandler)
		api.GET("/schedule/timelines", s.timelinesHandler)
	}

	return s
}

// Start begins serving in the background.
func (s *Server) Start() {
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("httpapi: server error: %v\n", err)
		}
	}()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) latestScheduleHandler(c *gin.Context) {
	result := s.scheduler.GetLatestResult()
	if result == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no schedule has been solved yet"})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) stepsHandler(c *gin.Context) {
	result := s.scheduler.GetLatestResult()
	if result == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no schedule has been solved yet"})
		return
	}
	c.JSON(http.StatusOK, result.Steps)
}

func (s *Server) timelinesHandler(c *gin.Context) {
	result := s.scheduler.GetLatestResult()
	if result == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no schedule has been solved yet"})
		return
	}
	c.JSON(http.StatusOK, result.StationTimelines)
}
