package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"ai-plan-guard/internal/plan"

	"github.com/gin-gonic/gin"
)

// Planner is the use case the API exposes.
type Planner interface {
	SafePlan(ctx context.Context, profile plan.SafetyProfile) (plan.SanitizedPlan, error)
}

// Server is the HTTP boundary of the application.
type Server struct {
	planner Planner
	router  *gin.Engine
}

// generateRequest is the POST /generate-plan payload. Injuries accept
// both plain strings and {"name": ..., "severity": ...} objects.
type generateRequest struct {
	Goal      string            `json:"goal" binding:"required"`
	Allergies []string          `json:"allergies"`
	Injuries  []json.RawMessage `json:"injuries"`
}

// NewServer creates the HTTP server and registers its routes.
func NewServer(planner Planner) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{planner: planner, router: router}
	router.GET("/health", s.handleHealth)
	router.POST("/generate-plan", s.handleGeneratePlan)
	return s
}

// Handler exposes the router for serving and for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run starts the HTTP server on addr and blocks.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleGeneratePlan(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	injuries, err := plan.NormalizeInjuries(req.Injuries)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allergies := make([]string, 0, len(req.Allergies))
	for _, a := range req.Allergies {
		if trimmed := strings.TrimSpace(a); trimmed != "" {
			allergies = append(allergies, trimmed)
		}
	}

	profile := plan.SafetyProfile{
		Goal:      req.Goal,
		Allergies: allergies,
		Injuries:  injuries,
	}

	sanitized, err := s.planner.SafePlan(c.Request.Context(), profile)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"goal": req.Goal,
		"safe_plan": gin.H{
			"meals":    sanitized.Meals,
			"workouts": sanitized.Workouts,
		},
		"replacements_made": sanitized.Replacements,
	})
}
