// Package admin exposes the operator HTTP surface: agent CRUD and outcome
// history. Authentication is a deployment concern (reverse proxy), not ours.
package admin

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"autobid/internal/condition"
	"autobid/internal/logger"
	"autobid/internal/store/gormstore"
	"autobid/internal/store/outcomelog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Server struct {
	agents    *gormstore.AgentStore
	outcomes  *outcomelog.Store
	templates *condition.TemplateRegistry
	handlers  *condition.Registry

	srv *gin.Engine
	hs  *http.Server
}

func NewServer(env string, agents *gormstore.AgentStore, outcomes *outcomelog.Store,
	templates *condition.TemplateRegistry, handlers *condition.Registry) *Server {
	if env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	s := &Server{
		agents:    agents,
		outcomes:  outcomes,
		templates: templates,
		handlers:  handlers,
		srv:       gin.New(),
	}
	s.srv.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.srv.Group("/api/v1")
	api.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	api.GET("/conditions", s.listConditions)
	api.GET("/agents", s.listAgents)
	api.POST("/agents", s.createAgent)
	api.GET("/agents/:id", s.getAgent)
	api.PUT("/agents/:id", s.updateAgent)
	api.DELETE("/agents/:id", s.deactivateAgent)
	api.GET("/agents/:id/outcomes", s.agentOutcomes)
	api.GET("/outcomes", s.recentOutcomes)
}

// Run starts serving on addr and blocks until Shutdown.
func (s *Server) Run(addr string) error {
	s.hs = &http.Server{Addr: addr, Handler: s.srv}
	logger.Infof("admin: listening on %s", addr)
	err := s.hs.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.hs == nil {
		return nil
	}
	return s.hs.Shutdown(ctx)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler { return s.srv }

func (s *Server) listConditions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"conditions": s.handlers.Names()})
}

func (s *Server) listAgents(c *gin.Context) {
	agents, err := s.agents.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	out := make([]agentResponse, 0, len(agents))
	for _, a := range agents {
		out = append(out, toResponse(a))
	}
	c.JSON(http.StatusOK, gin.H{"agents": out})
}

func (s *Server) createAgent(c *gin.Context) {
	var req agentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	agent, err := req.toAgent(uuid.NewString())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validateConditions(agent.Conditions); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.agents.Save(c.Request.Context(), agent); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	saved, err := s.agents.Get(c.Request.Context(), agent.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toResponse(saved))
}

func (s *Server) getAgent(c *gin.Context) {
	agent, err := s.agents.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gormstore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toResponse(agent))
}

func (s *Server) updateAgent(c *gin.Context) {
	id := c.Param("id")
	existing, err := s.agents.Get(c.Request.Context(), id)
	if errors.Is(err, gormstore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var req agentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	agent, err := req.toAgent(id)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.validateConditions(agent.Conditions); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// Edits never resurrect engine-owned state.
	agent.IsActive = existing.IsActive
	agent.LastRunAt = existing.LastRunAt
	agent.NextRunAt = existing.NextRunAt
	agent.CreatedAt = existing.CreatedAt
	if err := s.agents.Save(c.Request.Context(), agent); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	saved, err := s.agents.Get(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, toResponse(saved))
}

func (s *Server) deactivateAgent(c *gin.Context) {
	err := s.agents.Deactivate(c.Request.Context(), c.Param("id"))
	if errors.Is(err, gormstore.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "agent not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

func (s *Server) agentOutcomes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	recs, err := s.outcomes.ListByAgent(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": recs})
}

func (s *Server) recentOutcomes(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	recs, err := s.outcomes.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcomes": recs})
}

func (s *Server) validateConditions(conditions map[string]any) error {
	if len(conditions) == 0 {
		return nil
	}
	for name := range conditions {
		if _, ok := s.handlers.Get(name); !ok {
			return errors.New("no handler registered for condition: " + name)
		}
	}
	return s.templates.ValidateAll(conditions)
}
