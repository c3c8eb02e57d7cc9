package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agenthands/callrank/internal/core"
	"github.com/agenthands/callrank/internal/core/source"
	"github.com/agenthands/callrank/internal/core/strategy"
	"github.com/agenthands/callrank/internal/core/tree"
	"github.com/agenthands/callrank/internal/core/weights"
)

type Server struct {
	Analyzer *core.Analyzer
	Logger   *slog.Logger
}

func NewServer(analyzer *core.Analyzer, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		Analyzer: analyzer,
		Logger:   logger,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/strategies", s.Strategies)
	r.POST("/rank", s.Rank)
	r.POST("/rank/stored", s.RankStored)
	r.GET("/scenarios", s.ListScenarios)
	r.POST("/scenarios", s.SaveScenario)

	return r
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.Logger.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status())
	}
}

type rankOptions struct {
	Strategy      string `json:"strategy"`
	WeightProfile *int   `json:"weight_profile"`
	Summarize     bool   `json:"summarize"`
	SummaryLimit  int    `json:"summary_limit"`
}

func (o rankOptions) options() (core.Options, error) {
	opts := core.Options{
		WeightProfile: o.WeightProfile,
		Summarize:     o.Summarize,
		SummaryLimit:  o.SummaryLimit,
	}
	if o.Strategy != "" {
		kind, err := strategy.Parse(o.Strategy)
		if err != nil {
			return core.Options{}, err
		}
		opts.Strategy = &kind
	}
	return opts, nil
}

type RankRequest struct {
	TargetService string           `json:"target_service" binding:"required"`
	Graph         *source.Document `json:"graph" binding:"required"`
	rankOptions
}

func (s *Server) Rank(c *gin.Context) {
	var req RankRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	opts, err := req.options()
	if err != nil {
		s.fail(c, err)
		return
	}

	report, err := s.Analyzer.RankDocument(c.Request.Context(), req.Graph, req.TargetService, opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type RankStoredRequest struct {
	Scenario      string `json:"scenario" binding:"required"`
	TargetService string `json:"target_service" binding:"required"`
	rankOptions
}

func (s *Server) RankStored(c *gin.Context) {
	var req RankStoredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	opts, err := req.options()
	if err != nil {
		s.fail(c, err)
		return
	}

	report, err := s.Analyzer.RankStored(c.Request.Context(), req.Scenario, req.TargetService, opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

type SaveScenarioRequest struct {
	Scenario string           `json:"scenario" binding:"required"`
	Graph    *source.Document `json:"graph" binding:"required"`
}

func (s *Server) SaveScenario(c *gin.Context) {
	var req SaveScenarioRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if err := s.Analyzer.SaveScenario(c.Request.Context(), req.Scenario, req.Graph); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"status": "success", "scenario": req.Scenario})
}

func (s *Server) ListScenarios(c *gin.Context) {
	scenarios, err := s.Analyzer.Scenarios(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scenarios": scenarios})
}

func (s *Server) Strategies(c *gin.Context) {
	names := make([]string, 0, len(strategy.All()))
	for _, k := range strategy.All() {
		names = append(names, k.String())
	}
	c.JSON(http.StatusOK, gin.H{
		"strategies": names,
		"default":    strategy.Default.String(),
		"configured": s.Analyzer.Strategy.String(),
	})
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, source.ErrInvalidDocument),
		errors.Is(err, tree.ErrUnknownEndpoint),
		errors.Is(err, strategy.ErrUnknownStrategy),
		errors.Is(err, weights.ErrUnknownProfile):
		return http.StatusBadRequest
	case errors.Is(err, source.ErrScenarioNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrNoStore), errors.Is(err, core.ErrNoSummarizer):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
