// Package main provides the HR assistant server entry point.
package main

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dempseyco/hr-assistant-go/internal/config"
	"github.com/dempseyco/hr-assistant-go/internal/dialog"
	"github.com/dempseyco/hr-assistant-go/internal/docs"
	"github.com/dempseyco/hr-assistant-go/internal/employee"
	domerrors "github.com/dempseyco/hr-assistant-go/internal/errors"
	"github.com/dempseyco/hr-assistant-go/internal/logger"
	"github.com/dempseyco/hr-assistant-go/internal/metrics"
	"github.com/dempseyco/hr-assistant-go/internal/session"
	"github.com/dempseyco/hr-assistant-go/internal/storage"
)

// server bundles the handlers' shared dependencies.
type server struct {
	cfg       *config.Config
	engine    *dialog.Engine
	directory *employee.Directory
	sessions  *session.Manager
	db        *storage.DB
	documents *docs.Generator
	metrics   *metrics.Metrics
	logger    *logger.Logger
}

func newServer(cfg *config.Config, engine *dialog.Engine, directory *employee.Directory, sessions *session.Manager, db *storage.DB, documents *docs.Generator, m *metrics.Metrics, log *logger.Logger) *server {
	return &server{
		cfg:       cfg,
		engine:    engine,
		directory: directory,
		sessions:  sessions,
		db:        db,
		documents: documents,
		metrics:   m,
		logger:    log,
	}
}

// setupRoutes configures all HTTP routes.
func (s *server) setupRoutes(router *gin.Engine, registry *prometheus.Registry) {
	rootHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "hr-assistant", "status": "ok"})
	}
	router.GET("/", rootHandler)
	router.HEAD("/", rootHandler)

	// Liveness probe - never checks dependencies, only that the process
	// is serving.
	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/healthz", healthHandler)
	router.HEAD("/healthz", healthHandler)

	// Readiness probe - full dependency check.
	readyHandler := func(c *gin.Context) {
		if err := s.db.Ready(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": err.Error(),
			})
			return
		}
		employeeCount, _ := s.db.CountEmployees(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{
			"status":    "ready",
			"database":  "connected",
			"employees": employeeCount,
		})
	}
	router.GET("/ready", readyHandler)
	router.HEAD("/ready", readyHandler)

	api := router.Group("/api")
	api.POST("/ask", s.handleAsk)
	api.GET("/w2/:id", s.handleW2Download)
	api.POST("/hr/login", s.handleHRLogin)

	hr := api.Group("/hr", s.hrAuthMiddleware())
	hr.GET("/emails", s.handleHREmails)
	hr.GET("/pto-overview", s.handlePTOOverview)

	// Prometheus metrics endpoint, Basic Auth when credentials configured
	metricsHandler := gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	if s.cfg.MetricsPassword != "" {
		router.GET("/metrics", metricsAuthMiddleware(s.cfg.MetricsUsername, s.cfg.MetricsPassword), metricsHandler)
	} else {
		router.GET("/metrics", metricsHandler)
	}
}

// handleAsk runs one chat turn through the dialogue engine.
func (s *server) handleAsk(c *gin.Context) {
	var req dialog.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		s.clientError(c, http.StatusBadRequest, "invalid request body", "ask")
		return
	}

	ctx := c.Request.Context()
	if s.cfg.ChatTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.ChatTimeout)
		defer cancel()
	}

	resp, err := s.engine.Chat(ctx, req)
	if err != nil {
		s.renderChatError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// renderChatError maps domain errors to status codes and user-presentable
// messages. Every failure names a next step.
func (s *server) renderChatError(c *gin.Context, err error) {
	switch {
	case domerrors.IsMissingIdentifier(err):
		s.clientError(c, http.StatusBadRequest,
			"Please provide your employee ID or first name so I can look you up.", "ask")
	case domerrors.IsAmbiguousName(err):
		s.clientError(c, http.StatusConflict,
			"More than one employee has that first name. Please use your employee ID instead.", "ask")
	case domerrors.IsNotFound(err):
		s.clientError(c, http.StatusNotFound,
			"I couldn't find an employee matching that identifier. Please check it and try again.", "ask")
	default:
		if ve, ok := domerrors.AsValidation(err); ok {
			s.clientError(c, http.StatusBadRequest, ve.Error(), "ask")
			return
		}
		s.logger.WithError(err).Error("Chat request failed")
		s.metrics.RecordHTTPError("internal", "/api/ask")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Something went wrong on our side. Please try again.",
		})
	}
}

// handleW2Download relays the document service's download handle.
func (s *server) handleW2Download(c *gin.Context) {
	employeeID := c.Param("id")
	rec, err := s.directory.Resolve(employeeID)
	if err != nil {
		s.renderChatError(c, err)
		return
	}

	year := s.cfg.W2TaxYear
	handle, err := s.documents.GenerateW2(c.Request.Context(), docs.Directive{
		EmployeeID: rec.ID,
		FirstName:  rec.FirstName,
		Year:       year,
	})
	if err != nil {
		s.logger.WithError(err).Error("W-2 handle generation failed")
		s.metrics.RecordHTTPError("internal", "/api/w2")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not prepare the document"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"employee_id": rec.ID,
		"year":        year,
		"handle":      handle,
	})
}

// handleHRLogin authenticates the HR dashboard. Credentials come from
// configuration; comparison is constant-time.
func (s *server) handleHRLogin(c *gin.Context) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		s.clientError(c, http.StatusBadRequest, "invalid request body", "hr_login")
		return
	}

	if s.cfg.HRPassword == "" {
		s.clientError(c, http.StatusForbidden, "HR dashboard login is not configured", "hr_login")
		return
	}

	userOK := subtle.ConstantTimeCompare([]byte(body.Username), []byte(s.cfg.HRUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(body.Password), []byte(s.cfg.HRPassword)) == 1
	if !userOK || !passOK {
		s.clientError(c, http.StatusUnauthorized, "invalid credentials", "hr_login")
		return
	}

	sess := s.sessions.Create()
	s.sessions.SetHRAuthenticated(sess.ID, true)
	c.JSON(http.StatusOK, gin.H{"session_id": sess.ID})
}

// hrAuthMiddleware guards the HR dashboard endpoints behind a logged-in
// session passed via the X-Session-ID header.
func (s *server) hrAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.GetHeader("X-Session-ID")
		if sessionID == "" || !s.sessions.HRAuthenticated(sessionID) {
			s.metrics.RecordHTTPError("unauthorized", c.FullPath())
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "HR login required"})
			return
		}
		c.Next()
	}
}

// handleHREmails lists the escalation outbox with a dashboard summary.
func (s *server) handleHREmails(c *gin.Context) {
	status := c.DefaultQuery("status", "all")
	emails, err := s.db.ListHREmails(c.Request.Context(), status)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list HR emails")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load emails"})
		return
	}

	now := time.Now()
	summary := gin.H{
		"total":         len(emails),
		"pending":       0,
		"high_priority": 0,
		"overdue":       0,
	}
	pending, highPriority, overdue := 0, 0, 0
	items := make([]gin.H, 0, len(emails))
	for _, e := range emails {
		if e.Status == "Pending" {
			pending++
			if e.ResponseDue.Before(now) {
				overdue++
			}
		}
		if e.Priority == "High" {
			highPriority++
		}
		items = append(items, gin.H{
			"id":           e.ID,
			"employee_id":  e.EmployeeID,
			"subject":      e.Subject,
			"body":         e.Body,
			"priority":     e.Priority,
			"status":       e.Status,
			"received_at":  e.ReceivedAt.Format(time.RFC3339),
			"response_due": e.ResponseDue.Format(time.RFC3339),
		})
	}
	summary["pending"] = pending
	summary["high_priority"] = highPriority
	summary["overdue"] = overdue

	c.JSON(http.StatusOK, gin.H{"summary": summary, "emails": items})
}

// handlePTOOverview returns the days-off summary for the HR dashboard.
func (s *server) handlePTOOverview(c *gin.Context) {
	stats := s.directory.PTOOverview()
	c.JSON(http.StatusOK, gin.H{
		"total_employees":  stats.TotalEmployees,
		"average_days_off": stats.AverageDaysOff,
		"distribution":     stats.Distribution,
	})
}

func (s *server) clientError(c *gin.Context, status int, message, route string) {
	s.metrics.RecordHTTPError(http.StatusText(status), route)
	c.JSON(status, gin.H{"error": message})
}
