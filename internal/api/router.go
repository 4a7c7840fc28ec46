// ABOUTME: Gin router exposing the member registry as a JSON API.
// ABOUTME: Routes map one-to-one onto Repository operations plus the dashboard.
package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/harperreed/fitcentre/internal/logging"
	"github.com/harperreed/fitcentre/internal/report"
	"github.com/harperreed/fitcentre/internal/storage"
	"github.com/sirupsen/logrus"
)

// Handler serves API requests against a Repository.
type Handler struct {
	repo       storage.Repository
	reportOpts []report.Option
}

// Router builds the gin engine for the API.
func Router(repo storage.Repository, reportOpts ...report.Option) *gin.Engine {
	h := &Handler{repo: repo, reportOpts: reportOpts}

	route := gin.New()
	route.Use(gin.Recovery(), requestLogger())

	route.GET("/healthz", h.health)

	api := route.Group("/api")
	{
		api.GET("/members", h.listMembers)
		api.POST("/members", h.createMember)
		api.GET("/members/:email", h.getMember)
		api.PUT("/members/:email", h.updateMember)
		api.DELETE("/members/:email", h.deleteMember)

		api.GET("/assessments", h.listAssessments)
		api.POST("/assessments", h.createAssessment)
		api.GET("/assessments/:email/:date", h.getAssessment)
		api.PUT("/assessments/:email/:date", h.updateAssessment)
		api.DELETE("/assessments/:email/:date", h.deleteAssessment)

		api.GET("/conditions", h.listConditions)
		api.POST("/conditions", h.createCondition)
		// Condition names may contain "/", so the name is the rest of the path.
		api.GET("/conditions/:email/*name", h.getCondition)
		api.PUT("/conditions/:email/*name", h.updateCondition)
		api.DELETE("/conditions/:email/*name", h.deleteCondition)

		api.GET("/dashboard", h.dashboard)
	}

	return route
}

// requestLogger logs one line per request at info level.
func requestLogger() gin.HandlerFunc {
	log := logging.WithComponent("api")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("error", c.Errors.String())
		}
		entry.Info("request")
	}
}

func (h *Handler) health(c *gin.Context) {
	ok := true
	for _, collection := range storage.AllCollections {
		exists, err := h.repo.Exists(collection)
		if err != nil || !exists {
			ok = false
			break
		}
	}
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) dashboard(c *gin.Context) {
	d, err := report.Build(h.repo, h.reportOpts...)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
