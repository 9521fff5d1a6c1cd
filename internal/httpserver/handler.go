package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	pkgResponse "case-automation/pkg/response"
)

func (srv *HTTPServer) mapHandlers() error {
	srv.registerMiddlewares()
	srv.registerSystemRoutes()
	srv.registerDomainRoutes()
	return nil
}

func (srv *HTTPServer) registerMiddlewares() {
	srv.gin.Use(gin.Recovery())
}

func (srv *HTTPServer) registerSystemRoutes() {
	srv.gin.GET("/health", srv.healthCheck)
	srv.gin.GET("/version", srv.version)
}

// registerDomainRoutes registers all domain routes.
func (srv *HTTPServer) registerDomainRoutes() {
	ctx := context.Background()

	if srv.webhookHandler != nil {
		srv.gin.POST("/webhook", srv.webhookHandler.HandleWebhook)
		srv.l.Infof(ctx, "Webhook route registered at POST /webhook")
	} else {
		srv.l.Warnf(ctx, "Webhook handler not configured, skipping webhook route")
	}

	if srv.feeder != nil {
		srv.gin.POST("/feed/siem", srv.syncSIEM)
		srv.l.Infof(ctx, "SIEM feed route registered at POST /feed/siem")
	} else {
		srv.l.Infof(ctx, "SIEM feeder not configured, skipping feed route")
	}
}

type syncSIEMRequest struct {
	// Timerange is the lookback window in minutes.
	Timerange int `json:"timerange" binding:"required,gt=0"`
}

// syncSIEM pulls offenses updated within the requested window and
// creates or refreshes their alerts.
func (srv *HTTPServer) syncSIEM(c *gin.Context) {
	ctx := c.Request.Context()

	var req syncSIEMRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		pkgResponse.BadRequest(c, "timerange (minutes) is required")
		return
	}

	created, updated, err := srv.feeder.SyncOffenses(ctx, time.Duration(req.Timerange)*time.Minute)
	if err != nil {
		srv.l.Errorf(ctx, "SIEM feed failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"created": created,
			"updated": updated,
		})
		return
	}

	pkgResponse.OK(c, gin.H{"created": created, "updated": updated})
}
