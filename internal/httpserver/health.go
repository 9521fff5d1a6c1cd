package httpserver

import (
	"case-automation/pkg/response"

	"github.com/gin-gonic/gin"
)

// Health response constants (single source for version and service identity).
const (
	HealthVersion = "2.0.0"
	ServiceName   = "case-automation"
)

// healthCheck handles health check requests.
func (srv *HTTPServer) healthCheck(c *gin.Context) {
	response.OK(c, gin.H{
		"status":  "healthy",
		"version": HealthVersion,
		"service": ServiceName,
	})
}

// version reports the running service version.
func (srv *HTTPServer) version(c *gin.Context) {
	response.OK(c, gin.H{
		"version": HealthVersion,
		"service": ServiceName,
	})
}
