package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Resp is the standard JSON body for non-report endpoints.
type Resp struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// OK sends 200 JSON with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Resp{
		Success: true,
		Data:    data,
	})
}

// BadRequest sends 400 with a message, used for unparseable payloads.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Resp{
		Success: false,
		Message: message,
	})
}

// InternalError sends 500. The message is kept generic on purpose.
func InternalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, Resp{
		Success: false,
		Message: "internal error",
	})
}
