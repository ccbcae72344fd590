package response

import (
	"github.com/gin-gonic/gin"
)

// OK writes the payload as-is with status 200. Endpoints own their wire
// shape; there is no envelope.
func OK(c *gin.Context, payload any) {
	c.JSON(200, payload)
}

// Error writes the flat error shape every endpoint shares.
func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}
