package responses

import (
	"github.com/gin-gonic/gin"
)

// ErrorResponse is the public error body. Internal details stay in the logs.
type ErrorResponse struct {
	Error string `json:"error" example:"Media not found"`
}

// Abort writes the error body and stops the handler chain.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}
