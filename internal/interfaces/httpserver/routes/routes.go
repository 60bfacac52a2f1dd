package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/janhq/media-catalog/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates media route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches the media routes at the root, matching the paths existing clients call.
func (r *Routes) Register(router gin.IRouter) {
	router.POST("/upload", r.handlers.Media.Upload)
	router.GET("/media", r.handlers.Media.List)
	router.GET("/media/:id", r.handlers.Media.Get)
}
