// Package server is the HTTP front of the mirror: account endpoints, whole
// document replace and a server-sent event stream per user.
package server

import (
	"log/slog"
	"net/http"

	"github.com/alexanderramin/riff/internal/mirror/auth"
	"github.com/gin-gonic/gin"
)

func New(
	authService *auth.Service,
	authHandler *AuthHandler,
	documentHandler *DocumentHandler,
	corsOrigins []string,
) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), CORS(corsOrigins))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := engine.Group("/api")
	authGroup := api.Group("/auth")
	authGroup.POST("/register", authHandler.Register)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/anonymous", authHandler.Anonymous)

	docs := api.Group("/documents/:userID")
	docs.Use(Auth(authService), OwnerOnly())
	docs.GET("", documentHandler.Get)
	docs.PUT("", documentHandler.Put)
	docs.GET("/events", documentHandler.Events)

	return engine
}

// ParseLevel maps a level name to slog; unknown names mean info.
func ParseLevel(name string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return slog.LevelInfo
	}
	return level
}
