package server

import (
	"database/sql"
	"log/slog"

	"github.com/alexanderramin/riff/internal/mirror/auth"
	"github.com/alexanderramin/riff/internal/mirror/docstore"
	"github.com/gin-gonic/gin"
)

// App is a fully wired mirror server.
type App struct {
	Engine *gin.Engine
	Hub    *docstore.Hub
	Auth   *auth.Service
}

// Build wires repositories, services and handlers over an open database.
func Build(database *sql.DB, cfg Config, logger *slog.Logger, authOpts ...auth.Option) *App {
	if logger == nil {
		logger = slog.Default()
	}
	users := docstore.NewUserRepository(database)
	docs := docstore.NewDocumentRepository(database)
	hub := docstore.NewHub()

	authService := auth.NewService(users, cfg.JWTSecret, cfg.TokenTTL, authOpts...)
	authHandler := NewAuthHandler(authService, cfg.AllowAnonymous)
	documentHandler := NewDocumentHandler(docs, hub, cfg.MaxDocBytes, cfg.KeepAlive, logger)

	return &App{
		Engine: New(authService, authHandler, documentHandler, cfg.CORSOrigins),
		Hub:    hub,
		Auth:   authService,
	}
}
