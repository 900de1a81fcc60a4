package main

import (
	"log/slog"
	"os"

	"github.com/junhot777-lab/cyber-calender/config"
	"github.com/junhot777-lab/cyber-calender/internal/handlers"
	"github.com/junhot777-lab/cyber-calender/internal/routes"
	"github.com/junhot777-lab/cyber-calender/internal/seed"
	"github.com/junhot777-lab/cyber-calender/models"

	"github.com/gin-gonic/gin"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	config.LoadConfig()
	config.ConnectDB()
	config.ConnectRedis()

	if err := config.DB.AutoMigrate(&models.User{}, &models.Event{}); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}
	if err := seed.Run(config.DB); err != nil {
		slog.Error("Seeding failed", "error", err)
		os.Exit(1)
	}

	go handlers.GlobalHub.Run()

	r := gin.Default()
	routes.SetupRoutes(r)

	slog.Info("Starting server", "addr", config.Addr)
	if err := r.Run(config.Addr); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}
