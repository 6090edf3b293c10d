package main

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/liwei/stride-api/internal/config"
	"github.com/liwei/stride-api/internal/database"
	"github.com/liwei/stride-api/internal/handlers"
	"github.com/liwei/stride-api/internal/logger"
	"github.com/liwei/stride-api/internal/routes"
	"github.com/liwei/stride-api/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	log, err := logger.New(cfg.AppEnv)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	var backend store.Backend
	localMode := cfg.StorageDriver == "local"
	if localMode {
		local, err := store.OpenLocal(cfg.LocalDataPath, log)
		if err != nil {
			log.Fatal("failed to open local data file", "path", cfg.LocalDataPath, "error", err)
		}
		backend = local
		log.Info("using local file storage", "path", cfg.LocalDataPath)
	} else {
		if err := database.Connect(cfg); err != nil {
			log.Fatal("failed to connect to database", "error", err)
		}
		if err := database.Migrate(); err != nil {
			log.Fatal("failed to migrate database", "error", err)
		}
		backend = store.NewRemote(database.DB)
		log.Info("using database storage")
	}

	handlers.Init(backend, log)

	app := fiber.New(fiber.Config{
		AppName: "stride-api",
	})
	app.Use(recover.New())
	app.Use(cors.New())

	routes.Setup(app, localMode)

	log.Info("listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal("server stopped", "error", err)
	}
}
