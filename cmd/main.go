package main

import (
  "fmt"
  "os"

  "github.com/joho/godotenv"

  "github.com/wavelength-chat/wavelength-backend/internal/cache"
  "github.com/wavelength-chat/wavelength-backend/internal/db"
  "github.com/wavelength-chat/wavelength-backend/internal/handlers"
  "github.com/wavelength-chat/wavelength-backend/internal/logger"
  "github.com/wavelength-chat/wavelength-backend/internal/repos"
  "github.com/wavelength-chat/wavelength-backend/internal/server"
  "github.com/wavelength-chat/wavelength-backend/internal/services"
  "github.com/wavelength-chat/wavelength-backend/internal/utils"
)

func main() {
  // .env is optional; real deployments set the environment directly.
  _ = godotenv.Load()

  // Logger Setup
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Environment Variables
  log.Info("Attempting to load environment variables for Main now...")
  redisAddress := utils.GetEnv("REDIS_ADDRESS", "", log)
  redisPassword := utils.GetEnv("REDIS_PASSWORD", "", log)
  redisDB := utils.GetEnvAsInt("REDIS_DB", 0, log)
  corsOrigins := utils.GetEnv("CORS_ORIGINS", "", log)

  // Postgres Setup
  log.Info("Setting Up Postgres from Main now...")
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("DB init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Postgres auto migration failed", "error", err)
  }
  thePG := postgresService.DB()
  log.Info("Postgres Setup From Main Successful :)")

  // Repositories Setup
  log.Info("Setting Up Repositories from Main now...")
  sessionRepo := repos.NewChatSessionRepo(thePG, log)
  messageRepo := repos.NewChatMessageRepo(thePG, log)
  log.Info("Repositories Set Up From Main Successful :)")

  // Session Cache Setup
  log.Info("Setting Up Session Cache From Main Now :)")
  sessionCache, err := cache.NewSessionCache(log, redisAddress, redisPassword, redisDB)
  if err != nil {
    log.Warn("Failed to init session cache, continuing without it", "error", err)
    sessionCache = cache.NoopSessionCache{}
  }

  // Services Setup
  log.Info("Setting up Services from Main now...")
  openAIService, err := services.NewOpenAIService(log)
  if err != nil {
    log.Error("Fatal error: Cannot init OpenAIService", "error", err)
    os.Exit(1)
  }
  bucketService, err := services.NewBucketService(log)
  if err != nil {
    log.Warn("Could not init BucketService", "error", err)
  }
  chatService := services.NewChatService(log, openAIService, sessionRepo, messageRepo, sessionCache)
  imageService := services.NewImageService(log, openAIService, sessionRepo, messageRepo, bucketService, sessionCache)
  sessionService := services.NewSessionService(log, sessionRepo, messageRepo, sessionCache)
  log.Info("Services Set Up From Main Successful :)")

  // Handler Setup
  log.Info("Setting Up Handlers from Main now...")
  chatHandler := handlers.NewChatHandler(log, chatService)
  imageHandler := handlers.NewImageHandler(log, imageService)
  sessionHandler := handlers.NewSessionHandler(log, sessionService)
  log.Info("Handlers Set Up From Main Successful :)")

  // Router Setup
  log.Info("Setting Up Router from Main now...")
  router := server.NewRouter(server.RouterConfig{
    ChatHandler:      chatHandler,
    ImageHandler:     imageHandler,
    SessionHandler:   sessionHandler,
    CORSOrigins:      corsOrigins,
  })
  log.Info("Router Set Up From Main Successful :)")

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Error("Server failed", "error", err)
  }
}
