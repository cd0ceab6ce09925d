package server

import (
  "strings"

  "github.com/gin-contrib/cors"
  "github.com/gin-gonic/gin"

  "github.com/wavelength-chat/wavelength-backend/internal/handlers"
)

type RouterConfig struct {
  ChatHandler           *handlers.ChatHandler
  ImageHandler          *handlers.ImageHandler
  SessionHandler        *handlers.SessionHandler
  CORSOrigins           string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  //-----------------------------------------
  // Cors Setup
  //-----------------------------------------
  origins := []string{"http://localhost:3000"}
  if cfg.CORSOrigins != "" {
    origins = strings.Split(cfg.CORSOrigins, ",")
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     origins,
    AllowMethods:     []string{"GET","POST","PUT","DELETE","PATCH","OPTIONS"},
    AllowHeaders:     []string{"Authorization","Content-Type","X-Requested-With"},
    AllowCredentials: true,
  }))

  //-----------------------------------------
  // Health Routes
  //-----------------------------------------
  router.GET("/healthz", handlers.Healthz)

  //-----------------------------------------
  // API Routes
  //-----------------------------------------
  api := router.Group("/api")
  {
    // Relays
    api.POST("/chat", cfg.ChatHandler.StreamChat)
    api.POST("/image-generation", cfg.ImageHandler.GenerateImage)

    // Session lifecycle
    api.POST("/chats", cfg.SessionHandler.CreateSession)
    api.GET("/chats", cfg.SessionHandler.ListSessions)
    api.GET("/chats/:id", cfg.SessionHandler.LoadSession)
    api.PATCH("/chats/:id", cfg.SessionHandler.RenameSession)
    api.DELETE("/chats/:id", cfg.SessionHandler.DeleteSession)
  }

  return router
}
