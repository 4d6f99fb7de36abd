package main

import (
	"log"

	"github.com/gin-gonic/gin"

	"doctor-outreach/internal/api"
	"doctor-outreach/internal/config"
	"doctor-outreach/internal/enrich"
	"doctor-outreach/internal/registry"
	"doctor-outreach/internal/session"
	"doctor-outreach/internal/tallos"
	"doctor-outreach/internal/ws"
)

func main() {
	cfg := config.LoadConfig()

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	sessions := session.NewStore()
	hub := ws.NewHub()
	go hub.Run()

	browser := registry.NewBrowser(cfg)
	tallosClient := tallos.NewClient(cfg)
	enricher := enrich.NewClient(cfg)

	searchHandler := api.NewSearchHandler(browser, sessions, hub)
	contactHandler := api.NewContactHandler(sessions, enricher)
	messagingHandler := api.NewMessagingHandler(tallosClient)
	broadcastHandler := api.NewBroadcastHandler(tallosClient, sessions, hub)
	sessionHandler := api.NewSessionHandler(sessions)

	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	})

	apiGroup := r.Group("/api")
	{
		// Session lifecycle
		apiGroup.POST("/session", sessionHandler.Create)
		apiGroup.GET("/session/:id", sessionHandler.Get)
		apiGroup.DELETE("/session/:id", sessionHandler.Delete)
		apiGroup.PUT("/session/:id/template", sessionHandler.SetTemplate)

		// Registry search
		apiGroup.POST("/search", searchHandler.Search)
		apiGroup.GET("/search/export", searchHandler.ExportResults)

		// Contacts and enrichment
		apiGroup.POST("/contacts/upload", contactHandler.Upload)
		apiGroup.POST("/enrich", contactHandler.Enrich)

		// Tallos passthroughs
		apiGroup.GET("/operators", messagingHandler.GetOperators)
		apiGroup.GET("/templates", messagingHandler.GetTemplates)
		apiGroup.GET("/integrations", messagingHandler.GetIntegrations)
		apiGroup.GET("/customers", messagingHandler.GetCustomers)
		apiGroup.GET("/chat/history", messagingHandler.GetChatHistory)

		// Bulk sending
		apiGroup.POST("/broadcast", broadcastHandler.SendBroadcast)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
