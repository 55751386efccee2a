package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"food-delivery-backend/config"
	"food-delivery-backend/handlers"
	"food-delivery-backend/logger"
	"food-delivery-backend/middleware"
	"food-delivery-backend/routes"
	"food-delivery-backend/seed"
	"food-delivery-backend/services"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env, cfg.Log.Level)
	if err != nil {
		panic("failed to build logger: " + err.Error())
	}
	defer log.Sync()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.OpenDB(&cfg.DB)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := config.Migrate(db); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}
	log.Info("database connected and migrated", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.Seed {
		if err := seed.Run(db, log); err != nil {
			log.Fatal("failed to seed database", zap.Error(err))
		}
	}

	tokens := services.NewTokenIssuer(&cfg.JWT)
	authService := services.NewAuthService(db, tokens, &cfg.JWT, log)
	orderService := services.NewOrderService(db, log)
	catalogService := services.NewCatalogService(db, log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": "food-delivery-backend"})
	})

	routes.Register(r, routes.Handlers{
		JWT:         &cfg.JWT,
		Auth:        handlers.NewAuthHandler(authService, &cfg.JWT, log),
		Restaurants: handlers.NewRestaurantHandler(catalogService, log),
		MenuItems:   handlers.NewMenuItemHandler(catalogService, log),
		Categories:  handlers.NewCategoryHandler(catalogService, log),
		Orders:      handlers.NewOrderHandler(orderService, log),
	})

	log.Info("server starting", zap.String("port", cfg.Server.Port))
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
