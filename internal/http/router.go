package httpapi

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/territory_assign/backend/internal/config"
	"github.com/territory_assign/backend/internal/http/handlers"
	"github.com/territory_assign/backend/internal/http/middleware"

	_ "github.com/territory_assign/backend/docs"
)

func Router(cfg config.Config, h *handlers.Handler, logger zerolog.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Metrics())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.AdminKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if cfg.CORSAllowed == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = []string{cfg.CORSAllowed}
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(middleware.Timeout(cfg.RequestTimeout))
	{
		api.GET("/territories", h.TerritoriesList)
		api.GET("/territories/:id", h.TerritoryGet)
		api.GET("/territories/:id/stats", h.TerritoryStats)
		api.GET("/stats/utilization", h.UtilizationRanking)
		api.GET("/rules", h.RulesList)
		api.GET("/rules/active", h.RulesActive)
		api.GET("/rules/:id", h.RuleGet)
		api.GET("/assignment-logs", h.LogsList)
	}

	admin := api.Group("")
	admin.Use(middleware.AdminKey(cfg.AdminKey))
	{
		admin.POST("/territories", h.TerritoryCreate)
		admin.PATCH("/territories/:id", h.TerritoryUpdate)
		admin.DELETE("/territories/:id", h.TerritoryDelete)
		admin.POST("/territories/:id/members", h.MemberAdd)
		admin.PATCH("/territories/:id/members/:userId", h.MemberUpdate)
		admin.DELETE("/territories/:id/members/:userId", h.MemberRemove)
		admin.POST("/rules", h.RuleCreate)
		admin.PATCH("/rules/:id", h.RuleUpdate)
		admin.DELETE("/rules/:id", h.RuleDelete)
		admin.POST("/assignments", h.Assign)
		admin.DELETE("/assignment-logs", h.LogsClear)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}
