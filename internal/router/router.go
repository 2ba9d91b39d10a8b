package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/YashRaythatha/hackathon-code-validation/config"
	"github.com/YashRaythatha/hackathon-code-validation/internal/embed"
	"github.com/YashRaythatha/hackathon-code-validation/internal/handler"
)

func Setup(
	cfg *config.Config,
	analysisHandler *handler.AnalysisHandler,
	agentHandler *handler.AgentHandler,
	judgeHandler *handler.JudgeConfigHandler,
	systemHandler *handler.SystemHandler,
) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", handler.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", handler.RequestIDHeader},
		AllowCredentials: false,
	}))
	r.Use(handler.RequestID())

	api := r.Group("/api")
	{
		api.GET("/health", systemHandler.Health)

		analyses := api.Group("/analyses")
		{
			analyses.POST("", analysisHandler.Create)
			analyses.GET("", analysisHandler.List)
			analyses.GET("/:id", analysisHandler.Get)
		}

		api.GET("/agents", agentHandler.List)

		judge := api.Group("/judge-config")
		{
			judge.GET("", judgeHandler.Get)
			judge.PUT("", judgeHandler.Update)
			judge.GET("/presets", judgeHandler.ListPresets)
			judge.POST("/presets/:name", judgeHandler.ApplyPreset)
		}

		cache := api.Group("/cache")
		{
			cache.GET("/stats", systemHandler.CacheStats)
			cache.DELETE("", systemHandler.ClearCache)
		}

		api.GET("/learning/stats", systemHandler.LearningStats)
	}

	// 必须在 API 路由之后设置
	embed.SetupRouter(r)

	return r
}
