package routes

import (
	"stockpulse/controllers"
	"stockpulse/services/analysis"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all API routes
func SetupRoutes(router *gin.Engine, engine *analysis.Engine, store analysis.Store) {
	dataController := controllers.NewDataController(engine, store)

	api := router.Group("/api")
	{
		api.GET("/data/:symbol", dataController.GetFusedData)
		api.GET("/prices/:symbol", dataController.GetPrices)
		api.GET("/fundamentals/:symbol", dataController.GetFundamentals)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "StockPulse API is running",
		})
	})
}
