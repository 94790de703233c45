package transport

import (
	"path/filepath"

	"github.com/ds124wfegd/WB_L3/composite/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

// InitRoutes builds the router. templatesPath may be empty when the upload page is not served.
func InitRoutes(handler *CompositeHandler, templatesPath string) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.Logger())

	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		c.Header("Access-Control-Expose-Headers", "X-Composite-Strategy, X-Composite-Width, X-Composite-Height, X-Composite-Cache")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	api := router.Group("/api/v1")
	{
		composites := api.Group("/composites")
		{
			composites.POST("", handler.CreateComposite)
			composites.POST("/analyze", handler.AnalyzeComposite)
			composites.POST("/jobs", handler.SubmitComposite)
			composites.GET("/jobs/:id", handler.GetComposite)
			composites.GET("/jobs/:id/file", handler.DownloadComposite)
			composites.DELETE("/jobs/:id", handler.DeleteComposite)
		}
	}

	if templatesPath != "" {
		router.Static("/static", templatesPath)
		router.GET("/", func(c *gin.Context) {
			c.File(filepath.Join(templatesPath, "index.html"))
		})
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "composite-service",
		})
	})
	return router
}
