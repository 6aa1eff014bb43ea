package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/noah-isme/bilishelf-api/internal/handler"
	"github.com/noah-isme/bilishelf-api/internal/middleware"
	"github.com/noah-isme/bilishelf-api/pkg/config"
	"github.com/noah-isme/bilishelf-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/bilishelf-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/bilishelf-api/pkg/middleware/requestid"
)

// Router builds the HTTP surface over the wired services.
func (a *App) Router() *gin.Engine {
	if a.Config.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(a.Logger, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(a.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(a.Metrics))
	r.Use(middleware.WithResponseMeta())

	metricsHandler := handler.NewMetricsHandler(a.Metrics, a.checks)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if a.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	syncHandler := handler.NewSyncHandler(a.Sync, a.SyncJobs)
	snapshotHandler := handler.NewSnapshotHandler(a.Snapshots, a.SnapshotFiles)
	folderHandler := handler.NewFolderHandler(a.Folders)
	tagHandler := handler.NewTagHandler(a.Tags)
	videoHandler := handler.NewVideoHandler(a.Videos)
	batchHandler := handler.NewBatchHandler(a.Batch)

	base := r.Group(a.Config.APIPrefix)
	// Signed download links carry their own authorization.
	base.GET("/exports/download", snapshotHandler.Download)

	api := base.Group("")
	api.Use(middleware.APIToken(a.Tokens))

	syncGroup := api.Group("/sync")
	syncGroup.POST("/bilibili/folders", syncHandler.ListFolders)
	syncGroup.POST("/bilibili", syncHandler.Run)
	syncGroup.POST("/jobs", syncHandler.EnqueueJob)
	syncGroup.GET("/jobs/:id", syncHandler.GetJob)

	api.GET("/export", snapshotHandler.Export)
	api.POST("/import", snapshotHandler.Import)
	api.POST("/exports", snapshotHandler.CreateFile)

	folders := api.Group("/folders")
	folders.GET("", folderHandler.List)
	folders.POST("", folderHandler.Create)
	folders.PATCH("/order", folderHandler.Reorder)
	folders.PATCH("/:id", folderHandler.Update)
	folders.DELETE("/:id", folderHandler.Delete)
	folders.GET("/:id/videos", folderHandler.Videos)

	tags := api.Group("/tags")
	tags.GET("", tagHandler.List)
	tags.POST("", tagHandler.Create)
	tags.PATCH("/:id", tagHandler.Rename)
	tags.DELETE("/:id", tagHandler.Archive)

	videos := api.Group("/videos")
	videos.POST("/batch/move", batchHandler.Move)
	videos.POST("/batch/copy", batchHandler.Copy)
	videos.POST("/batch/delete", batchHandler.Delete)
	videos.GET("/:id", videoHandler.Get)
	videos.POST("/:id/folders/:folderId", videoHandler.AddToFolder)
	videos.DELETE("/:id/folders/:folderId", videoHandler.RemoveFromFolder)
	videos.PUT("/:id/tags", videoHandler.SetTags)

	trash := api.Group("/trash")
	trash.GET("/folders", folderHandler.ListTrash)
	trash.POST("/folders/:id/restore", folderHandler.Restore)
	trash.DELETE("/folders/:id", folderHandler.Purge)
	trash.GET("/videos", videoHandler.Trash)
	trash.POST("/videos/:id/restore", videoHandler.Restore)
	trash.DELETE("/videos/:id", videoHandler.Purge)

	return r
}
