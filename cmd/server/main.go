package main

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mgonzalezcanudas/print3dhood/internal/config"
	"github.com/mgonzalezcanudas/print3dhood/internal/domain/service"
	"github.com/mgonzalezcanudas/print3dhood/internal/handler"
	"github.com/mgonzalezcanudas/print3dhood/internal/infrastructure/geometry"
	"github.com/mgonzalezcanudas/print3dhood/internal/infrastructure/mesh"
	"github.com/mgonzalezcanudas/print3dhood/internal/infrastructure/overpass"
	"github.com/mgonzalezcanudas/print3dhood/internal/logger"
	"github.com/mgonzalezcanudas/print3dhood/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment as-is")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	zlog := logger.New(cfg.LogLevel, cfg.LogFile)
	defer zlog.Sync()

	// The HTTP client outlives the per-fetch deadline so the acquirer's
	// context, not the transport, decides when to give up.
	client := overpass.NewClient(cfg.OverpassURL, cfg.UserAgent,
		time.Duration(cfg.FetchTimeoutS+30)*time.Second)
	acquirer := overpass.NewAcquirer(cfg, client, zlog)

	geoKernel := geometry.NewKernel()
	meshKernel := mesh.NewKernel()

	composer := service.NewComposer(cfg, geoKernel, zlog)
	extruder := service.NewExtruder(cfg, meshKernel, zlog)
	packager := service.NewPackager(map[string]service.MeshExporter{
		"stl": mesh.NewSTLExporter(),
	})
	projector := service.NewPreviewProjector()

	modelUseCase := usecase.NewModelUseCase(cfg, acquirer, composer, extruder, packager, projector, zlog)
	modelHandler := handler.NewModelHandler(modelUseCase, zlog)

	router := gin.Default()
	api := router.Group("/api")
	{
		api.POST("/models", modelHandler.PostModel)
		api.POST("/models/preview", modelHandler.PostPreview)
	}

	zlog.Info("server starting")
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
