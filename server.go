package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bitbucket.org/itb77/chantier_backend/config"
	"bitbucket.org/itb77/chantier_backend/middlewares"
	"bitbucket.org/itb77/chantier_backend/models"
	"bitbucket.org/itb77/chantier_backend/storage"
	"bitbucket.org/itb77/chantier_backend/utils"
	"bitbucket.org/itb77/chantier_backend/vision"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// app wires the handlers to their collaborators. One instance per process;
// the review registry inside is the only mutable server-side state.
type app struct {
	cfg       *config.AppConfig
	sites     *models.SiteService
	reviews   *models.ReviewRegistry
	extractor vision.Extractor
}

func main() {
	// .env is optional outside local dev
	_ = godotenv.Load()
	logger := config.GetLogger()
	cfg := config.LoadConfig()

	store, err := buildStore(cfg)
	if err != nil {
		config.LogError(logger, "main", "main", "init storage", nil, err)
		os.Exit(1)
	}

	a := &app{
		cfg:       cfg,
		sites:     models.NewSiteService(store, cfg.BaseDir),
		reviews:   models.NewReviewRegistry(),
		extractor: vision.NewGeminiExtractor(cfg.GeminiAPIKey, cfg.GeminiModel),
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(correlationMiddleware(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
		MaxAge:       12 * time.Hour,
	}))
	router.Use(middlewares.AuthMiddleware())

	a.registerRoutes(router)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Port).Info("chantier backend listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			config.LogError(logger, "main", "main", "listen", nil, err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		config.LogError(logger, "main", "main", "shutdown", nil, err)
	}
	logger.Info("server stopped")
}

func buildStore(cfg *config.AppConfig) (storage.BlobStore, error) {
	switch cfg.StorageProvider {
	case utils.StorageProviderMemory:
		return storage.NewMemoryStore(), nil
	case utils.StorageProviderGCS:
		return storage.NewGCSStore(context.Background(), cfg.Bucket)
	default:
		return nil, fmt.Errorf("unknown storage provider %q", cfg.StorageProvider)
	}
}

func (a *app) registerRoutes(router *gin.Engine) {
	api := router.Group("/api")

	api.POST("/auth/admin", a.adminLoginHandler())

	api.GET("/chantiers", a.listSitesHandler())
	api.POST("/chantiers", a.createSiteHandler())
	api.GET("/chantiers/:site", a.siteHandler())

	api.GET("/chantiers/:site/recap", a.recapHandler())
	api.GET("/chantiers/:site/recap/pdf", a.recapPDFHandler())
	api.GET("/chantiers/:site/export", a.exportHandler())

	api.GET("/chantiers/:site/previsionnel", a.getBudgetHandler())
	api.POST("/chantiers/:site/previsionnel", a.addBudgetLineHandler())
	api.PUT("/chantiers/:site/previsionnel", a.replaceBudgetHandler())

	api.GET("/chantiers/:site/etude/beton", a.getConcreteStudyHandler())
	api.PUT("/chantiers/:site/etude/beton", a.saveConcreteStudyHandler())
	api.GET("/chantiers/:site/etude/acier", a.getSteelStudyHandler())
	api.PUT("/chantiers/:site/etude/acier", a.saveSteelStudyHandler())
	api.POST("/chantiers/:site/etude/acier", a.addSteelStudyLineHandler())

	api.POST("/chantiers/:site/scans", a.createScanHandler())
	api.GET("/scans/:batchId", a.getReviewHandler())
	api.PUT("/scans/:batchId", a.updateReviewHandler())
	api.POST("/scans/:batchId/commit", a.commitReviewHandler())
	api.DELETE("/scans/:batchId", a.discardReviewHandler())

	admin := api.Group("/chantiers/:site/pointages", middlewares.AdminOnly())
	admin.GET("", a.listPointageFoldersHandler())
	admin.POST("", a.createPointageFolderHandler())
	admin.GET("/:folder", a.listPointagePhotosHandler())
	admin.POST("/:folder", a.uploadPointagePhotoHandler())
	admin.GET("/:folder/:name", a.downloadPointagePhotoHandler())
	admin.DELETE("/:folder/:name", a.deletePointagePhotoHandler())
}

func correlationMiddleware(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		correlationId := c.GetHeader("X-Correlation-Id")
		if correlationId == "" {
			correlationId = uuid.NewString()
		}
		c.Header("X-Correlation-Id", correlationId)
		c.Set("correlationId", correlationId)

		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"correlationId": correlationId,
			"method":        c.Request.Method,
			"path":          c.Request.URL.Path,
			"status":        c.Writer.Status(),
			"durationMs":    time.Since(start).Milliseconds(),
		}).Info("request")
	}
}

// storeErrStatus maps store sentinels to HTTP statuses: a stale version is a
// conflict the user resolves by refreshing, a missing workbook is 404.
func storeErrStatus(err error) int {
	switch {
	case errors.Is(err, storage.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
