package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	uuid "github.com/twinj/uuid"
	"gorm.io/gorm"
	"snapsort/classifier"
	"snapsort/controllers"
	"snapsort/models"
	"snapsort/utils"
	"snapsort/web"
)

const version = "v0.1.0"

// CorsMiddleware Use middleware for CORS (Cross-Origin Resource Sharing)
// CORS for * origins, allowing:
// - GET and POST methods
// - Origin header
// - Preflight requests cached for 12 hours
func corsMiddleware() gin.HandlerFunc {
	_corsMiddleware := cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST"},
		AllowHeaders:  []string{"Origin", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "ETag", "X-Request-Id"},
		MaxAge:        12 * time.Hour,
	})
	return _corsMiddleware
}

// RequestIDMiddleware Generate a UUID and attach it to each request
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		_uuid := uuid.NewV4()
		c.Writer.Header().Set("X-Request-Id", _uuid.String())
		c.Next()
	}
}

// setupLogging Apply the logging section of the config to logrus
func setupLogging(config *utils.Config) error {
	level, err := log.ParseLevel(config.Logging.Level)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	if config.Logging.JSON {
		log.SetFormatter(&log.JSONFormatter{})
	}
	return nil
}

// setupRouter Register middleware, templates and routes
func setupRouter(config *utils.Config, db *gorm.DB, imageClassifier classifier.Classifier) *gin.Engine {
	r := gin.Default()
	r.MaxMultipartMemory = config.Server.MaxMultipartMemory

	r.Use(corsMiddleware())
	r.Use(requestIDMiddleware())
	// Images are already compressed
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/image/"})))

	// Version tag to test against
	r.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": version,
		})
	})

	// The template directory doubles as the static asset directory
	if config.Templates != "" {
		r.LoadHTMLGlob(filepath.Join(config.Templates, "*"))
		r.Static("/templates", config.Templates)
	} else {
		r.SetHTMLTemplate(web.Templates())
		r.StaticFS("/templates", web.Static())
	}

	// Routes below get a database session per request
	pages := r.Group("/", controllers.DatabaseSession(db))
	{
		pages.POST("/uploadfile", controllers.UploadFile(imageClassifier))
		pages.GET("/image/:image_id", controllers.GetImage)
		pages.GET("/", controllers.ListImages(controllers.IndexPage))
		for _, category := range models.Categories {
			pages.GET("/"+category.Slug, controllers.ListImages(category))
		}
	}

	return r
}

func main() {
	log.Info("Starting snapsort...")

	// Generate our config based on the config supplied
	// by the user in the flags
	configPath, debugMode, err := utils.ParseFlags()
	if err != nil {
		log.Fatal(err)
	}
	config, err := utils.NewConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := setupLogging(config); err != nil {
		log.Fatal(err)
	}

	// Debug mode enables gin-gonic debug mode
	if !debugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to the database
	db, err := models.ConnectDataBase(config.Database.Driver, config.Database.Dsn)
	if err != nil {
		log.Fatal(err)
	}

	// The classifier is loaded once and shared by all requests
	imageClassifier, err := classifier.NewFromConfig(config)
	if err != nil {
		log.Fatal(err)
	}

	r := setupRouter(config, db, imageClassifier)

	addr := fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  config.Server.ReadTimeout,
		WriteTimeout: config.Server.WriteTimeout,
	}

	go func() {
		// service connections
		log.Info(fmt.Sprintf("Listening on %s", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutdown Server ...")

	ctx, cancel := context.WithTimeout(context.Background(), config.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("Server Shutdown: ", err)
	}

	imageClassifier.Close()
	if err := models.CloseDataBase(db); err != nil {
		log.Warn("Closing database: ", err)
	}

	log.Info("Server exiting")
}
