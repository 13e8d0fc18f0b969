// Package main runs the recording lifecycle and media delivery HTTP server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/openroom/backend/config"
	"github.com/openroom/backend/internal/egress"
	"github.com/openroom/backend/internal/middleware"
	"github.com/openroom/backend/internal/recordings"
	"github.com/openroom/backend/internal/rooms"
	"github.com/openroom/backend/pkg/response"
	"github.com/openroom/backend/pkg/storage"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	store, err := storage.NewS3(ctx, storage.Config{
		Endpoint:        cfg.S3.Endpoint,
		Region:          cfg.S3.Region,
		AccessKeyID:     cfg.S3.AccessKeyID,
		SecretAccessKey: cfg.S3.SecretAccessKey,
		Bucket:          cfg.S3.Bucket,
	}, logger)
	if err != nil {
		logger.Fatal("storage", zap.Error(err))
	}

	egressClient := egress.NewLiveKitClient(cfg.LiveKit.URL, cfg.LiveKit.APIKey, cfg.LiveKit.APISecret, logger)
	coordinator := egress.NewCoordinator(egressClient, cfg.Recordings.Prefix, logger)
	index := recordings.NewIndex(store, cfg.Recordings.Prefix, logger)

	recordingHandler := recordings.NewHandler(coordinator, index, store, cfg.Recordings.Prefix, logger)
	webhookHandler := recordings.NewWebhookHandler(cfg.LiveKit.APIKey, cfg.LiveKit.APISecret, logger)
	roomHandler := rooms.NewHandler(cfg.LiveKit, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	router.POST("/token", roomHandler.CreateToken)
	router.POST("/livekit/webhook", webhookHandler.Receive)

	router.POST("/recordings/start", recordingHandler.StartRecording)
	router.POST("/recordings/stop", recordingHandler.StopRecording)
	router.GET("/recordings", recordingHandler.List)
	router.GET("/recordings/thumbnails/:name", recordingHandler.GetThumbnail)
	router.GET("/recordings/:name", recordingHandler.GetRecording)
	router.DELETE("/recordings/:name", recordingHandler.DeleteRecording)

	srv := &http.Server{
		Addr:        ":" + cfg.Server.Port,
		Handler:     router,
		ReadTimeout: time.Duration(cfg.Server.ReadTimeout) * time.Second,
		// WriteTimeout bounds a single ranged response, not a whole file:
		// media replies are capped at ChunkSize bytes.
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
