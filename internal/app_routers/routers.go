package approuters

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/berlincodez/Campus-Skill-link/internal/configuration"
	"github.com/berlincodez/Campus-Skill-link/internal/handler"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func StartServer(container *configuration.Container) {
	logger := container.Logger
	h := container.Hub

	socketServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", container.Config.Server.SocketPort),
		Handler:      socketHandler(container),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	appServer := createAppServer(container)

	// Channel to listen for errors from servers
	serverErrors := make(chan error, 2)

	go func() {
		logger.Info("socket server starting", zap.String("addr", socketServer.Addr))
		if err := socketServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("socket server error: %w", err)
		}
	}()

	go func() {
		logger.Info("application server starting", zap.String("addr", appServer.Addr))
		if err := appServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("app server error: %w", err)
		}
	}()

	// Listen for shutdown signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or server error
	select {
	case err := <-serverErrors:
		logger.Error("server error", zap.Error(err))
	case sig := <-quit:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("stopping hub and closing websocket subscribers")
	h.Stop()

	if err := socketServer.Shutdown(ctx); err != nil {
		logger.Warn("socket server shutdown error", zap.Error(err))
	}
	if err := appServer.Shutdown(ctx); err != nil {
		logger.Warn("app server shutdown error", zap.Error(err))
	}

	logger.Info("graceful shutdown complete")
}

// socketHandler authorizes the subscriber against the thread before upgrading.
func socketHandler(container *configuration.Container) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/"+container.Config.Server.SocketRoute, func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("userId")
		connectionID := r.URL.Query().Get("connectionId")

		if err := container.Messages.Authorize(r.Context(), connectionID, userID); err != nil {
			http.Error(w, err.Error(), handler.StatusFor(err))
			return
		}

		container.Hub.ServeWS(w, r, userID, connectionID)
	})
	return mux
}

func createAppServer(container *configuration.Container) *http.Server {
	router := NewRouter(container)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", container.Config.Server.AppPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewRouter builds the gin engine with CORS and every API route.
func NewRouter(container *configuration.Container) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     container.Config.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Campus Skill-Link messaging service",
		})
	})

	MessagingRouters(router, container)
	MonitorRouters(router, container)

	return router
}
