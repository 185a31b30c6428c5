// Package server exposes the task lifecycle and the metrics feed over HTTP.
package server

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/balkashynov/floortrack/internal/categories"
	"github.com/balkashynov/floortrack/internal/metrics"
	"github.com/balkashynov/floortrack/internal/models"
	"github.com/balkashynov/floortrack/internal/notify"
)

// Tasks is the lifecycle surface driven by the API
type Tasks interface {
	AddTask(ctx context.Context, username, mainCategory, subCategory string) (models.TaskRecord, error)
	ListTasks(ctx context.Context, username string) ([]models.TaskRecord, error)
	StopTask(ctx context.Context, username string, id int64) (models.TaskRecord, error)
	CancelTask(ctx context.Context, username string, id int64) (models.TaskRecord, error)
	CompleteTask(ctx context.Context, username string, id int64, quantity int, note string) (models.TaskRecord, error)
	EditTask(ctx context.Context, username string, id int64, quantity int, note string) (models.TaskRecord, error)
	DeleteTask(ctx context.Context, username string, id int64) error
}

// Users lists known workers
type Users interface {
	Users(ctx context.Context) ([]string, error)
}

// Feed is the metrics broadcast the stream endpoint subscribes to
type Feed interface {
	Latest() (metrics.Dataset, bool)
	Subscribe() *notify.Subscription
	Unsubscribe(sub *notify.Subscription)
	Count() int
	Close()
}

// Deps wires the server
type Deps struct {
	Tasks      Tasks
	Users      Users
	Categories *categories.Table
	Feed       Feed
	Logger     *log.Logger
	KeepAlive  time.Duration // interval of stream keep-alive comments
}

// Server is the floortrack HTTP API
type Server struct {
	deps   Deps
	router *gin.Engine
}

// New builds the router. Set gin's mode with gin.SetMode before calling.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = log.New(io.Discard, "", 0)
	}
	if deps.KeepAlive <= 0 {
		deps.KeepAlive = 30 * time.Second
	}

	router := gin.New()
	router.Use(gin.Recovery(), requestID())
	if gin.Mode() != gin.TestMode {
		router.Use(gin.Logger())
	}

	s := &Server{deps: deps, router: router}

	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	{
		api.GET("/categories", s.handleCategories)
		api.GET("/users", s.handleUsers)

		tasks := api.Group("/users/:username/tasks")
		tasks.GET("", s.handleListTasks)
		tasks.POST("", s.handleCreateTask)
		tasks.POST("/:id/stop", s.handleStopTask)
		tasks.POST("/:id/cancel", s.handleCancelTask)
		tasks.POST("/:id/complete", s.handleCompleteTask)
		tasks.PUT("/:id", s.handleEditTask)
		tasks.DELETE("/:id", s.handleDeleteTask)

		api.GET("/metrics", s.handleMetrics)
		api.GET("/metrics/stream", s.handleMetricsStream)
	}

	return s
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully. Open
// metric streams end when the feed closes at shutdown.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(s.deps.Feed.Close)

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.Printf("listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.deps.Logger.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// requestID tags every response with an X-Request-ID
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
