// Package api exposes the manager over HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/baiirun/tracker/internal/manager"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// Server is the tracker HTTP server
type Server struct {
	manager *manager.Manager
	router  *gin.Engine
}

// NewServer creates a new server routing requests to m
func NewServer(m *manager.Manager) *Server {
	router := gin.New()
	router.Use(requestID(), gin.Logger(), gin.Recovery())

	s := &Server{
		manager: m,
		router:  router,
	}

	tasks := router.Group("/tasks")
	{
		tasks.GET("", s.handleListTasks)
		tasks.GET("/:id", s.handleGetTask)
		tasks.POST("", s.handleSaveTask)
		tasks.DELETE("/:id", s.handleDeleteTask)
		tasks.DELETE("", s.handleDeleteAllTasks)
	}

	subtasks := router.Group("/subtasks")
	{
		subtasks.GET("", s.handleListSubtasks)
		subtasks.GET("/:id", s.handleGetSubtask)
		subtasks.POST("", s.handleSaveSubtask)
		subtasks.DELETE("/:id", s.handleDeleteSubtask)
		subtasks.DELETE("", s.handleDeleteAllSubtasks)
	}

	epics := router.Group("/epics")
	{
		epics.GET("", s.handleListEpics)
		epics.GET("/:id", s.handleGetEpic)
		epics.GET("/:id/subtasks", s.handleEpicSubtasks)
		epics.POST("", s.handleSaveEpic)
		epics.DELETE("/:id", s.handleDeleteEpic)
		epics.DELETE("", s.handleDeleteAllEpics)
	}

	router.GET("/history", s.handleHistory)
	router.GET("/prioritized", s.handlePrioritized)

	return s
}

// Handler returns the server's HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully,
// waiting up to shutdownTimeout for in-flight requests.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[serve] listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	log.Printf("[serve] shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// requestID tags each request with an id, reusing the caller's when given.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func pathID(c *gin.Context, tag string) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		badRequest(c, tag, fmt.Errorf("invalid id %q", c.Param("id")))
		return 0, false
	}
	return id, true
}
