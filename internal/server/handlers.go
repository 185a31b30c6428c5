package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/balkashynov/floortrack/internal/lifecycle"
)

type createTaskRequest struct {
	MainCategory string `json:"mainCategory"`
	SubCategory  string `json:"subCategory"`
}

type quantityRequest struct {
	Quantity quantity `json:"quantity"`
	Note     string   `json:"note"`
}

// quantity accepts 5 and "5"; form inputs often send strings
type quantity int

func (q *quantity) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "" || s == "null" {
		*q = 0
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		f, ferr := strconv.ParseFloat(s, 64)
		if ferr != nil || f != float64(int(f)) {
			return fmt.Errorf("quantity must be a whole number, got %s", string(data))
		}
		n = int(f)
	}
	*q = quantity(n)
	return nil
}

// statusFor maps lifecycle errors onto HTTP statuses
func statusFor(err error) int {
	var verr *lifecycle.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, lifecycle.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, lifecycle.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.deps.Logger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func taskID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task id"})
		return 0, false
	}
	return id, true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"subscribers": s.deps.Feed.Count(),
	})
}

func (s *Server) handleCategories(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Categories)
}

func (s *Server) handleUsers(c *gin.Context) {
	users, err := s.deps.Users.Users(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) handleListTasks(c *gin.Context) {
	records, err := s.deps.Tasks.ListTasks(c.Request.Context(), c.Param("username"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := s.deps.Tasks.AddTask(c.Request.Context(), c.Param("username"), req.MainCategory, req.SubCategory)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func (s *Server) handleStopTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	rec, err := s.deps.Tasks.StopTask(c.Request.Context(), c.Param("username"), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleCancelTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	rec, err := s.deps.Tasks.CancelTask(c.Request.Context(), c.Param("username"), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := s.deps.Tasks.CompleteTask(c.Request.Context(), c.Param("username"), id, int(req.Quantity), req.Note)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task completed", "task": rec})
}

func (s *Server) handleEditTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rec, err := s.deps.Tasks.EditTask(c.Request.Context(), c.Param("username"), id, int(req.Quantity), req.Note)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task updated", "task": rec})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := taskID(c)
	if !ok {
		return
	}
	if err := s.deps.Tasks.DeleteTask(c.Request.Context(), c.Param("username"), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}

func (s *Server) handleMetrics(c *gin.Context) {
	ds, ok := s.deps.Feed.Latest()
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, ds)
}

// handleMetricsStream sends "data-updated" with the full dataset and
// "graph-data" with the per-category unit charts on join and after every
// recompute
func (s *Server) handleMetricsStream(c *gin.Context) {
	sub := s.deps.Feed.Subscribe()
	defer s.deps.Feed.Unsubscribe(sub)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	keepAlive := time.NewTicker(s.deps.KeepAlive)
	defer keepAlive.Stop()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case ds, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("data-updated", ds)
			c.SSEvent("graph-data", ds.UnitCharts)
			return true
		case <-keepAlive.C:
			_, _ = io.WriteString(w, ": keep-alive\n\n")
			return true
		}
	})
}
