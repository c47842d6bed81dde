package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sandeepkv93/daybook/internal/model"
	"github.com/sandeepkv93/daybook/internal/storage"
)

const statusSuccess = "success"

type listResponse struct {
	Status string       `json:"status"`
	Tasks  []model.Task `json:"tasks"`
}

type errorResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func fail(c *gin.Context, code int, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(code, errorResponse{Status: "error", Error: err.Error()})
}

func userID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Query("user_id"))
	if id == "" {
		fail(c, http.StatusBadRequest, errors.New("user_id is required"))
		return "", false
	}
	return id, true
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": s.now().UTC()})
}

func (s *Server) handleListTasks(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	rows, err := s.repo.ListTasks(c.Request.Context(), storage.TaskListFilter{UserID: uid, Limit: limit, Offset: offset})
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	out := make([]model.Task, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Model())
	}
	c.JSON(http.StatusOK, listResponse{Status: statusSuccess, Tasks: out})
}

func (s *Server) handleUpsertTask(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	var in model.Task
	if err := c.ShouldBindJSON(&in); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	in.Priority = in.Priority.Normalize()
	if in.Category == "" {
		in.Category = model.CategoryPersonal
	}
	if in.CreatedAt.IsZero() {
		in.CreatedAt = s.now()
	}
	if err := in.Validate(); err != nil {
		fail(c, http.StatusUnprocessableEntity, err)
		return
	}
	if err := s.repo.UpsertTask(c.Request.Context(), storage.TaskFromModel(uid, in)); err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	s.metrics.tasks.WithLabelValues("upsert").Inc()
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "task": in})
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		return
	}
	err := s.repo.DeleteTask(c.Request.Context(), uid, c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		fail(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err)
		return
	}
	s.metrics.tasks.WithLabelValues("delete").Inc()
	c.JSON(http.StatusOK, gin.H{"status": statusSuccess})
}
