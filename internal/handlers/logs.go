package handlers

import (
	"net/http"
	"strconv"
	"time"

	"PMS-FORMS/internal/services"

	"github.com/gin-gonic/gin"
)

type LogsHandler struct {
	logs *services.ActivityLogService
}

func NewLogsHandler(logs *services.ActivityLogService) *LogsHandler {
	return &LogsHandler{logs: logs}
}

// ActivityLogger records every request into the activity log after the
// handler chain completes.
func ActivityLogger(logs *services.ActivityLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logs.LogRequest(c, c.Writer.Status(), time.Since(start))
	}
}

func (h *LogsHandler) List(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	var err error
	var logs any
	var total int64

	if method := c.Query("method"); method != "" {
		logs, total, err = h.logs.GetLogsByMethod(method, limit, offset)
	} else {
		logs, total, err = h.logs.GetAllLogs(limit, offset)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":   logs,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
