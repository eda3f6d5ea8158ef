package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"cards-app/backend/middleware"
	"cards-app/backend/models"
	"cards-app/backend/respond"

	"gorm.io/gorm"
)

type LogsResponse struct {
	Logs    []models.LogEntry `json:"logs"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

// GetLogs pages through persisted log records for admins. Supports level,
// source and free-text search filters.
func (h *Handler) GetLogs(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(query.Get("per_page"))
	if perPage < 1 || perPage > 100 {
		perPage = 50
	}

	q := h.Store.DB().WithContext(r.Context()).Model(&models.LogEntry{})
	if level := query.Get("level"); level != "" {
		q = q.Where("level = ?", level)
	}
	if source := query.Get("source"); source != "" {
		q = q.Where("source = ?", source)
	}
	if search := query.Get("search"); search != "" {
		q = q.Where("message LIKE ? OR data LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	// new session so Count and Find each start from the filtered statement
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		h.logsFailed(w, r, err)
		return
	}

	logs := []models.LogEntry{}
	err := q.Order("created_at DESC").Order("id DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&logs).Error
	if err != nil {
		h.logsFailed(w, r, err)
		return
	}

	respond.JSON(w, http.StatusOK, LogsResponse{Logs: logs, Total: total, Page: page, PerPage: perPage})
}

func (h *Handler) GetLogSources(w http.ResponseWriter, r *http.Request) {
	if !h.requireAdmin(w, r) {
		return
	}

	sources := []string{}
	err := h.Store.DB().WithContext(r.Context()).Model(&models.LogEntry{}).
		Distinct("source").Where("source != ''").Order("source").
		Pluck("source", &sources).Error
	if err != nil {
		h.logsFailed(w, r, err)
		return
	}
	respond.JSON(w, http.StatusOK, sources)
}

func (h *Handler) logsFailed(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("query logs failed", "source", "logs", "error", err.Error(), "request_id", middleware.RequestID(r.Context()))
	respond.Error(w, http.StatusInternalServerError, "Internal server error")
}
