package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/metalprofile/corporate-site/internal/core/domain"
	"github.com/metalprofile/corporate-site/internal/core/ports"
)

const maxAuditLimit = 500

// AdminHandler serves the admin dashboard data.
type AdminHandler struct {
	audit ports.AuditService
	stats ports.StatsService
}

func NewAdminHandler(audit ports.AuditService, stats ports.StatsService) *AdminHandler {
	return &AdminHandler{audit: audit, stats: stats}
}

// AuditLog handles GET /v1/admin/audit.
//
// @Summary      List audit log entries
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        action   query     string  false  "Filter by action tag (e.g. LOGIN)"
// @Param        user_id  query     string  false  "Filter by actor id"
// @Param        limit    query     int     false  "Maximum number of entries (max 500)"
// @Success      200      {object}  auditListResponse
// @Failure      400      {object}  errorResponse
// @Failure      403      {object}  errorResponse
// @Router       /v1/admin/audit [get]
func (h *AdminHandler) AuditLog(c echo.Context) error {
	filter := ports.AuditFilter{
		Action: domain.AuditAction(c.QueryParam("action")),
		UserID: c.QueryParam("user_id"),
	}
	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
		}
		filter.Limit = min(limit, maxAuditLimit)
	}

	entries, err := h.audit.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []domain.AuditLogEntry{}
	}
	return c.JSON(http.StatusOK, auditListResponse{Items: entries, Total: len(entries)})
}

// Stats handles GET /v1/admin/stats.
//
// @Summary      Site analytics snapshot
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.SiteStats
// @Failure      403  {object}  errorResponse
// @Router       /v1/admin/stats [get]
func (h *AdminHandler) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.stats.Snapshot(c.Request().Context()))
}
