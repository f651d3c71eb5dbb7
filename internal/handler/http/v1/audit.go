package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// @Summary List audit log entries
// @Description Filtered audit trail, newest first. Admin and supervisor see all actors; everyone else only themselves.
// @Tags Audit
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param action query string false "Audit action"
// @Param entity query string false "Audited entity kind"
// @Param entityId query string false "Audited entity ID"
// @Param userId query string false "Actor ID"
// @Param startDate query string false "Start date (YYYY-MM-DD or RFC3339)"
// @Param endDate query string false "End date (YYYY-MM-DD or RFC3339)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} ListResponse
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /audit/logs [get]
func (h *Handler) listAuditLogs(c *gin.Context) {
	log := h.logger.WithField("method", "listAuditLogs")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	filter, err := auditFilterFromQuery(c)
	if err != nil {
		log.WithError(err).Warn("Invalid filter parameters")
		respondBadRequest(c, err.Error())
		return
	}

	entries, total, err := h.auditService.List(c.Request.Context(), principal, filter)
	if err != nil {
		respondError(c, log, err)
		return
	}
	respondList(c, entries, newPagination(filter.Page, filter.Limit, total))
}

// @Summary Get a user's activity
// @Description Audit entries of one actor. Callers always see themselves; other targets require admin or supervisor.
// @Tags Audit
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path string false "Target user ID (defaults to the caller)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} ListResponse
// @Failure 400 {object} ErrorResponse "Invalid user ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /audit/user-activity/{userId} [get]
func (h *Handler) userActivity(c *gin.Context) {
	log := h.logger.WithField("method", "userActivity")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	target := principal.ID
	if raw := c.Param("userId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			respondBadRequest(c, "invalid user ID")
			return
		}
		target = id
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, total, err := h.auditService.UserActivity(c.Request.Context(), principal, target, page, limit)
	if err != nil {
		respondError(c, log.WithField("target", target), err)
		return
	}
	respondList(c, entries, newPagination(page, limit, total))
}

// @Summary System activity summary
// @Description Total action count, per-action breakdown and top-10 most active users over a trailing window. Admin or supervisor only.
// @Tags Audit
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param days query int false "Window size in days" default(7)
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse "Invalid window"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /audit/system-activity [get]
func (h *Handler) systemActivity(c *gin.Context) {
	log := h.logger.WithField("method", "systemActivity")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil {
		respondBadRequest(c, "invalid days")
		return
	}

	activity, err := h.auditService.SystemActivity(c.Request.Context(), principal, days)
	if err != nil {
		respondError(c, log, err)
		return
	}
	respondData(c, http.StatusOK, activity, "")
}
