package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/occurrence_reporting_system/internal/models"
)

// @Summary Create a new occurrence
// @Description Register a new safety occurrence on behalf of the authenticated user.
// @Tags Occurrences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param occurrence body CreateOccurrenceRequest true "Occurrence creation request"
// @Success 201 {object} DataResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /occurrences [post]
func (h *Handler) createOccurrence(c *gin.Context) {
	log := h.logger.WithField("method", "createOccurrence")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	var input CreateOccurrenceRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		respondBadRequest(c, "invalid request body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		respondBadRequest(c, err.Error())
		return
	}

	model, err := DTOToOccurrenceModel(input)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	created, err := h.occurrenceService.Create(c.Request.Context(), principal, model)
	if err != nil {
		respondError(c, log, err)
		return
	}
	respondData(c, http.StatusCreated, created, "occurrence created")
}

// @Summary List occurrences
// @Description Paginated, filtered occurrence listing. Non-privileged roles only see their own records.
// @Tags Occurrences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param type query string false "Occurrence type"
// @Param status query string false "Occurrence status"
// @Param municipality query string false "Municipality substring"
// @Param neighborhood query string false "Neighborhood substring"
// @Param search query string false "Free-text search over address, description, victim name"
// @Param startDate query string false "Start date (YYYY-MM-DD or RFC3339)"
// @Param endDate query string false "End date (YYYY-MM-DD or RFC3339)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} ListResponse
// @Failure 400 {object} ErrorResponse "Invalid filter"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /occurrences [get]
func (h *Handler) listOccurrences(c *gin.Context) {
	log := h.logger.WithField("method", "listOccurrences")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	filter, err := occurrenceFilterFromQuery(c)
	if err != nil {
		log.WithError(err).Warn("Invalid filter parameters")
		respondBadRequest(c, err.Error())
		return
	}

	list, err := h.occurrenceService.List(c.Request.Context(), principal, filter)
	if err != nil {
		respondError(c, log, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"data":         list.Items,
		"statusCounts": list.StatusCounts,
		"pagination":   newPagination(list.Page, list.Limit, list.Total),
	})
}

// @Summary Occurrence statistics dashboard
// @Description Status/type breakdowns, top municipalities and a monthly time series for a year.
// @Tags Occurrences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year for the monthly series (defaults to current year)"
// @Success 200 {object} DataResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /occurrences/statistics [get]
func (h *Handler) occurrenceStatistics(c *gin.Context) {
	log := h.logger.WithField("method", "occurrenceStatistics")
	if _, ok := principalFromContext(c); !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	year, err := yearFromQuery(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	stats, err := h.statsService.OccurrenceStatistics(c.Request.Context(), year)
	if err != nil {
		respondError(c, log, err)
		return
	}
	respondData(c, http.StatusOK, stats, "")
}

// @Summary Export occurrences
// @Description Full filtered export without pagination. The download is recorded in the audit trail.
// @Tags Occurrences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DataResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 500 {object} ErrorResponse "Internal server error"
// @Router /occurrences/export [get]
func (h *Handler) exportOccurrences(c *gin.Context) {
	log := h.logger.WithField("method", "exportOccurrences")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	filter, err := occurrenceFilterFromQuery(c)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	items, err := h.occurrenceService.Export(c.Request.Context(), principal, filter)
	if err != nil {
		respondError(c, log, err)
		return
	}
	respondData(c, http.StatusOK, items, "")
}

// @Summary Get occurrence by ID
// @Tags Occurrences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Occurrence ID"
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse "Invalid occurrence ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Occurrence not found"
// @Router /occurrences/{id} [get]
func (h *Handler) getOccurrence(c *gin.Context) {
	log := h.logger.WithField("method", "getOccurrence")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid occurrence ID")
		return
	}

	occ, err := h.occurrenceService.GetByID(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, log.WithField("id", id), err)
		return
	}
	respondData(c, http.StatusOK, occ, "")
}

// @Summary Update an occurrence
// @Description Partial update. Owner or admin/supervisor. Tracked field changes are audited.
// @Tags Occurrences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Occurrence ID"
// @Param occurrence body UpdateOccurrenceRequest true "Occurrence update request"
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse "Invalid occurrence ID or request body"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Occurrence not found"
// @Router /occurrences/{id} [put]
func (h *Handler) updateOccurrence(c *gin.Context) {
	log := h.logger.WithField("method", "updateOccurrence")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid occurrence ID")
		return
	}
	log = log.WithField("id", id)

	var input UpdateOccurrenceRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		respondBadRequest(c, "invalid request body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		respondBadRequest(c, err.Error())
		return
	}

	update, err := DTOToOccurrenceUpdate(input)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	occ, err := h.occurrenceService.Update(c.Request.Context(), principal, id, update)
	if err != nil {
		respondError(c, log, err)
		return
	}
	respondData(c, http.StatusOK, occ, "occurrence updated")
}

// @Summary Change occurrence status
// @Description Transition an occurrence to a new status with an optional reason. Any status may move to any other.
// @Tags Occurrences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Occurrence ID"
// @Param transition body ChangeStatusRequest true "Status change request"
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse "Invalid occurrence ID or request body"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Occurrence not found"
// @Router /occurrences/{id}/status [patch]
func (h *Handler) changeOccurrenceStatus(c *gin.Context) {
	log := h.logger.WithField("method", "changeOccurrenceStatus")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid occurrence ID")
		return
	}
	log = log.WithField("id", id)

	var input ChangeStatusRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		log.WithError(err).Warn("Failed to bind JSON")
		respondBadRequest(c, "invalid request body")
		return
	}
	if err := h.validate.Struct(input); err != nil {
		log.WithError(err).Warn("Validation failed")
		respondBadRequest(c, err.Error())
		return
	}

	occ, err := h.occurrenceService.ChangeStatus(c.Request.Context(), principal, id, models.OccurrenceStatus(input.Status), input.Reason)
	if err != nil {
		respondError(c, log, err)
		return
	}
	respondData(c, http.StatusOK, occ, "status updated")
}

// @Summary Delete an occurrence
// @Description Remove an occurrence. Admin or supervisor only.
// @Tags Occurrences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Occurrence ID"
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse "Invalid occurrence ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Occurrence not found"
// @Router /occurrences/{id} [delete]
func (h *Handler) deleteOccurrence(c *gin.Context) {
	log := h.logger.WithField("method", "deleteOccurrence")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid occurrence ID")
		return
	}

	if err := h.occurrenceService.Delete(c.Request.Context(), principal, id); err != nil {
		respondError(c, log.WithField("id", id), err)
		return
	}
	respondData(c, http.StatusOK, nil, "occurrence deleted")
}
