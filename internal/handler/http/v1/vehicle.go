package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// @Summary Register a vehicle
// @Description Add a vehicle to the fleet. Admin or supervisor only.
// @Tags Vehicles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param vehicle body CreateVehicleRequest true "Vehicle creation request"
// @Success 201 {object} DataResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 409 {object} ErrorResponse "Plate already registered"
// @Router /vehicles [post]
func (h *Handler) createVehicle(c *gin.Context) {
	log := h.logger.WithField("method", "createVehicle")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	var input CreateVehicleRequest
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

	created, err := h.vehicleService.Create(c.Request.Context(), principal, DTOToVehicleModel(input))
	if err != nil {
		respondError(c, log, err)
		return
	}
	respondData(c, http.StatusCreated, created, "vehicle created")
}

// @Summary List vehicles
// @Tags Vehicles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} ListResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /vehicles [get]
func (h *Handler) listVehicles(c *gin.Context) {
	log := h.logger.WithField("method", "listVehicles")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	vehicles, total, err := h.vehicleService.List(c.Request.Context(), principal, page, limit)
	if err != nil {
		respondError(c, log, err)
		return
	}
	respondList(c, vehicles, newPagination(page, limit, total))
}

// @Summary Get vehicle by ID
// @Tags Vehicles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse "Invalid vehicle ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 404 {object} ErrorResponse "Vehicle not found"
// @Router /vehicles/{id} [get]
func (h *Handler) getVehicle(c *gin.Context) {
	log := h.logger.WithField("method", "getVehicle")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid vehicle ID")
		return
	}

	vehicle, err := h.vehicleService.GetByID(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, log.WithField("id", id), err)
		return
	}
	respondData(c, http.StatusOK, vehicle, "")
}

// @Summary Update a vehicle
// @Description Partial update. Admin or supervisor only.
// @Tags Vehicles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Param vehicle body UpdateVehicleRequest true "Vehicle update request"
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse "Invalid vehicle ID or request body"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Vehicle not found"
// @Failure 409 {object} ErrorResponse "Plate already registered"
// @Router /vehicles/{id} [put]
func (h *Handler) updateVehicle(c *gin.Context) {
	log := h.logger.WithField("method", "updateVehicle")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid vehicle ID")
		return
	}
	log = log.WithField("id", id)

	var input UpdateVehicleRequest
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

	vehicle, err := h.vehicleService.Update(c.Request.Context(), principal, id, DTOToVehicleUpdate(input))
	if err != nil {
		respondError(c, log, err)
		return
	}
	respondData(c, http.StatusOK, vehicle, "vehicle updated")
}

// @Summary Delete a vehicle
// @Description Remove a vehicle from the fleet. Admin or supervisor only.
// @Tags Vehicles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Vehicle ID"
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse "Invalid vehicle ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "Vehicle not found"
// @Router /vehicles/{id} [delete]
func (h *Handler) deleteVehicle(c *gin.Context) {
	log := h.logger.WithField("method", "deleteVehicle")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid vehicle ID")
		return
	}

	if err := h.vehicleService.Delete(c.Request.Context(), principal, id); err != nil {
		respondError(c, log.WithField("id", id), err)
		return
	}
	respondData(c, http.StatusOK, nil, "vehicle deleted")
}
