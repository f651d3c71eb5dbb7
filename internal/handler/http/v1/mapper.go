package v1

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shenikar/occurrence_reporting_system/internal/models"
)

const dateOnlyFormat = "2006-01-02"

// DTOToOccurrenceModel assembles a domain occurrence from a create request.
func DTOToOccurrenceModel(dto CreateOccurrenceRequest) (*models.Occurrence, error) {
	occ := &models.Occurrence{
		Type:           models.OccurrenceType(dto.Type),
		Status:         models.OccurrenceStatus(dto.Status),
		Municipality:   dto.Municipality,
		Neighborhood:   dto.Neighborhood,
		Address:        dto.Address,
		Latitude:       dto.Latitude,
		Longitude:      dto.Longitude,
		OccurrenceDate: dto.OccurrenceDate,
		ActivationDate: dto.ActivationDate,
		VictimName:     dto.VictimName,
		VictimContact:  dto.VictimContact,
		Description:    dto.Description,
	}
	if dto.VehicleID != "" {
		id, err := uuid.Parse(dto.VehicleID)
		if err != nil {
			return nil, fmt.Errorf("invalid vehicle_id: %w", err)
		}
		occ.VehicleID = &id
	}
	return occ, nil
}

// DTOToOccurrenceUpdate assembles a partial update from an update request.
func DTOToOccurrenceUpdate(dto UpdateOccurrenceRequest) (models.OccurrenceUpdate, error) {
	update := models.OccurrenceUpdate{
		Municipality:   dto.Municipality,
		Neighborhood:   dto.Neighborhood,
		Address:        dto.Address,
		Latitude:       dto.Latitude,
		Longitude:      dto.Longitude,
		OccurrenceDate: dto.OccurrenceDate,
		ActivationDate: dto.ActivationDate,
		VictimName:     dto.VictimName,
		VictimContact:  dto.VictimContact,
		Description:    dto.Description,
	}
	if dto.Type != nil {
		t := models.OccurrenceType(*dto.Type)
		update.Type = &t
	}
	if dto.Status != nil {
		s := models.OccurrenceStatus(*dto.Status)
		update.Status = &s
	}
	if dto.VehicleID != nil {
		id, err := uuid.Parse(*dto.VehicleID)
		if err != nil {
			return models.OccurrenceUpdate{}, fmt.Errorf("invalid vehicle_id: %w", err)
		}
		update.VehicleID = &id
	}
	return update, nil
}

// DTOToUserModel assembles a domain user from a create request. The
// plaintext password is returned separately, it never sits on the model.
func DTOToUserModel(dto CreateUserRequest) (*models.User, string) {
	return &models.User{
		Name:         dto.Name,
		Email:        dto.Email,
		Role:         models.Role(dto.Role),
		Registration: dto.Registration,
		Unit:         dto.Unit,
	}, dto.Password
}

// DTOToUserUpdate assembles a partial user update from an update request.
func DTOToUserUpdate(dto UpdateUserRequest) models.UserUpdate {
	update := models.UserUpdate{
		Name:         dto.Name,
		Email:        dto.Email,
		Password:     dto.Password,
		Registration: dto.Registration,
		Unit:         dto.Unit,
	}
	if dto.Role != nil {
		r := models.Role(*dto.Role)
		update.Role = &r
	}
	return update
}

// DTOToVehicleModel assembles a domain vehicle from a create request.
// Vehicles default to active unless the request says otherwise.
func DTOToVehicleModel(dto CreateVehicleRequest) *models.Vehicle {
	active := true
	if dto.Active != nil {
		active = *dto.Active
	}
	return &models.Vehicle{Plate: dto.Plate, Name: dto.Name, Active: active}
}

// DTOToVehicleUpdate assembles a partial vehicle update from an update request.
func DTOToVehicleUpdate(dto UpdateVehicleRequest) models.VehicleUpdate {
	return models.VehicleUpdate{Plate: dto.Plate, Name: dto.Name, Active: dto.Active}
}

// occurrenceFilterFromQuery parses the listing filter from query parameters.
// Date parameters accept RFC3339 or a bare date; a bare end date is widened
// to the end of that day so endDate=2024-01-16 includes the 16th.
func occurrenceFilterFromQuery(c *gin.Context) (models.OccurrenceFilter, error) {
	filter := models.OccurrenceFilter{
		Municipality: c.Query("municipality"),
		Neighborhood: c.Query("neighborhood"),
		Search:       c.Query("search"),
	}

	if v := c.Query("type"); v != "" {
		t := models.OccurrenceType(v)
		filter.Type = &t
	}
	if v := c.Query("status"); v != "" {
		s := models.OccurrenceStatus(v)
		filter.Status = &s
	}

	start, err := parseDateParam(c.Query("startDate"), false)
	if err != nil {
		return filter, fmt.Errorf("invalid startDate: %w", err)
	}
	filter.StartDate = start

	end, err := parseDateParam(c.Query("endDate"), true)
	if err != nil {
		return filter, fmt.Errorf("invalid endDate: %w", err)
	}
	filter.EndDate = end

	filter.Page, filter.Limit, err = paginationFromQuery(c)
	if err != nil {
		return filter, err
	}
	return filter, nil
}

// auditFilterFromQuery parses the audit log filter from query parameters.
func auditFilterFromQuery(c *gin.Context) (models.AuditFilter, error) {
	filter := models.AuditFilter{}

	if v := c.Query("action"); v != "" {
		a := models.AuditAction(v)
		filter.Action = &a
	}
	if v := c.Query("entity"); v != "" {
		e := models.AuditEntity(v)
		filter.Entity = &e
	}
	if v := c.Query("entityId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("invalid entityId: %w", err)
		}
		filter.EntityID = &id
	}
	if v := c.Query("userId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, fmt.Errorf("invalid userId: %w", err)
		}
		filter.UserID = &id
	}

	start, err := parseDateParam(c.Query("startDate"), false)
	if err != nil {
		return filter, fmt.Errorf("invalid startDate: %w", err)
	}
	filter.StartDate = start

	end, err := parseDateParam(c.Query("endDate"), true)
	if err != nil {
		return filter, fmt.Errorf("invalid endDate: %w", err)
	}
	filter.EndDate = end

	filter.Page, filter.Limit, err = paginationFromQuery(c)
	if err != nil {
		return filter, err
	}
	return filter, nil
}

func paginationFromQuery(c *gin.Context) (page, limit int, err error) {
	page, err = strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid page: %w", err)
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid limit: %w", err)
	}
	return page, limit, nil
}

// yearFromQuery reads the dashboard year, defaulting to the current year.
func yearFromQuery(c *gin.Context) (int, error) {
	value := c.Query("year")
	if value == "" {
		return time.Now().Year(), nil
	}
	year, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid year: %w", err)
	}
	return year, nil
}

func parseDateParam(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(dateOnlyFormat, value)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
