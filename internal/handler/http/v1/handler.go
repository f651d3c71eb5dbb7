package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shenikar/occurrence_reporting_system/internal/auth"
	"github.com/shenikar/occurrence_reporting_system/internal/service"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	occurrenceService service.OccurrenceService
	userService       service.UserService
	vehicleService    service.VehicleService
	auditService      service.AuditService
	statsService      service.StatisticsService
	tokens            *auth.TokenManager
	logger            *logrus.Logger
	validate          *validator.Validate
}

func NewHandler(
	occurrenceService service.OccurrenceService,
	userService service.UserService,
	vehicleService service.VehicleService,
	auditService service.AuditService,
	statsService service.StatisticsService,
	tokens *auth.TokenManager,
	logger *logrus.Logger,
) *Handler {
	return &Handler{
		occurrenceService: occurrenceService,
		userService:       userService,
		vehicleService:    vehicleService,
		auditService:      auditService,
		statsService:      statsService,
		tokens:            tokens,
		logger:            logger,
		validate:          validator.New(),
	}
}

// @Summary Get application health status
// @Description Get health status of the application
// @Tags System
// @Accept json
// @Produce json
// @Success 200 {object} map[string]string "Status OK"
// @Router /system/health [get]
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
