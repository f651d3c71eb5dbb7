package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shenikar/occurrence_reporting_system/internal/service"
	"github.com/sirupsen/logrus"
)

// PaginationMeta describes one page of a list response.
type PaginationMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ListResponse is the envelope for list endpoints.
type ListResponse struct {
	Success    bool           `json:"success"`
	Data       any            `json:"data"`
	Pagination PaginationMeta `json:"pagination"`
}

// DataResponse is the envelope for single-object and mutation endpoints.
type DataResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse is the envelope for failures.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func newPagination(page, limit, total int) PaginationMeta {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return PaginationMeta{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

func respondList(c *gin.Context, data any, meta PaginationMeta) {
	c.JSON(http.StatusOK, ListResponse{Success: true, Data: data, Pagination: meta})
}

func respondData(c *gin.Context, status int, data any, message string) {
	c.JSON(status, DataResponse{Success: true, Data: data, Message: message})
}

// respondError maps a service error kind onto an HTTP status. Storage
// failures and unclassified errors come back as a generic 500 so internals
// never leak to clients.
func respondError(c *gin.Context, log *logrus.Entry, err error) {
	var status int
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrInvariantViolation):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrPermissionDenied):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrConflict):
		status = http.StatusConflict
	default:
		log.WithError(err).Error("Request failed with internal error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Message: "internal server error"})
		return
	}

	log.WithError(err).Warn("Request rejected")
	c.JSON(status, ErrorResponse{Message: err.Error()})
}

func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Message: message})
}
