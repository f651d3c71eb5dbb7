package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// @Summary Log in
// @Description Exchange email and password for a bearer token.
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse "Invalid request body"
// @Failure 403 {object} ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	log := h.logger.WithField("method", "login")

	var input LoginRequest
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

	token, user, err := h.userService.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, log, err)
		return
	}
	respondData(c, http.StatusOK, LoginResponse{Token: token, User: user}, "logged in")
}

// @Summary Log out
// @Description Record the logout in the audit trail. Tokens are stateless.
// @Tags Auth
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} DataResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Router /auth/logout [post]
func (h *Handler) logout(c *gin.Context) {
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	h.userService.Logout(c.Request.Context(), principal)
	respondData(c, http.StatusOK, nil, "logged out")
}

// @Summary Create a user account
// @Description Register a new account. Admin only.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param user body CreateUserRequest true "User creation request"
// @Success 201 {object} DataResponse
// @Failure 400 {object} ErrorResponse "Invalid request body or validation error"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Router /users [post]
func (h *Handler) createUser(c *gin.Context) {
	log := h.logger.WithField("method", "createUser")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	var input CreateUserRequest
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

	model, password := DTOToUserModel(input)
	created, err := h.userService.Create(c.Request.Context(), principal, model, password)
	if err != nil {
		respondError(c, log, err)
		return
	}
	respondData(c, http.StatusCreated, created, "user created")
}

// @Summary List user accounts
// @Description Paginated account listing. Admin only.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page" default(20)
// @Success 200 {object} ListResponse
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Router /users [get]
func (h *Handler) listUsers(c *gin.Context) {
	log := h.logger.WithField("method", "listUsers")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, total, err := h.userService.List(c.Request.Context(), principal, page, limit)
	if err != nil {
		respondError(c, log, err)
		return
	}
	respondList(c, users, newPagination(page, limit, total))
}

// @Summary Get user by ID
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse "Invalid user ID"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /users/{id} [get]
func (h *Handler) getUser(c *gin.Context) {
	log := h.logger.WithField("method", "getUser")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid user ID")
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), principal, id)
	if err != nil {
		respondError(c, log.WithField("id", id), err)
		return
	}
	respondData(c, http.StatusOK, user, "")
}

// @Summary Update a user account
// @Description Partial update. Users may edit themselves; role changes are admin only.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Param user body UpdateUserRequest true "User update request"
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse "Invalid user ID or request body"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "User not found"
// @Failure 409 {object} ErrorResponse "Email already registered"
// @Router /users/{id} [put]
func (h *Handler) updateUser(c *gin.Context) {
	log := h.logger.WithField("method", "updateUser")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid user ID")
		return
	}
	log = log.WithField("id", id)

	var input UpdateUserRequest
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

	user, err := h.userService.Update(c.Request.Context(), principal, id, DTOToUserUpdate(input))
	if err != nil {
		respondError(c, log, err)
		return
	}
	respondData(c, http.StatusOK, user, "user updated")
}

// @Summary Delete a user account
// @Description Remove an account. Admin only; self-deletion and deleting the last admin are rejected.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} DataResponse
// @Failure 400 {object} ErrorResponse "Invalid user ID or invariant violation"
// @Failure 401 {object} ErrorResponse "Unauthorized"
// @Failure 403 {object} ErrorResponse "Forbidden"
// @Failure 404 {object} ErrorResponse "User not found"
// @Router /users/{id} [delete]
func (h *Handler) deleteUser(c *gin.Context) {
	log := h.logger.WithField("method", "deleteUser")
	principal, ok := principalFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Message: "authentication required"})
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid user ID")
		return
	}

	if err := h.userService.Delete(c.Request.Context(), principal, id); err != nil {
		respondError(c, log.WithField("id", id), err)
		return
	}
	respondData(c, http.StatusOK, nil, "user deleted")
}
