package handler

import (
	"errors"
	"net/http"
	"strconv"

	"user-account-service/internal/adapter/gin/middleware"
	"user-account-service/internal/usecase/user"
	pkgerrors "user-account-service/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserHandler handles HTTP requests for user account operations
type UserHandler struct {
	uc  user.Usecase
	log *zap.Logger
}

// NewUserHandler creates a new UserHandler instance
func NewUserHandler(uc user.Usecase, log *zap.Logger) *UserHandler {
	return &UserHandler{
		uc:  uc,
		log: log,
	}
}

// RegisterRequest represents the HTTP request body for registration
type RegisterRequest struct {
	Username  string `json:"username" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=5,max=20"`
	Firstname string `json:"firstname" binding:"required,min=3,max=10"`
	Lastname  string `json:"lastname" binding:"required,min=3,max=10"`
	Phone     string `json:"phone"`
}

// LoginRequest represents the HTTP request body for login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents the HTTP request body for a partial profile
// update. Absent fields keep their stored values.
type UpdateProfileRequest struct {
	Firstname *string `json:"firstname" binding:"omitempty,min=3,max=10"`
	Lastname  *string `json:"lastname" binding:"omitempty,min=3,max=10"`
	Phone     *string `json:"phone"`
}

// UserResponse represents the HTTP response for user data.
// There is deliberately no password field.
type UserResponse struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Phone     string `json:"phone,omitempty"`
}

// LoginResponse represents the HTTP response for a successful login
type LoginResponse struct {
	User    UserResponse `json:"user"`
	Token   string       `json:"token"`
	Success bool         `json:"success"`
}

// ListUsersResponse represents the HTTP response for listing users
type ListUsersResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination *Pagination    `json:"pagination,omitempty"`
}

// Pagination represents pagination information
type Pagination struct {
	Total      int64 `json:"total"`
	Page       int64 `json:"page"`
	Limit      int64 `json:"limit"`
	TotalPages int64 `json:"total_pages"`
}

// MessageResponse represents a plain success message
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response. Error carries the
// human-readable message, Code the machine-readable kind.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func toUserResponse(u user.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Phone:     u.Phone,
	}
}

// Register handles POST /v1/users
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid register request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "validation_error",
		})
		return
	}

	resp, err := h.uc.Register(c.Request.Context(), user.RegisterRequest{
		Username:  req.Username,
		Password:  req.Password,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Phone:     req.Phone,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp.User))
}

// Login handles POST /v1/users/login
func (h *UserHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid login request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "validation_error",
		})
		return
	}

	resp, err := h.uc.Login(c.Request.Context(), user.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, LoginResponse{
		User:    toUserResponse(resp.User),
		Token:   resp.Token,
		Success: true,
	})
}

// GetProfile handles GET /v1/users/profile.
// The authentication gate has already resolved the user.
func (h *UserHandler) GetProfile(c *gin.Context) {
	u, ok := middleware.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated", Code: "unauthorized"})
		return
	}

	c.JSON(http.StatusOK, UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Phone:     u.Phone,
	})
}

// GetUser handles GET /v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		h.log.Warn("invalid user id", zap.String("id", idStr), zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "user id must be a valid number",
			Code:  "invalid_id",
		})
		return
	}

	resp, err := h.uc.GetUser(c.Request.Context(), user.GetUserRequest{ID: id})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp.User))
}

// UpdateProfile handles PATCH /v1/users/profile.
// The target record is always the authenticated user's own; no id from the
// request body is ever consulted.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	u, ok := middleware.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated", Code: "unauthorized"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("invalid update profile request", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  "validation_error",
		})
		return
	}

	resp, err := h.uc.UpdateProfile(c.Request.Context(), user.UpdateProfileRequest{
		ID:        u.ID,
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Phone:     req.Phone,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, toUserResponse(resp.User))
}

// DeleteProfile handles DELETE /v1/users/profile
func (h *UserHandler) DeleteProfile(c *gin.Context) {
	u, ok := middleware.UserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthenticated", Code: "unauthorized"})
		return
	}

	if _, err := h.uc.DeleteProfile(c.Request.Context(), user.DeleteProfileRequest{ID: u.ID}); err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "user removed successfully"})
}

// ListUsers handles GET /v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	query := c.DefaultQuery("query", "")
	pageStr := c.DefaultQuery("page", "1")
	limitStr := c.DefaultQuery("limit", "10")

	page, err := strconv.ParseInt(pageStr, 10, 64)
	if err != nil || page < 1 {
		page = 1
	}

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	resp, err := h.uc.ListUsers(c.Request.Context(), user.ListUsersRequest{
		Query: query,
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	users := make([]UserResponse, len(resp.Users))
	for i, u := range resp.Users {
		users[i] = toUserResponse(u)
	}

	var pagination *Pagination
	if resp.Pagination != nil {
		pagination = &Pagination{
			Total:      resp.Pagination.Total,
			Page:       resp.Pagination.Page,
			Limit:      resp.Pagination.Limit,
			TotalPages: resp.Pagination.TotalPages,
		}
	}

	c.JSON(http.StatusOK, ListUsersResponse{
		Users:      users,
		Pagination: pagination,
	})
}

// handleError converts usecase errors to HTTP responses. Typed errors carry
// their own status; anything else is an opaque 500.
func (h *UserHandler) handleError(c *gin.Context, err error) {
	var statuser pkgerrors.HTTPStatuser
	if errors.As(err, &statuser) {
		status := statuser.HTTPStatus()
		c.JSON(status, ErrorResponse{
			Error: err.Error(),
			Code:  codeForStatus(status),
		})
		return
	}

	h.log.Error("unclassified handler error", zap.Error(err))
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error: "An internal error occurred",
		Code:  "internal_error",
	})
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "validation_error"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "already_exists"
	default:
		return "internal_error"
	}
}
