package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "gulmohar/billing/internal/errors"
	"gulmohar/billing/internal/services"
)

// RestAuthHandler handles staff login, profile and registration.
type RestAuthHandler struct {
	userService services.IUserService
}

func NewRestAuthHandler(userService services.IUserService) *RestAuthHandler {
	return &RestAuthHandler{userService: userService}
}

// LoginRequest is the POST /api/auth/login body.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login
func (h *RestAuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, ierr.WithError(err).
			WithHint("Invalid request body").
			Mark(ierr.ErrValidation))
		return
	}
	if req.Username == "" || req.Password == "" {
		respondError(c, ierr.NewError("missing credentials").
			WithHint("Please provide username and password").
			Mark(ierr.ErrValidation))
		return
	}

	res, err := h.userService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Profile handles GET /api/auth/profile
func (h *RestAuthHandler) Profile(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	user, err := h.userService.FindByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Register handles POST /api/auth/register (admin only)
func (h *RestAuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, ierr.WithError(err).
			WithHint("Invalid request body").
			Mark(ierr.ErrValidation))
		return
	}
	user, err := h.userService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}
