package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/chalodk/lims-sub002/internal/logger"
	"github.com/chalodk/lims-sub002/internal/services"
	"github.com/chalodk/lims-sub002/internal/types"
)

type AuthHandler struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthHandler(log *logger.Logger, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		log:         log.With("handler", "AuthHandler"),
		authService: authService,
	}
}

// POST /register
func (h *AuthHandler) Register(c *gin.Context) {
	var body struct {
		Name      string    `json:"name"`
		Email     string    `json:"email"`
		Password  string    `json:"password"`
		CompanyID uuid.UUID `json:"company_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	user := &types.User{
		Name:      body.Name,
		Email:     body.Email,
		Password:  body.Password,
		CompanyID: body.CompanyID,
	}
	if err := h.authService.RegisterUser(c.Request.Context(), user); err != nil {
		RespondFromError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": user.ID})
}

// POST /login
func (h *AuthHandler) Login(c *gin.Context) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		RespondError(c, http.StatusBadRequest, "bad_request", err)
		return
	}

	token, err := h.authService.LoginUser(c.Request.Context(), body.Email, body.Password)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	RespondOK(c, gin.H{"access_token": token})
}
