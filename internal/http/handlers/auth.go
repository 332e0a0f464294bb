package handlers

import (
	"errors"
	"net/http"

	"orderdesk/internal/domain"
	"orderdesk/internal/http/middleware"
	"orderdesk/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	Auth   services.AuthService
	Cookie CookieConfig
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/users/register
func (h AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !BindJSONOrError(c, &req) {
		return
	}
	u, token, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err, "Error creating user")
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"token":   token,
		"user":    u.ToAuth(),
	})
}

// POST /api/users/auth/sign-up
func (h AuthHandler) SignUp(c *gin.Context) {
	var req services.RegisterInput
	if !BindJSONOrError(c, &req) {
		return
	}
	_, token, err := h.Auth.Register(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err, "Error creating user")
		return
	}
	h.Cookie.set(c, token)
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// POST /api/users/login
func (h AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	u, token, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrBadCredentials) {
			RespondError(c, http.StatusUnauthorized, "Invalid credentials", nil)
			return
		}
		RespondDomainError(c, err, "Error logging in")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"token":   token,
		"user":    u.ToAuth(),
	})
}

// POST /api/users/auth/sign-in
//
// Errors are keyed by field for the admin frontend's form.
func (h AuthHandler) SignIn(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{"general": "Invalid payload"}})
		return
	}
	u, token, err := h.Auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		var ce services.CredentialError
		switch {
		case errors.As(err, &ce):
			c.JSON(http.StatusUnauthorized, gin.H{"errors": gin.H{ce.Field: "Invalid credentials"}})
		case domain.IsForbidden(err):
			c.JSON(http.StatusForbidden, gin.H{"errors": gin.H{"general": err.Error()}})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"errors": gin.H{"general": "Error logging in"}})
		}
		return
	}
	h.Cookie.set(c, token)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   token,
		"user":    u.ToAuth(),
	})
}

// POST /api/users/auth/sign-out
func (h AuthHandler) SignOut(c *gin.Context) {
	h.Cookie.clear(c)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GET /api/users/me
func (h AuthHandler) Me(c *gin.Context) {
	p, _ := middleware.CurrentPrincipal(c)
	c.JSON(http.StatusOK, gin.H{
		"user":  p,
		"token": middleware.CurrentCredential(c),
	})
}
