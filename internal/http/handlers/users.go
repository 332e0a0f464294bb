package handlers

import (
	"net/http"

	"orderdesk/internal/services"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	Users services.UserService
}

// GET /api/users
func (h UserHandler) List(c *gin.Context) {
	res, err := h.Users.List(c.Request.Context(), c.Query("search"), c.Query("page"), c.Query("limit"))
	if err != nil {
		RespondDomainError(c, err, "Error fetching users")
		return
	}
	c.JSON(http.StatusOK, res)
}

// PATCH /api/users/:id
func (h UserHandler) Update(c *gin.Context) {
	var body map[string]any
	if !BindJSONOrError(c, &body) {
		return
	}
	u, err := h.Users.Update(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		RespondDomainError(c, err, "Error updating user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u})
}

// DELETE /api/users/:id
func (h UserHandler) Delete(c *gin.Context) {
	if err := h.Users.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondDomainError(c, err, "Error deleting user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}
