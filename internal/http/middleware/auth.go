package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"orderdesk/internal/auth"
	"orderdesk/internal/domain"
	"orderdesk/internal/utils"

	"github.com/gin-gonic/gin"
)

const (
	principalKey  = "principal"
	credentialKey = "token"
)

// PrincipalLookup resolves a credential subject to a principal. The returned
// record never carries the password hash.
type PrincipalLookup interface {
	FindPrincipal(ctx context.Context, id string) (domain.Principal, error)
}

// ExtractCredential returns the bearer token from the Authorization header,
// or failing that the value of the "token" cookie in the Cookie header.
func ExtractCredential(r *http.Request) (string, bool) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer "), true
	}
	for _, raw := range r.Header.Values("Cookie") {
		for _, pair := range strings.Split(raw, ";") {
			name, value, _ := strings.Cut(strings.TrimSpace(pair), "=")
			if name == "token" {
				return value, true
			}
		}
	}
	return "", false
}

// Gate authenticates requests and binds the resolved principal to the gin
// context.
type Gate struct {
	Issuer     *auth.Issuer
	Principals PrincipalLookup

	// RejectBlocked re-checks the blocked flag on every request. When false a
	// blocked user's token keeps working until it expires.
	RejectBlocked bool
}

// Resolve runs extract, verify and lookup for a single request.
func (g Gate) Resolve(r *http.Request) (domain.Principal, string, error) {
	token, ok := ExtractCredential(r)
	if !ok || token == "" {
		return domain.Principal{}, "", domain.ErrUnauthenticated
	}
	claims, err := g.Issuer.Verify(token)
	if err != nil {
		return domain.Principal{}, "", domain.ErrInvalidCredential
	}
	p, err := g.Principals.FindPrincipal(r.Context(), claims.UserID)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.Principal{}, "", domain.ErrPrincipalNotFound
		}
		return domain.Principal{}, "", err
	}
	if g.RejectBlocked && p.Blocked {
		return domain.Principal{}, "", domain.ForbiddenError{Msg: "User is blocked"}
	}
	return p, token, nil
}

// Authenticate aborts with 401 unless the request carries a live credential
// for an existing user.
func (g Gate) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, token, err := g.Resolve(c.Request)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrUnauthenticated):
				abortJSON(c, http.StatusUnauthorized, "Authentication required", nil)
			case errors.Is(err, domain.ErrInvalidCredential):
				abortJSON(c, http.StatusUnauthorized, "Invalid token", nil)
			case errors.Is(err, domain.ErrPrincipalNotFound):
				abortJSON(c, http.StatusUnauthorized, "User not found", nil)
			case domain.IsForbidden(err):
				abortJSON(c, http.StatusForbidden, err.Error(), nil)
			default:
				utils.LogError(GetRequestID(c), "auth", "lookup_principal", err)
				abortJSON(c, http.StatusInternalServerError, "Error authenticating request", err)
			}
			return
		}
		c.Set(principalKey, p)
		c.Set(credentialKey, token)
		c.Next()
	}
}

// RequireRole must run after Authenticate.
func RequireRole(role domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok || p.Role != role {
			abortJSON(c, http.StatusForbidden, roleMessage(role), nil)
			return
		}
		c.Next()
	}
}

func roleMessage(role domain.Role) string {
	if role == domain.RoleAdmin {
		return "Admin access required"
	}
	return "Insufficient role"
}

func CurrentPrincipal(c *gin.Context) (domain.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return domain.Principal{}, false
	}
	p, ok := v.(domain.Principal)
	return p, ok
}

// CurrentCredential returns the raw token the request authenticated with.
func CurrentCredential(c *gin.Context) string {
	return c.GetString(credentialKey)
}

func abortJSON(c *gin.Context, status int, message string, err error) {
	payload := gin.H{
		"message":    message,
		"request_id": GetRequestID(c),
	}
	if err != nil {
		payload["error"] = err.Error()
	}
	c.AbortWithStatusJSON(status, payload)
}
