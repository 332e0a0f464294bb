package api

import (
	"log/slog"
	stdhttp "net/http"
	"strings"

	"orderdesk/internal/domain"
	h "orderdesk/internal/http/handlers"
	"orderdesk/internal/http/middleware"
	"orderdesk/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// Deps is everything the router wires into handlers.
type Deps struct {
	Logger      *slog.Logger
	FrontendURL string

	// UploadDir is served under /uploads when non-empty.
	UploadDir    string
	Gate         middleware.Gate
	LoginLimiter ratelimit.Limiter

	Auth   h.AuthHandler
	Users  h.UserHandler
	Orders h.OrderHandler
	System *h.SystemHandler
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(d.Logger), gin.Recovery(), middleware.CORS(d.FrontendURL))

	if err := r.SetTrustedProxies(nil); err != nil {
		slog.Warn("failed to set trusted proxies", slog.Any("error", err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"message": "Route not found",
			"path":    c.Request.URL.Path,
			"method":  c.Request.Method,
		})
	})

	if dir := strings.TrimSpace(d.UploadDir); dir != "" {
		r.Static("/uploads", dir)
	}

	authn := d.Gate.Authenticate()
	admin := middleware.RequireRole(domain.RoleAdmin)
	throttle := middleware.RateLimit(d.LoginLimiter, "login")

	r.GET("/", d.System.Root)

	api := r.Group("/api")
	{
		api.GET("/health", d.System.Health)
		api.GET("/db-check", d.System.DBCheck)
		api.GET("/routes", authn, admin, d.System.Routes)

		users := api.Group("/users")
		users.POST("/register", d.Auth.Register)
		users.POST("/auth/sign-up", d.Auth.SignUp)
		users.POST("/login", throttle, d.Auth.Login)
		users.POST("/auth/sign-in", throttle, d.Auth.SignIn)
		users.POST("/auth/sign-out", authn, d.Auth.SignOut)
		users.GET("/me", authn, d.Auth.Me)
		users.GET("", authn, admin, d.Users.List)
		users.GET("/", authn, admin, d.Users.List)
		users.PATCH("/:id", authn, admin, d.Users.Update)
		users.DELETE("/:id", authn, admin, d.Users.Delete)

		orders := api.Group("/orders")
		orders.POST("", authn, d.Orders.Create)
		orders.POST("/", authn, d.Orders.Create)
		orders.GET("/all", authn, admin, d.Orders.ListAll)
		orders.GET("/my-orders", authn, d.Orders.ListMine)
		orders.GET("/:id", authn, d.Orders.Get)
		orders.GET("/:id/invoice", authn, d.Orders.Invoice)
		orders.PATCH("/:id/status", authn, admin, d.Orders.UpdateStatus)
		orders.PATCH("/:id", authn, admin, d.Orders.Update)
		orders.DELETE("/:id", authn, admin, d.Orders.Delete)
	}

	d.System.SetRouter(r)
	return r
}
