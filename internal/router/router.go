package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/ratemate/ratemate/internal/handler"
	"github.com/ratemate/ratemate/internal/middleware"
	"github.com/ratemate/ratemate/internal/model"
)

// RegisterRoutes registers routes that carry no authentication at all.
// Currently that is only the health check.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. The open
// credential endpoints sit behind the rate limiter; password change and
// the identity echo require a valid bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, rateLimit echo.MiddlewareFunc) {
	g := e.Group("/api/auth")
	g.Use(rateLimit)
	g.POST("/signup", a.Signup)
	g.POST("/login", a.Login)
	g.POST("/forgot-password", a.ForgotPassword)
	g.POST("/reset-password", a.ResetPassword)

	p := e.Group("/api/auth")
	p.Use(middleware.JWTAuth(jwtSecret))
	p.PATCH("/password", a.UpdatePassword)
	p.GET("/me", a.Me)
}

// RegisterUser registers the NORMAL-user endpoints under /api/user. The
// store listing is cached per user+query when Redis is available.
func RegisterUser(e *echo.Echo, u *handler.UserHandler, jwtSecret string, cache echo.MiddlewareFunc) {
	g := e.Group("/api/user")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleNormal))
	g.GET("/stores", u.GetStores, cache)
	g.POST("/rating", u.SubmitRating)
	g.GET("/my-ratings", u.GetMyRatings)
	g.GET("", u.GetProfile)
}

// RegisterOwner registers the store-owner endpoints under /api/store.
// Password change shares the auth handler; the semantics are identical.
func RegisterOwner(e *echo.Echo, o *handler.OwnerHandler, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/store")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleOwner))
	g.GET("/dashboard", o.Dashboard)
	g.PATCH("/password", a.UpdatePassword)
}

// RegisterAdmin registers the management endpoints under /api/admin.
func RegisterAdmin(e *echo.Echo, ad *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/api/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))

	g.GET("/dashboard", ad.Dashboard)

	g.GET("/users", ad.ListUsers)
	g.GET("/users/:id", ad.GetUser)
	g.POST("/users", ad.AddUser)
	g.DELETE("/users/:id", ad.DeleteUser)

	g.GET("/stores", ad.ListStores)
	g.GET("/stores/:id", ad.GetStore)
	g.POST("/stores", ad.AddStore)
	g.DELETE("/stores/:id", ad.DeleteStore)

	g.GET("/ratings", ad.GetAllRatings)
}
