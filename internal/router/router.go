// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/train-seat-booking/internal/handler"
	"github.com/iliyamo/train-seat-booking/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication.
// Currently only the health check used by load balancers and
// monitoring lives here.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes.  Unauthenticated
// operations live under /v1/auth; /v1/me requires a valid access
// token.  Logout is deliberately outside the JWT middleware because it
// also accepts a bare refresh token in the body.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
	auth.GET("/me", a.Me)
}

// RegisterSeats registers the public seat map endpoints.  No JWT or
// role middleware applies; guests may inspect availability and preview
// an allocation before registering.  The extra middleware (typically a
// Redis response cache and a rate limiter) wraps only the read
// endpoints since preview answers must reflect the live snapshot.
func RegisterSeats(e *echo.Echo, s *handler.SeatHandler, reads ...echo.MiddlewareFunc) {
	e.GET("/v1/seats", s.List, reads...)
	e.GET("/v1/seats/layout", s.LayoutView, reads...)
	e.POST("/v1/seats/preview", s.Preview)
}

// RegisterBookings registers the reservation endpoints.  All of them
// require a valid access token; any authenticated role may book.
func RegisterBookings(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1/bookings")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN", "CUSTOMER"))
	g.POST("", b.Reserve)
	g.GET("", b.List)
	g.DELETE("/:id", b.Cancel)
}

// RegisterAdmin registers management endpoints restricted to the ADMIN
// role.
func RegisterAdmin(e *echo.Echo, s *handler.SeatHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("ADMIN"))
	g.POST("/seats/reset", s.Reset)
}
