// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/truekea/truekea-api/internal/config"
	"github.com/truekea/truekea-api/internal/handler"
	"github.com/truekea/truekea-api/internal/middleware"
	"github.com/truekea/truekea-api/internal/model"
)

// Handlers bundles every handler the router wires up.
type Handlers struct {
	Auth        *handler.AuthHandler
	Users       *handler.UserHandler
	Roles       *handler.RoleHandler
	Categories  *handler.CategoryHandler
	Items       *handler.ItemHandler
	Swaps       *handler.SwapHandler
	Messages    *handler.MessageHandler
	Ratings     *handler.RatingHandler
	Preferences *handler.PreferenceHandler
	Carbon      *handler.CarbonHandler
}

// RegisterRoutes registers every route of the API on the provided Echo
// instance.  Public browse endpoints get response caching and rate
// limiting when a Redis client is available; everything under the
// protected group requires a valid access token.
func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	// Unauthenticated session endpoints.
	auth := e.Group("/v1/auth")
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	// Public catalog browsing, cached and rate limited.
	pub := e.Group("/v1")
	pub.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))
	pub.Use(middleware.NewResponseCache(config.LoadCacheConfig(), rdb))
	pub.GET("/categories", h.Categories.List)
	pub.GET("/categories/:id", h.Categories.Get)
	pub.GET("/items", h.Items.List)
	pub.GET("/items/:id", h.Items.Get)
	pub.GET("/carbon/search", h.Carbon.Search)
	pub.GET("/carbon/nearest", h.Carbon.Nearest)
	pub.GET("/carbon/stats", h.Carbon.Stats)
	pub.GET("/carbon/equivalencies", h.Carbon.Equivalencies)
	pub.GET("/carbon/footprint", h.Carbon.Footprint)
	pub.GET("/users/:id/ratings", h.Ratings.ListForUser)

	// Everything below requires a valid access token.
	priv := e.Group("/v1")
	priv.Use(middleware.JWTAuth(cfg.AccessSecret))
	priv.Use(middleware.RequireRole(model.RoleAdmin, model.RoleUser))

	priv.GET("/me", h.Auth.Me)

	priv.GET("/items/mine", h.Items.ListMine)
	priv.POST("/items", h.Items.Create)
	priv.PUT("/items/:id", h.Items.Update)
	priv.DELETE("/items/:id", h.Items.Delete)

	priv.GET("/swaps", h.Swaps.ListMine)
	priv.GET("/swaps/:id", h.Swaps.Get)
	priv.POST("/swaps", h.Swaps.Create)
	priv.PUT("/swaps/:id/status", h.Swaps.UpdateStatus)
	priv.GET("/swaps/:id/messages", h.Messages.ListBySwap)

	priv.POST("/messages", h.Messages.Create)
	priv.DELETE("/messages/:id", h.Messages.Delete)

	priv.POST("/ratings", h.Ratings.Create)

	priv.GET("/user/preferences", h.Preferences.List)
	priv.POST("/user/preferences", h.Preferences.Add)
	priv.PUT("/user/preferences", h.Preferences.Replace)
	priv.DELETE("/user/preferences/:id", h.Preferences.Delete)

	priv.GET("/users/:id", h.Users.Get)
	priv.PUT("/users/:id", h.Users.Update)
	priv.DELETE("/users/:id", h.Users.Deactivate)

	// Admin-only management.
	admin := e.Group("/v1")
	admin.Use(middleware.JWTAuth(cfg.AccessSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/users", h.Users.List)
	admin.POST("/categories", h.Categories.Create)
	admin.PUT("/categories/:id", h.Categories.Update)
	admin.DELETE("/categories/:id", h.Categories.Delete)
	admin.GET("/roles", h.Roles.List)
	admin.GET("/roles/:id", h.Roles.Get)
	admin.POST("/roles", h.Roles.Create)
	admin.DELETE("/roles/:id", h.Roles.Delete)
	admin.POST("/carbon/reload", h.Carbon.Reload)
}
