// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"net/http"

	"quill/internal/delivery/api/middleware"
	"quill/internal/delivery/api/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler    *handler.AuthHandler
	PostHandler    *handler.PostHandler
	AuthMiddleware *middleware.AuthMiddleware
}

// Router holds all the handlers that need to be registered.
type Router struct {
	authHandler    *handler.AuthHandler
	postHandler    *handler.PostHandler
	authMiddleware *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *Router {
	return &Router{
		authHandler:    params.AuthHandler,
		postHandler:    params.PostHandler,
		authMiddleware: params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *Router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	api := e.Group("/api")

	// Auth routes
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/signup", r.authHandler.Signup)
		authGroup.POST("/login", r.authHandler.Login)
		authGroup.GET("/me", r.authHandler.Me, r.authMiddleware.Authenticate)
	}

	// Reads are public; every mutation requires a bearer token.
	blogsGroup := api.Group("/blogs")
	{
		blogsGroup.GET("", r.postHandler.List)
		blogsGroup.GET("/:id", r.postHandler.Get)
		blogsGroup.POST("", r.postHandler.Create, r.authMiddleware.Authenticate)
		blogsGroup.Match([]string{http.MethodPatch, http.MethodPut}, "/:id", r.postHandler.Update, r.authMiddleware.Authenticate)
		blogsGroup.DELETE("/:id", r.postHandler.Delete, r.authMiddleware.Authenticate)
	}

	meGroup := api.Group("/me")
	meGroup.Use(r.authMiddleware.Authenticate)
	{
		meGroup.GET("/blogs", r.postHandler.ListMine)
	}
}
