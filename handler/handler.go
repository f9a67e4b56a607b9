package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"blogyard/blog"
	"blogyard/cache"
	"blogyard/config"
	"blogyard/feed"
	"blogyard/follow"
	"blogyard/store"
)

type Handler struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    *store.Store
	Feed     *feed.Engine
	Follows  *follow.Graph
	Blog     *blog.Service
	Timeline *cache.Timeline
}

// Echo builds the server with every route and middleware wired.
func (h *Handler) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Renderer = NewTemplateRegistry()
	e.HTTPErrorHandler = h.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			level := slog.LevelInfo
			if v.Status >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			h.Logger.LogAttrs(c.Request().Context(), level, "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.Use(h.jwtMiddleware())

	// Frontend
	e.GET("/", h.GetIndex)
	e.GET("/group/:slug", h.GetGroup)
	e.GET("/profile/:username", h.GetProfile)
	e.GET("/posts/:id", h.GetByID)
	e.GET("/signup", h.GetNewUserForm)
	e.GET("/login", h.GetLoginForm)
	e.GET("/logout", h.Logout)
	e.Static("/media", h.Config.MediaRoot)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Backend
	e.POST("/signup", h.NewUser)
	e.POST("/login", h.Login)

	e.GET("/create", h.GetNewPostForm, requireAuth)
	e.POST("/create", h.NewPost, requireAuth)
	e.GET("/posts/:id/edit", h.GetEditPostForm, requireAuth)
	e.POST("/posts/:id/edit", h.EditPost, requireAuth)
	e.POST("/posts/:id/comment", h.AddComment, requireAuth)
	e.GET("/follow", h.GetFollowFeed, requireAuth)
	e.POST("/profile/:username/follow", h.Follow, requireAuth)
	e.POST("/profile/:username/unfollow", h.Unfollow, requireAuth)
	e.POST("/admin/cache/clear", h.ClearTimelineCache, requireAuth)

	return e
}
