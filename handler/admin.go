package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"blogyard/domain"
)

// ClearTimelineCache drops the cached home timeline. Only usernames listed in
// ADMIN_USERS may call it.
func (h *Handler) ClearTimelineCache(c echo.Context) error {
	user, _ := currentUser(c)
	if !h.Config.IsAdmin(user.Username) {
		return &domain.PermissionError{Action: "clear the timeline cache"}
	}

	if err := h.Timeline.Clear(c.Request().Context()); err != nil {
		return err
	}
	h.Logger.Info("Timeline cache cleared", "by", user.Username)
	return c.NoContent(http.StatusNoContent)
}
