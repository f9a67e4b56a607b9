package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"blogyard/domain"
	"blogyard/feed"
)

// GetFollowFeed shows posts by the authors the user follows.
func (h *Handler) GetFollowFeed(c echo.Context) error {
	user, _ := currentUser(c)

	page, err := h.Feed.Page(c.Request().Context(), feed.ByFollower(user.UserID), feed.ParsePage(c.QueryParam("page")))
	if err != nil {
		return err
	}

	data := newListPage("Your feed", "/follow", page)
	data.User = user
	return c.Render(http.StatusOK, "follow.html", data)
}

// Follow subscribes the user to an author. Following yourself or following
// twice changes nothing and still lands back on the profile.
func (h *Handler) Follow(c echo.Context) error {
	user, _ := currentUser(c)
	ctx := c.Request().Context()

	author, err := h.Store.UserByUsername(ctx, c.Param("username"))
	if err != nil {
		return err
	}

	if _, err := h.Follows.Follow(ctx, user.UserID, author.ID); err != nil && !errors.Is(err, domain.ErrConflict) {
		return err
	}
	return c.Redirect(http.StatusFound, profilePath(author.Username))
}

func (h *Handler) Unfollow(c echo.Context) error {
	user, _ := currentUser(c)
	ctx := c.Request().Context()

	author, err := h.Store.UserByUsername(ctx, c.Param("username"))
	if err != nil {
		return err
	}

	if err := h.Follows.Unfollow(ctx, user.UserID, author.ID); err != nil {
		return err
	}
	return c.Redirect(http.StatusFound, profilePath(author.Username))
}

func profilePath(username string) string {
	return "/profile/" + url.PathEscape(username)
}
