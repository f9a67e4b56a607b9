package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"blogyard/domain"
)

type errorPage struct {
	Title   string
	User    *Claims
	Code    int
	Message string
}

func statusFor(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrPermission):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := statusFor(err)
	message := http.StatusText(code)
	if code >= http.StatusInternalServerError {
		h.Logger.Error("Request failed", "uri", c.Request().RequestURI, "error", err)
	} else if _, ok := err.(*echo.HTTPError); !ok {
		message = err.Error()
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(code)
	} else {
		err = c.Render(code, "error.html", errorPage{Title: http.StatusText(code), Code: code, Message: message})
	}
	if err != nil {
		h.Logger.Error("Rendering error page failed", "error", err)
	}
}
