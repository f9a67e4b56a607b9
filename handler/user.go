package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"blogyard/domain"
)

const cookieName = "Authorization"

type Claims struct {
	UserID   int64  `json:"uid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type authForm struct {
	Title    string
	User     *Claims
	Username string
	Next     string
	Error    string
	OK       bool
}

func (h *Handler) Login(c echo.Context) error {
	form := authForm{
		Title:    "Log in",
		Username: strings.TrimSpace(c.FormValue("username")),
		Next:     c.FormValue("next"),
	}
	password := c.FormValue("password")

	if form.Username == "" || password == "" {
		form.Error = "Username and password are required"
		return c.Render(http.StatusBadRequest, "user-login.html", form)
	}

	user, err := h.Store.UserByUsername(c.Request().Context(), form.Username)
	if errors.Is(err, domain.ErrNotFound) {
		form.Error = "Wrong username or password"
		return c.Render(http.StatusBadRequest, "user-login.html", form)
	}
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		form.Error = "Wrong username or password"
		return c.Render(http.StatusBadRequest, "user-login.html", form)
	}

	cookie, err := h.authorizationCookie(user)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, safeNext(form.Next))
}

func (h *Handler) NewUser(c echo.Context) error {
	if !h.Config.SignupAllowed() {
		return c.HTML(http.StatusForbidden, "<h1>Forbidden!</h1><p>Sign up has been disabled.</p>")
	}

	form := authForm{Title: "Sign up", Username: strings.TrimSpace(c.FormValue("username"))}
	password := c.FormValue("password")

	if err := domain.ValidateCredentials(form.Username, password); err != nil {
		form.Error = err.Error()
		return c.Render(http.StatusBadRequest, "user-signup.html", form)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user, err := h.Store.InsertUser(c.Request().Context(), form.Username, string(hashedPassword))
	if errors.Is(err, domain.ErrConflict) {
		form.Error = "Username already taken"
		return c.Render(http.StatusConflict, "user-signup.html", form)
	}
	if err != nil {
		return err
	}

	cookie, err := h.authorizationCookie(user)
	if err != nil {
		return err
	}
	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) Logout(c echo.Context) error {
	cookie := new(http.Cookie)
	cookie.Name = cookieName
	cookie.Value = ""
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.Expires = time.Now().Add(-1 * time.Second)
	c.SetCookie(cookie)
	return c.Redirect(http.StatusFound, "/")
}

func (h *Handler) GetNewUserForm(c echo.Context) error {
	return c.Render(http.StatusOK, "user-signup.html", authForm{Title: "Sign up"})
}

func (h *Handler) GetLoginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "user-login.html", authForm{
		Title: "Log in",
		Next:  c.QueryParam("next"),
	})
}

func (h *Handler) authorizationCookie(user domain.User) (*http.Cookie, error) {
	if h.Config.JWTSecret == "" {
		return nil, errors.New("missing secret")
	}

	now := time.Now()
	exp := now.Add(h.Config.SessionLifetime)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(user.ID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signedData, err := token.SignedString([]byte(h.Config.JWTSecret))
	if err != nil {
		return nil, err
	}

	cookie := new(http.Cookie)
	cookie.Name = cookieName
	cookie.Value = signedData
	cookie.Expires = exp
	cookie.Path = "/"
	cookie.HttpOnly = true
	cookie.SameSite = http.SameSiteLaxMode
	return cookie, nil
}

// jwtMiddleware puts the parsed token in the context when the cookie holds a
// valid one and lets anonymous requests through untouched.
func (h *Handler) jwtMiddleware() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(h.Config.JWTSecret),
		TokenLookup: "cookie:" + cookieName,
		NewClaimsFunc: func(echo.Context) jwt.Claims {
			return new(Claims)
		},
		ContinueOnIgnoredError: true,
		ErrorHandler: func(echo.Context, error) error {
			return nil
		},
	})
}

func currentUser(c echo.Context) (*Claims, bool) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok || !token.Valid {
		return nil, false
	}
	claims, ok := token.Claims.(*Claims)
	return claims, ok && claims.UserID != 0
}

func requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, ok := currentUser(c); !ok {
			return c.Redirect(http.StatusFound, "/login?next="+url.QueryEscape(c.Request().URL.RequestURI()))
		}
		return next(c)
	}
}

// safeNext only allows local redirect targets.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
