package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/truekea/truekea-api/internal/config"
	"github.com/truekea/truekea-api/internal/model"
	"github.com/truekea/truekea-api/internal/repository"
	"github.com/truekea/truekea-api/internal/service"
	"github.com/truekea/truekea-api/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.  The login flow
// itself lives in service.AuthFlow; the handler only validates DTOs and
// maps domain errors to HTTP responses.
type AuthHandler struct {
	Cfg   config.Config
	Flow  *service.AuthFlow
	Users *repository.UserRepo
}

func NewAuthHandler(cfg config.Config, flow *service.AuthFlow, users *repository.UserRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Flow: flow, Users: users}
}

// ----- DTOs -----

type registerReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

type loginResp struct {
	User               service.UserSummary      `json:"user"`
	Access             tokenPart                `json:"access"`
	Refresh            tokenPart                `json:"refresh"`
	FallbackCategories []service.CategoryOption `json:"fallback_categories"`
	InitialItems       []service.FeedEntry      `json:"initial_items"`
	CO2Summary         any                      `json:"co2_summary"`
}

func loginResponse(res *service.LoginResult) loginResp {
	// Lists are never null in responses, even when empty.
	fallback := res.FallbackCategories
	if fallback == nil {
		fallback = []service.CategoryOption{}
	}
	items := res.InitialItems
	if items == nil {
		items = []service.FeedEntry{}
	}
	return loginResp{
		User:               res.User,
		Access:             tokenPart{Token: res.Access.Token, Expires: res.Access.Exp},
		Refresh:            tokenPart{Token: res.Refresh.Token, Expires: res.Refresh.Exp},
		FallbackCategories: fallback,
		InitialItems:       items,
		CO2Summary:         res.CO2,
	}
}

// Register creates a user and immediately authenticates it, returning the
// same composite response as Login.  New users have no preferences yet,
// so the response carries the full category catalog for onboarding.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = normalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if !validEmail(req.Email) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid email"})
	}
	if len(req.Password) < 6 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password too short"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, model.RoleUserID, h.Cfg.BcryptCost); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create user failed"})
	}

	res, err := h.Flow.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue tokens failed"})
	}
	return c.JSON(http.StatusCreated, loginResponse(res))
}

// Login verifies credentials and returns the composite authentication
// response: tokens, sanitized user, fallback categories, initial feed
// and CO2 equivalencies.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = normalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	res, err := h.Flow.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	return c.JSON(http.StatusOK, loginResponse(res))
}

// Refresh rotates a refresh token: the presented token is revoked and a
// brand-new access/refresh pair is returned.
func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "refresh_token required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	pair, err := h.Flow.Refresh(ctx, strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefresh) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "refresh failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access":  tokenPart{Token: pair.Access.Token, Expires: pair.Access.Exp},
		"refresh": tokenPart{Token: pair.Refresh.Token, Expires: pair.Refresh.Exp},
	})
}

// Logout terminates sessions.  With a refresh_token in the body, that
// single session is revoked.  With only a valid bearer access token, all
// of the user's sessions are revoked.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	refreshToken := strings.TrimSpace(req.RefreshToken)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if refreshToken != "" {
		if err := h.Flow.Logout(ctx, refreshToken); err != nil {
			if errors.Is(err, service.ErrInvalidRefresh) {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid refresh token"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}

	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		raw := strings.TrimPrefix(auth, "Bearer ")
		uid, _, err := utils.VerifyToken(h.Cfg.AccessSecret, raw)
		if err != nil || uid == 0 {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
		}
		if err := h.Flow.LogoutAll(ctx, uid); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
		}
		return c.NoContent(http.StatusNoContent)
	}

	return c.JSON(http.StatusBadRequest, echo.Map{"error": "provide Authorization header or refresh_token"})
}

// Me returns the authenticated user's sanitized profile.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, service.UserSummary{
		ID: u.ID, Name: u.Name, Email: u.Email, RoleID: u.RoleID, Status: u.Status,
	})
}
