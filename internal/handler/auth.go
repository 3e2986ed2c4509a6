package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-booking/internal/middleware"
	"github.com/iliyamo/event-booking/internal/service"
)

// AuthHandler serves sign-up, sign-in and sign-out.
type AuthHandler struct {
	Accounts *service.AccountService
}

func NewAuthHandler(accounts *service.AccountService) *AuthHandler {
	return &AuthHandler{Accounts: accounts}
}

type credentialsReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
}

type signInResp struct {
	User    userPart  `json:"user"`
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// SignUp handles POST /users.
func (h *AuthHandler) SignUp(c echo.Context) error {
	var req credentialsReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Accounts.SignUp(ctx, req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, userPart{ID: u.ID, Email: u.Email})
}

// SignIn handles POST /auth/sign-in.
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req credentialsReq
	if ok, err := bindValid(c, &req); !ok {
		return err
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, tok, err := h.Accounts.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, signInResp{
		User:    userPart{ID: u.ID, Email: u.Email},
		Token:   tok.Token,
		Expires: tok.Exp,
	})
}

// SignOut handles POST /auth/sign-out.  It runs behind JWTAuth and ends
// the session of the presented token.
func (h *AuthHandler) SignOut(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Accounts.SignOut(ctx, middleware.Token(c)); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// currentUser returns the authenticated user id or writes a 401.
func currentUser(c echo.Context) (uint64, bool, error) {
	id, ok := middleware.UserID(c)
	if !ok {
		return 0, false, c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return id, true, nil
}
