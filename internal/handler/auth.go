package handler

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ratemate/ratemate/internal/config"
	"github.com/ratemate/ratemate/internal/model"
	"github.com/ratemate/ratemate/internal/repository"
	"github.com/ratemate/ratemate/internal/utils"
)

// UserStore is the slice of the credential store the auth endpoints
// need. *repository.UserRepo satisfies it; tests substitute an
// in-memory implementation.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	UpdatePassword(ctx context.Context, id uint64, hash string) error
	SetResetToken(ctx context.Context, id uint64, tokenHash string, exp time.Time) error
	ConsumeResetToken(ctx context.Context, email, tokenHash, newPasswordHash string) (bool, error)
}

// ResetNotifier dispatches the reset link to the user out-of-band.
// *mail.ResetDispatcher satisfies it.
type ResetNotifier interface {
	SendResetLink(ctx context.Context, email, name, resetURL string, expiresAt time.Time) error
}

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  UserStore
	Notify ResetNotifier
}

func NewAuthHandler(cfg config.Config, users UserStore, notify ResetNotifier) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: users, Notify: notify}
}

// ----- DTOs -----

type signupReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Password string `json:"password"`
}
type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type forgotReq struct {
	Email string `json:"email"`
}
type resetReq struct {
	Token       string `json:"token"`
	Email       string `json:"email"`
	NewPassword string `json:"newPassword"`
}
type changePasswordReq struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type userPart struct {
	ID    uint64 `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Signup: create a NORMAL user. Admin-assigned roles go through the
// admin endpoint instead.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = utils.NormalizeEmail(req.Email)
	if err := utils.ValidateAccount(req.Name, req.Email, req.Address, req.Password); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Address:      req.Address,
		Role:         model.RoleNormal,
	}
	if err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email already registered."})
		}
		c.Logger().Errorf("signup: create user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": "User registered successfully"})
}

// Login: verify credentials and issue a 24h bearer token. Unknown email
// and wrong password fail differently (404 vs 401) on purpose.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = utils.NormalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		c.Logger().Errorf("login: query user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role, h.Cfg.AccessTTLMin)
	if err != nil {
		c.Logger().Errorf("login: issue token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Login successful",
		"token":   access.Token,
		"user":    userPart{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role},
	})
}

// ForgotPassword: issue a fresh reset secret, persist only its hash and
// mail the raw secret inside a link. A new request overwrites any prior
// outstanding secret, so only the latest link works.
func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	var req forgotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = utils.NormalizeEmail(req.Email)
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User with this email does not exist"})
		}
		c.Logger().Errorf("forgot-password: query user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	secret, err := utils.NewResetSecret(h.Cfg.ResetTTLMin)
	if err != nil {
		c.Logger().Errorf("forgot-password: generate secret: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	if err := h.Users.SetResetToken(ctx, u.ID, utils.HashResetSecret(secret.Raw), secret.Exp); err != nil {
		c.Logger().Errorf("forgot-password: store token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	resetURL := h.Cfg.ClientURL + "/reset-password?token=" + secret.Raw +
		"&email=" + url.QueryEscape(u.Email)
	if err := h.Notify.SendResetLink(ctx, u.Email, u.Name, resetURL, secret.Exp); err != nil {
		c.Logger().Errorf("forgot-password: dispatch mail: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Failed to send reset email"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Password reset link has been sent to your email address",
	})
}

// ResetPassword: consume a reset secret and set the new password. The
// stored hash comparison and the expiry check fail identically so the
// caller cannot probe which one tripped. The final compare-and-clear
// UPDATE re-checks both, so two racing completions cannot both win.
func (h *AuthHandler) ResetPassword(c echo.Context) error {
	var req resetReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = utils.NormalizeEmail(req.Email)
	if req.Token == "" || req.Email == "" || req.NewPassword == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Token, email, and new password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or expired reset token"})
		}
		c.Logger().Errorf("reset-password: query user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	presented := utils.HashResetSecret(req.Token)
	if u.ResetTokenHash == nil || u.ResetTokenExpiry == nil ||
		!utils.ResetHashEqual(*u.ResetTokenHash, presented) ||
		!u.ResetTokenExpiry.After(time.Now().UTC()) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or expired reset token"})
	}

	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	ok, err := h.Users.ConsumeResetToken(ctx, req.Email, presented, hash)
	if err != nil {
		c.Logger().Errorf("reset-password: consume token: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid or expired reset token"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password has been reset successfully"})
}

// UpdatePassword: self-service password change, gated on the old
// password verifying. Protected route; identity comes from the token.
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req changePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		c.Logger().Errorf("change-password: query user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.OldPassword) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Old password incorrect"})
	}
	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	hash, err := utils.HashPassword(req.NewPassword, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	if err := h.Users.UpdatePassword(ctx, uid, hash); err != nil {
		c.Logger().Errorf("change-password: update: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "Password updated successfully"})
}

// Me: echo back the authenticated identity from the token claims.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id": c.Get("user_id"),
		"email":   c.Get("email"),
		"role":    c.Get("role"),
	})
}
