package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ratemate/ratemate/internal/config"
	"github.com/ratemate/ratemate/internal/model"
	"github.com/ratemate/ratemate/internal/repository"
	"github.com/ratemate/ratemate/internal/utils"
)

// AdminHandler serves the ADMIN-only management endpoints.
type AdminHandler struct {
	Cfg     config.Config
	Users   *repository.UserRepo
	Stores  *repository.StoreRepo
	Ratings *repository.RatingRepo
}

func NewAdminHandler(cfg config.Config, u *repository.UserRepo, s *repository.StoreRepo, r *repository.RatingRepo) *AdminHandler {
	return &AdminHandler{Cfg: cfg, Users: u, Stores: s, Ratings: r}
}

// Dashboard handles GET /api/admin/dashboard with the three totals the
// admin landing page shows.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	users, err := h.Users.CountAll(ctx)
	if err != nil {
		c.Logger().Errorf("admin dashboard: count users: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	stores, err := h.Stores.CountAll(ctx)
	if err != nil {
		c.Logger().Errorf("admin dashboard: count stores: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	ratings, err := h.Ratings.CountAll(ctx)
	if err != nil {
		c.Logger().Errorf("admin dashboard: count ratings: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"totalUsers":   users,
		"totalStores":  stores,
		"totalRatings": ratings,
	})
}

type adminUserItem struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Role    string `json:"role"`
}

// ListUsers handles GET /api/admin/users with optional search, role,
// sortBy and sortOrder query parameters.
func (h *AdminHandler) ListUsers(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role := strings.ToUpper(strings.TrimSpace(c.QueryParam("role")))
	if role != "" && !model.ValidRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role filter"})
	}
	users, err := h.Users.List(ctx, repository.UserFilter{
		Search:    strings.TrimSpace(c.QueryParam("search")),
		Role:      role,
		SortBy:    c.QueryParam("sortBy"),
		SortOrder: c.QueryParam("sortOrder"),
	})
	if err != nil {
		c.Logger().Errorf("admin list users: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	items := make([]adminUserItem, 0, len(users))
	for _, u := range users {
		items = append(items, adminUserItem{
			ID: u.ID, Name: u.Name, Email: u.Email, Address: u.Address, Role: u.Role,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"users": items})
}

// GetUser handles GET /api/admin/users/:id. For OWNER accounts the
// response includes the average rating across their stores, which the
// admin detail view displays.
func (h *AdminHandler) GetUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		c.Logger().Errorf("admin get user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	resp := echo.Map{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"address":    u.Address,
		"role":       u.Role,
		"created_at": u.CreatedAt,
	}
	if u.Role == model.RoleOwner {
		stores, err := h.Stores.ListByOwner(ctx, u.ID)
		if err != nil {
			c.Logger().Errorf("admin get user: owner stores: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
		}
		var sum float64
		var n uint64
		for _, s := range stores {
			avg, total, err := h.Ratings.AvgForStore(ctx, s.ID)
			if err != nil {
				c.Logger().Errorf("admin get user: rating aggregate: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
			}
			sum += avg * float64(total)
			n += total
		}
		avg := 0.0
		if n > 0 {
			avg = sum / float64(n)
		}
		resp["rating"] = fmt.Sprintf("%.2f", avg)
	}
	return c.JSON(http.StatusOK, resp)
}

type addUserReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Address  string `json:"address"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// AddUser handles POST /api/admin/users. Unlike signup, the role is
// assignable; it must be one of NORMAL, OWNER, ADMIN.
func (h *AdminHandler) AddUser(c echo.Context) error {
	var req addUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Email = utils.NormalizeEmail(req.Email)
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	if req.Role == "" {
		req.Role = model.RoleNormal
	}
	if !model.ValidRole(req.Role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid role"})
	}
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
		Role:         req.Role,
	}
	if err := h.Users.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Email already registered."})
		}
		c.Logger().Errorf("admin add user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "User created successfully",
		"user": adminUserItem{
			ID: u.ID, Name: u.Name, Email: u.Email, Address: u.Address, Role: u.Role,
		},
	})
}

// DeleteUser handles DELETE /api/admin/users/:id. The user's ratings go
// with them; stores they owned stay but lose their owner.
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		c.Logger().Errorf("admin delete user: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "User deleted successfully"})
}

// ListStores handles GET /api/admin/stores with the same search/sort
// parameters as the user-facing listing, minus the per-viewer rating.
func (h *AdminHandler) ListStores(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stores, err := h.Stores.ListWithRatings(ctx, 0,
		strings.TrimSpace(c.QueryParam("search")),
		c.QueryParam("sortBy"), c.QueryParam("sortOrder"))
	if err != nil {
		c.Logger().Errorf("admin list stores: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	type adminStoreItem struct {
		ID            uint64 `json:"id"`
		Name          string `json:"name"`
		Email         string `json:"email"`
		Address       string `json:"address"`
		AverageRating string `json:"averageRating"`
		TotalRatings  uint64 `json:"totalRatings"`
	}
	items := make([]adminStoreItem, 0, len(stores))
	for _, s := range stores {
		items = append(items, adminStoreItem{
			ID:            s.ID,
			Name:          s.Name,
			Email:         s.Email,
			Address:       s.Address,
			AverageRating: fmt.Sprintf("%.2f", s.AvgRating),
			TotalRatings:  s.TotalRatings,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"stores": items})
}

// GetStore handles GET /api/admin/stores/:id.
func (h *AdminHandler) GetStore(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Stores.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Store not found"})
		}
		c.Logger().Errorf("admin get store: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	avg, total, err := h.Ratings.AvgForStore(ctx, id)
	if err != nil {
		c.Logger().Errorf("admin get store: rating aggregate: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":            s.ID,
		"name":          s.Name,
		"email":         s.Email,
		"address":       s.Address,
		"owner_id":      s.OwnerID,
		"averageRating": fmt.Sprintf("%.2f", avg),
		"totalRatings":  total,
		"created_at":    s.CreatedAt,
	})
}

type addStoreReq struct {
	Name    string  `json:"name"`
	Email   string  `json:"email"`
	Address string  `json:"address"`
	OwnerID *uint64 `json:"ownerId"`
}

// AddStore handles POST /api/admin/stores. When an owner is assigned,
// the referenced user must exist and hold the OWNER role.
func (h *AdminHandler) AddStore(c echo.Context) error {
	var req addStoreReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = utils.NormalizeEmail(req.Email)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if err := utils.ValidateEmail(req.Email); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	if err := utils.ValidateAddress(req.Address); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if req.OwnerID != nil {
		owner, err := h.Users.GetByID(ctx, *req.OwnerID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return c.JSON(http.StatusBadRequest, echo.Map{"error": "owner does not exist"})
			}
			c.Logger().Errorf("admin add store: query owner: %v", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
		}
		if owner.Role != model.RoleOwner {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "owner must have the OWNER role"})
		}
	}

	s := &model.Store{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
		OwnerID: req.OwnerID,
	}
	if err := h.Stores.Create(ctx, s); err != nil {
		c.Logger().Errorf("admin add store: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Store created successfully",
		"store": echo.Map{
			"id": s.ID, "name": s.Name, "email": s.Email,
			"address": s.Address, "owner_id": s.OwnerID,
		},
	})
}

// DeleteStore handles DELETE /api/admin/stores/:id; the store's ratings
// are removed in the same transaction.
func (h *AdminHandler) DeleteStore(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Stores.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Store not found"})
		}
		c.Logger().Errorf("admin delete store: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Store deleted successfully"})
}

// GetAllRatings handles GET /api/admin/ratings.
func (h *AdminHandler) GetAllRatings(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Ratings.ListAll(ctx)
	if err != nil {
		c.Logger().Errorf("admin list ratings: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	type ratingItem struct {
		ID        uint64    `json:"id"`
		Rating    int       `json:"rating"`
		UserID    uint64    `json:"user_id"`
		UserName  string    `json:"user_name"`
		StoreID   uint64    `json:"store_id"`
		StoreName string    `json:"store_name"`
		CreatedAt time.Time `json:"created_at"`
		UpdatedAt time.Time `json:"updated_at"`
	}
	items := make([]ratingItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, ratingItem{
			ID: r.ID, Rating: r.Rating,
			UserID: r.UserID, UserName: r.UserName,
			StoreID: r.StoreID, StoreName: r.StoreName,
			CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"ratings": items})
}
