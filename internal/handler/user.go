package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/ratemate/ratemate/internal/repository"
)

// UserHandler serves the NORMAL-user endpoints: browsing and rating
// stores and reading the caller's own data.
type UserHandler struct {
	Users   *repository.UserRepo
	Stores  *repository.StoreRepo
	Ratings *repository.RatingRepo
}

func NewUserHandler(u *repository.UserRepo, s *repository.StoreRepo, r *repository.RatingRepo) *UserHandler {
	return &UserHandler{Users: u, Stores: s, Ratings: r}
}

type storeListItem struct {
	ID            uint64 `json:"id"`
	Name          string `json:"name"`
	Address       string `json:"address"`
	Email         string `json:"email"`
	AverageRating string `json:"averageRating"`
	TotalRatings  uint64 `json:"totalRatings"`
	UserRating    *int   `json:"userRating"`
}

// GetStores handles GET /api/user/stores with optional search and
// sortBy/sortOrder query parameters (whitelisted in the repository).
func (h *UserHandler) GetStores(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	stores, err := h.Stores.ListWithRatings(ctx, uid,
		strings.TrimSpace(c.QueryParam("search")),
		c.QueryParam("sortBy"), c.QueryParam("sortOrder"))
	if err != nil {
		c.Logger().Errorf("list stores: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	items := make([]storeListItem, 0, len(stores))
	for _, s := range stores {
		items = append(items, storeListItem{
			ID:            s.ID,
			Name:          s.Name,
			Address:       s.Address,
			Email:         s.Email,
			AverageRating: fmt.Sprintf("%.2f", s.AvgRating),
			TotalRatings:  s.TotalRatings,
			UserRating:    s.UserRating,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"stores": items})
}

type submitRatingReq struct {
	StoreID uint64 `json:"storeId"`
	Rating  int    `json:"rating"`
}

// SubmitRating handles POST /api/user/rating. Submitting again for the
// same store updates the earlier rating in place.
func (h *UserHandler) SubmitRating(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req submitRatingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Rating < 1 || req.Rating > 5 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Rating must be between 1 and 5"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Stores.GetByID(ctx, req.StoreID); err != nil {
		if errors.Is(err, repository.ErrStoreNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Store not found"})
		}
		c.Logger().Errorf("submit rating: query store: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	created, err := h.Ratings.Upsert(ctx, uid, req.StoreID, req.Rating)
	if err != nil {
		c.Logger().Errorf("submit rating: upsert: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}
	if created {
		return c.JSON(http.StatusCreated, echo.Map{"message": "Rating submitted successfully"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Rating updated successfully"})
}

type myRatingItem struct {
	ID           uint64    `json:"id"`
	Rating       int       `json:"rating"`
	StoreID      uint64    `json:"store_id"`
	StoreName    string    `json:"store_name"`
	StoreAddress string    `json:"store_address"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// GetMyRatings handles GET /api/user/my-ratings.
func (h *UserHandler) GetMyRatings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	rows, err := h.Ratings.ListByUser(ctx, uid)
	if err != nil {
		c.Logger().Errorf("my ratings: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	items := make([]myRatingItem, 0, len(rows))
	for _, r := range rows {
		items = append(items, myRatingItem{
			ID:           r.ID,
			Rating:       r.Rating,
			StoreID:      r.StoreID,
			StoreName:    r.StoreName,
			StoreAddress: r.StoreAddress,
			CreatedAt:    r.CreatedAt,
			UpdatedAt:    r.UpdatedAt,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"ratings": items})
}

// GetProfile handles GET /api/user and returns the caller's own record
// without the password hash or reset fields.
func (h *UserHandler) GetProfile(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "User not found"})
		}
		c.Logger().Errorf("profile: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "Server error"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"id":         u.ID,
		"name":       u.Name,
		"email":      u.Email,
		"address":    u.Address,
		"role":       u.Role,
		"created_at": u.CreatedAt,
	})
}
